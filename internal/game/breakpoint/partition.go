// Package breakpoint partitions a roster of individuals by the damage a single
// move deals, reporting the stat bounds of every damage tier.
package breakpoint

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/pvp-damage/internal/game/catalog"
	"github.com/cory-johannsen/pvp-damage/internal/game/damage"
	"github.com/cory-johannsen/pvp-damage/internal/game/leveling"
	"github.com/cory-johannsen/pvp-damage/internal/game/stats"
)

// ErrEmptyRoster is returned when there are no candidates to partition.
var ErrEmptyRoster = errors.New("empty roster")

// DamageFunc computes damage from raw stats. damage.FromStats is the default.
type DamageFunc func(move catalog.Move, attacker, defender *catalog.Species, attack, defense float64, buffs damage.Buffs) int

// Bounds are the lowest- and highest-stat members of one damage tier.
type Bounds struct {
	Lowest  stats.Individual
	Highest stats.Individual
	Count   int
}

// Ranges is the result of one partition sweep.
type Ranges struct {
	// Stat is the stat that varies across the roster: Defense for bulkpoints,
	// Attack for breakpoints.
	Stat      Stat
	MinDamage int
	MaxDamage int
	// Tiers has an entry for every damage value some member produced.
	Tiers map[int]Bounds
	// Members lists the roster members producing each damage value, sorted by Stat.
	Members     map[int][]stats.Individual
	Rank1       stats.Individual
	DamageRank1 int
	Total       int
}

// Damages returns the observed damage values in ascending order.
func (r Ranges) Damages() []int {
	out := make([]int, 0, len(r.Tiers))
	for d := range r.Tiers {
		out = append(out, d)
	}
	slices.Sort(out)
	return out
}

// Share returns the percentage of the roster that produces dmg.
func (r Ranges) Share(dmg int) float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Tiers[dmg].Count) / float64(r.Total) * 100
}

// Uniform reports whether every member produces the same damage.
func (r Ranges) Uniform() bool {
	return r.MinDamage == r.MaxDamage
}

// Partitioner runs bulkpoint and breakpoint sweeps.
type Partitioner struct {
	enum   *leveling.Enumerator
	damage DamageFunc
	logger *zap.Logger
}

// Option configures a Partitioner.
type Option func(*Partitioner)

// WithDamageFunc replaces the damage oracle.
func WithDamageFunc(f DamageFunc) Option {
	return func(p *Partitioner) { p.damage = f }
}

// WithLogger sets the logger used for sweep diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(p *Partitioner) { p.logger = l }
}

// NewPartitioner creates a Partitioner that enumerates rosters through enum.
//
// Precondition: enum is non-nil.
func NewPartitioner(enum *leveling.Enumerator, opts ...Option) *Partitioner {
	p := &Partitioner{
		enum:   enum,
		damage: damage.FromStats,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Bulkpoints partitions defender candidates by the damage attacker deals to each with move.
//
// Precondition: candidates share one species.
// Postcondition: Returns ErrEmptyRoster when candidates is empty. When the lowest- and
// highest-defense candidates take equal damage, no other candidate is evaluated.
func (p *Partitioner) Bulkpoints(attacker stats.Individual, candidates []stats.Individual, move catalog.Move, buffs damage.Buffs) (Ranges, error) {
	if len(candidates) == 0 {
		return Ranges{}, fmt.Errorf("bulkpoints: %w", ErrEmptyRoster)
	}
	start := time.Now()
	dmg := func(def stats.Individual) int {
		return p.damage(move, attacker.Species(), def.Species(), attacker.AttackStat(), def.DefenseStat(), buffs)
	}
	r := p.sweep(candidates, Defense, dmg, false)
	p.logger.Debug("bulkpoints computed",
		zap.String("attacker", attacker.String()),
		zap.String("move", move.ID()),
		zap.Int("candidates", r.Total),
		zap.Int("tiers", len(r.Tiers)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return r, nil
}

// BulkpointsForSpecies runs Bulkpoints against every IV spread of defender at its
// maximum level under capLimit.
func (p *Partitioner) BulkpointsForSpecies(ctx context.Context, attacker stats.Individual, defender *catalog.Species, move catalog.Move, capLimit int, buffs damage.Buffs) (Ranges, error) {
	roster, err := p.enum.Enumerate(ctx, defender, capLimit)
	if err != nil {
		return Ranges{}, fmt.Errorf("bulkpoints: %w", err)
	}
	return p.Bulkpoints(attacker, roster.Individuals(), move, buffs)
}

// Breakpoints partitions every IV spread of attackerSpecies, at its maximum level under
// capLimit, by the damage it deals to defender with move.
func (p *Partitioner) Breakpoints(ctx context.Context, attackerSpecies *catalog.Species, defender stats.Individual, move catalog.Move, capLimit int, buffs damage.Buffs) (Ranges, error) {
	roster, err := p.enum.Enumerate(ctx, attackerSpecies, capLimit)
	if err != nil {
		return Ranges{}, fmt.Errorf("breakpoints: %w", err)
	}
	return p.BreakpointsAgainst(roster.Individuals(), defender, move, buffs)
}

// BreakpointsAgainst partitions attackers by the damage each deals to defender.
// Damage is computed once per distinct attack stat.
//
// Postcondition: Returns ErrEmptyRoster when attackers is empty.
func (p *Partitioner) BreakpointsAgainst(attackers []stats.Individual, defender stats.Individual, move catalog.Move, buffs damage.Buffs) (Ranges, error) {
	if len(attackers) == 0 {
		return Ranges{}, fmt.Errorf("breakpoints: %w", ErrEmptyRoster)
	}
	start := time.Now()
	dmg := func(atk stats.Individual) int {
		return p.damage(move, atk.Species(), defender.Species(), atk.AttackStat(), defender.DefenseStat(), buffs)
	}
	r := p.sweep(attackers, Attack, dmg, true)
	p.logger.Debug("breakpoints computed",
		zap.String("defender", defender.String()),
		zap.String("move", move.ID()),
		zap.Int("candidates", r.Total),
		zap.Int("tiers", len(r.Tiers)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return r, nil
}

// sweep sorts cands by stat, short-circuits when both ends deal equal damage, and
// otherwise groups every candidate by damage. With byStat set, damage is evaluated
// once per distinct stat value.
func (p *Partitioner) sweep(cands []stats.Individual, stat Stat, dmg func(stats.Individual) int, byStat bool) Ranges {
	sorted := SortBy(cands, stat)
	lowest, highest := sorted[0], sorted[len(sorted)-1]
	rank1 := Rank1(sorted)

	r := Ranges{
		Stat:    stat,
		Tiers:   make(map[int]Bounds),
		Members: make(map[int][]stats.Individual),
		Rank1:   rank1,
		Total:   len(sorted),
	}

	atLowest, atHighest := dmg(lowest), dmg(highest)
	if atLowest == atHighest {
		r.MinDamage, r.MaxDamage = atLowest, atLowest
		r.Tiers[atLowest] = Bounds{Lowest: lowest, Highest: highest, Count: len(sorted)}
		r.Members[atLowest] = sorted
		r.DamageRank1 = atLowest
		return r
	}

	if byStat {
		for _, g := range GroupBy(sorted, stat.Of) {
			d := dmg(g.Members[0])
			r.Members[d] = append(r.Members[d], g.Members...)
		}
	} else {
		for _, ind := range sorted {
			d := dmg(ind)
			r.Members[d] = append(r.Members[d], ind)
		}
	}

	first := true
	for d, members := range r.Members {
		r.Tiers[d] = Bounds{Lowest: members[0], Highest: members[len(members)-1], Count: len(members)}
		if first || d < r.MinDamage {
			r.MinDamage = d
		}
		if first || d > r.MaxDamage {
			r.MaxDamage = d
		}
		first = false
	}
	r.DamageRank1 = dmg(rank1)
	return r
}

// Matchup is one labelled defender spread and the attacker partition against it.
type Matchup struct {
	Label    string
	Defender stats.Individual
	Ranges   Ranges
}

// VersusDefender runs Breakpoints for attackerSpecies against the lowest-defense,
// rank 1 and highest-defense spreads of defender under capLimit, in that order.
func (p *Partitioner) VersusDefender(ctx context.Context, attackerSpecies, defender *catalog.Species, move catalog.Move, capLimit int, buffs damage.Buffs) ([]Matchup, error) {
	roster, err := p.enum.Enumerate(ctx, defender, capLimit)
	if err != nil {
		return nil, fmt.Errorf("versus: %w", err)
	}
	defs := roster.Individuals()
	out := []Matchup{
		{Label: "min defense", Defender: LowestDefense(defs)},
		{Label: "rank 1", Defender: Rank1(defs)},
		{Label: "max defense", Defender: HighestDefense(defs)},
	}
	for i := range out {
		r, err := p.Breakpoints(ctx, attackerSpecies, out[i].Defender, move, capLimit, buffs)
		if err != nil {
			return nil, fmt.Errorf("versus %s: %w", out[i].Label, err)
		}
		out[i].Ranges = r
	}
	return out, nil
}
