package breakpoint_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/pvp-damage/internal/game/breakpoint"
	"github.com/cory-johannsen/pvp-damage/internal/game/catalog"
	"github.com/cory-johannsen/pvp-damage/internal/game/damage"
	"github.com/cory-johannsen/pvp-damage/internal/game/leveling"
	"github.com/cory-johannsen/pvp-damage/internal/game/stats"
	"github.com/cory-johannsen/pvp-damage/internal/testutil"
)

type fixture struct {
	cat      *catalog.Catalog
	garchomp *catalog.Species
	gfisk    *catalog.Species
	mudShot  *catalog.FastMove
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	c := testutil.Catalog(t)
	mud, err := c.FastMoveByID("MUD_SHOT")
	require.NoError(t, err)
	return fixture{
		cat:      c,
		garchomp: testutil.MustSpecies(t, c, "garchomp"),
		gfisk:    testutil.MustSpecies(t, c, "stunfisk_galarian"),
		mudShot:  mud,
	}
}

// countingDamage wraps damage.FromStats and counts invocations.
func countingDamage(calls *atomic.Int64) breakpoint.DamageFunc {
	return func(move catalog.Move, attacker, defender *catalog.Species, attack, defense float64, buffs damage.Buffs) int {
		calls.Add(1)
		return damage.FromStats(move, attacker, defender, attack, defense, buffs)
	}
}

func roster(t *testing.T, s *catalog.Species, capLimit int) []stats.Individual {
	t.Helper()
	r, err := leveling.Enumerate(s, capLimit)
	require.NoError(t, err)
	return r.Individuals()
}

func TestBulkpoints_UniformRosterShortCircuits(t *testing.T) {
	c := testutil.Catalog(t)
	dialga := testutil.MustSpecies(t, c, "dialga")
	azumarill := testutil.MustSpecies(t, c, "azumarill")
	breath, err := c.FastMoveByID("DRAGON_BREATH")
	require.NoError(t, err)

	var calls atomic.Int64
	p := breakpoint.NewPartitioner(leveling.NewEnumerator(2, false, nil), breakpoint.WithDamageFunc(countingDamage(&calls)))
	attacker := stats.MustIndividual(dialga, 40, stats.Hundo)

	r, err := p.Bulkpoints(attacker, roster(t, azumarill, 1500), breath, damage.Buffs{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), calls.Load())
	assert.True(t, r.Uniform())
	assert.Equal(t, 3, r.MinDamage)
	assert.Equal(t, 3, r.MaxDamage)
	assert.Equal(t, 3, r.DamageRank1)
	assert.Equal(t, []int{3}, r.Damages())
	assert.Equal(t, stats.IVCombinations, r.Tiers[3].Count)
	assert.Len(t, r.Members[3], stats.IVCombinations)
	assert.InDelta(t, 100.0, r.Share(3), 1e-9)
	assert.Equal(t, breakpoint.Defense, r.Stat)
}

func TestBulkpoints_GalarianStunfiskVsMudShot(t *testing.T) {
	f := newFixture(t)
	p := breakpoint.NewPartitioner(leveling.NewEnumerator(4, true, nil))
	attacker := stats.MustIndividual(f.garchomp, 14.5, stats.IVs{Attack: 8, Defense: 0, Stamina: 1})

	r, err := p.BulkpointsForSpecies(context.Background(), attacker, f.gfisk, f.mudShot, 1500, damage.Buffs{})
	require.NoError(t, err)
	assert.Equal(t, 4, r.MinDamage)
	assert.Equal(t, 5, r.MaxDamage)
	assert.Equal(t, []int{4, 5}, r.Damages())
	assert.Equal(t, 80, r.Tiers[4].Count)
	assert.Equal(t, 4016, r.Tiers[5].Count)
	assert.Equal(t, stats.IVCombinations, r.Total)

	// More defense never takes more damage.
	assert.GreaterOrEqual(t, r.Tiers[4].Lowest.DefenseStat(), r.Tiers[5].Highest.DefenseStat())
	for d, members := range r.Members {
		b := r.Tiers[d]
		for _, m := range members {
			assert.GreaterOrEqual(t, m.DefenseStat(), b.Lowest.DefenseStat())
			assert.LessOrEqual(t, m.DefenseStat(), b.Highest.DefenseStat())
		}
	}

	assert.Equal(t, stats.IVs{Attack: 0, Defense: 12, Stamina: 15}, r.Rank1.IVs())
	assert.Equal(t, stats.Level(27), r.Rank1.Level())
	assert.Equal(t, 5, r.DamageRank1)
}

func TestBulkpoints_EveryCandidateEvaluatedWhenTiersDiffer(t *testing.T) {
	f := newFixture(t)
	var calls atomic.Int64
	p := breakpoint.NewPartitioner(leveling.NewEnumerator(1, false, nil), breakpoint.WithDamageFunc(countingDamage(&calls)))
	attacker := stats.MustIndividual(f.garchomp, 14.5, stats.IVs{Attack: 8, Defense: 0, Stamina: 1})

	_, err := p.Bulkpoints(attacker, roster(t, f.gfisk, 1500), f.mudShot, damage.Buffs{})
	require.NoError(t, err)
	// Two probes, one per candidate, one for rank 1.
	assert.Equal(t, int64(2+stats.IVCombinations+1), calls.Load())
}

func TestBulkpoints_EmptyRoster(t *testing.T) {
	f := newFixture(t)
	p := breakpoint.NewPartitioner(leveling.NewEnumerator(1, false, nil))
	attacker := stats.MustIndividual(f.garchomp, 20, stats.Hundo)
	_, err := p.Bulkpoints(attacker, nil, f.mudShot, damage.Buffs{})
	assert.ErrorIs(t, err, breakpoint.ErrEmptyRoster)
	_, err = p.BreakpointsAgainst(nil, attacker, f.mudShot, damage.Buffs{})
	assert.ErrorIs(t, err, breakpoint.ErrEmptyRoster)
}

func TestBulkpointsForSpecies_PropagatesEnumerationError(t *testing.T) {
	f := newFixture(t)
	p := breakpoint.NewPartitioner(leveling.NewEnumerator(1, false, nil))
	attacker := stats.MustIndividual(f.garchomp, 20, stats.Hundo)
	_, err := p.BulkpointsForSpecies(context.Background(), attacker, f.gfisk, f.mudShot, 10, damage.Buffs{})
	assert.ErrorIs(t, err, leveling.ErrNoValidLevel)
}

func TestBreakpoints_GarchompMudShot(t *testing.T) {
	f := newFixture(t)
	var calls atomic.Int64
	core, logs := observer.New(zapcore.DebugLevel)
	p := breakpoint.NewPartitioner(
		leveling.NewEnumerator(4, false, nil),
		breakpoint.WithDamageFunc(countingDamage(&calls)),
		breakpoint.WithLogger(zap.New(core)),
	)
	defender := stats.MustIndividual(f.gfisk, 26.5, stats.IVs{Attack: 4, Defense: 15, Stamina: 6})

	r, err := p.Breakpoints(context.Background(), f.garchomp, defender, f.mudShot, 1500, damage.Buffs{})
	require.NoError(t, err)
	assert.Equal(t, breakpoint.Attack, r.Stat)
	assert.Equal(t, 4, r.MinDamage)
	assert.Equal(t, 5, r.MaxDamage)
	assert.Equal(t, 3983, r.Tiers[4].Count)
	assert.Equal(t, 113, r.Tiers[5].Count)
	assert.Greater(t, r.Tiers[5].Lowest.AttackStat(), r.Tiers[4].Highest.AttackStat())

	distinct := len(breakpoint.GroupBy(roster(t, f.garchomp, 1500), breakpoint.Attack.Of))
	assert.Less(t, distinct, stats.IVCombinations)
	assert.Equal(t, int64(2+distinct+1), calls.Load())

	require.Equal(t, 1, logs.FilterMessage("breakpoints computed").Len())
}

func TestBreakpoints_MatchesPerIndividualDamage(t *testing.T) {
	f := newFixture(t)
	p := breakpoint.NewPartitioner(leveling.NewEnumerator(2, false, nil))
	defender := stats.MustIndividual(f.gfisk, 26.5, stats.IVs{Attack: 4, Defense: 15, Stamina: 6})
	attackers := roster(t, f.garchomp, 1500)

	r, err := p.BreakpointsAgainst(attackers, defender, f.mudShot, damage.Buffs{})
	require.NoError(t, err)
	total := 0
	for d, members := range r.Members {
		total += len(members)
		for _, m := range members {
			assert.Equal(t, d, damage.Calculate(f.mudShot, m, defender, damage.Buffs{}))
		}
	}
	assert.Equal(t, len(attackers), total)
}

func TestBreakpoints_SingleCandidate(t *testing.T) {
	f := newFixture(t)
	p := breakpoint.NewPartitioner(leveling.NewEnumerator(1, false, nil))
	attacker := stats.MustIndividual(f.garchomp, 14.5, stats.IVs{Attack: 8, Defense: 0, Stamina: 1})
	defender := stats.MustIndividual(f.gfisk, 26.5, stats.IVs{Attack: 4, Defense: 15, Stamina: 6})

	r, err := p.BreakpointsAgainst([]stats.Individual{attacker}, defender, f.mudShot, damage.Buffs{})
	require.NoError(t, err)
	assert.Equal(t, 5, r.MinDamage)
	assert.Equal(t, attacker, r.Tiers[5].Lowest)
	assert.Equal(t, attacker, r.Tiers[5].Highest)
	assert.Equal(t, attacker, r.Rank1)
}

func TestVersusDefender_OrdersTargetsByDefense(t *testing.T) {
	f := newFixture(t)
	p := breakpoint.NewPartitioner(leveling.NewEnumerator(4, true, nil))

	ms, err := p.VersusDefender(context.Background(), f.garchomp, f.gfisk, f.mudShot, 1500, damage.Buffs{})
	require.NoError(t, err)
	require.Len(t, ms, 3)
	assert.Equal(t, []string{"min defense", "rank 1", "max defense"}, []string{ms[0].Label, ms[1].Label, ms[2].Label})
	assert.Equal(t, stats.IVs{Attack: 0, Defense: 12, Stamina: 15}, ms[1].Defender.IVs())
	assert.LessOrEqual(t, ms[0].Defender.DefenseStat(), ms[1].Defender.DefenseStat())
	assert.LessOrEqual(t, ms[1].Defender.DefenseStat(), ms[2].Defender.DefenseStat())
	assert.GreaterOrEqual(t, ms[0].Ranges.MaxDamage, ms[2].Ranges.MaxDamage)
	for _, m := range ms {
		assert.Equal(t, stats.IVCombinations, m.Ranges.Total)
		assert.Equal(t, breakpoint.Attack, m.Ranges.Stat)
	}
}

func TestVersusDefender_NoValidLevel(t *testing.T) {
	f := newFixture(t)
	p := breakpoint.NewPartitioner(leveling.NewEnumerator(1, false, nil))
	_, err := p.VersusDefender(context.Background(), f.garchomp, f.gfisk, f.mudShot, 10, damage.Buffs{})
	assert.ErrorIs(t, err, leveling.ErrNoValidLevel)
}
