// Package report turns partition results into storable records and renders them as text.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/cory-johannsen/pvp-damage/internal/game/breakpoint"
	"github.com/cory-johannsen/pvp-damage/internal/game/catalog"
	"github.com/cory-johannsen/pvp-damage/internal/game/damage"
)

// Kind distinguishes the sweep that produced a report.
type Kind string

const (
	// KindBulkpoints varies the defender's IVs against a fixed attacker.
	KindBulkpoints Kind = "bulkpoints"
	// KindBreakpoints varies the attacker's IVs against a fixed defender.
	KindBreakpoints Kind = "breakpoints"
)

// Battler is the label of one side of a matchup, e.g. "Machamp (Shadow) (+1)".
type Battler struct {
	Name   string
	Shadow bool
	Buff   damage.Stage
}

// BattlerFor labels species with the given buff stage.
func BattlerFor(s *catalog.Species, buff damage.Stage) Battler {
	return Battler{Name: s.Name, Shadow: s.Shadow, Buff: buff}
}

func (b Battler) String() string {
	name := b.Name
	if b.Shadow {
		name += " (Shadow)"
	}
	switch {
	case b.Buff > 0:
		return fmt.Sprintf("%s (+%d)", name, b.Buff)
	case b.Buff < 0:
		return fmt.Sprintf("%s (%d)", name, b.Buff)
	}
	return name
}

// Tier is one damage value and the stat span of the individuals producing it.
type Tier struct {
	Damage  int     `json:"damage"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
	Low     float64 `json:"low"`
	High    float64 `json:"high"`
	LowIVs  string  `json:"low_ivs"`
	HighIVs string  `json:"high_ivs"`
}

// Report is a flattened, serialisable partition result.
type Report struct {
	ID          uuid.UUID `json:"id"`
	Kind        Kind      `json:"kind"`
	Attacker    string    `json:"attacker"`
	Defender    string    `json:"defender"`
	Move        string    `json:"move"`
	CapLimit    int       `json:"cap"`
	Stat        string    `json:"stat"`
	MinDamage   int       `json:"min_damage"`
	MaxDamage   int       `json:"max_damage"`
	Total       int       `json:"total"`
	Rank1       string    `json:"rank1"`
	Rank1Stat   float64   `json:"rank1_stat"`
	DamageRank1 int       `json:"damage_rank1"`
	Tiers       []Tier    `json:"tiers"`
	Summary     string    `json:"summary,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// FromRanges builds a Report with a fresh id. Tiers are ordered by ascending damage.
func FromRanges(kind Kind, attacker, defender Battler, move catalog.Move, capLimit int, r breakpoint.Ranges) *Report {
	rep := &Report{
		ID:          uuid.New(),
		Kind:        kind,
		Attacker:    attacker.String(),
		Defender:    defender.String(),
		Move:        move.Name(),
		CapLimit:    capLimit,
		Stat:        r.Stat.String(),
		MinDamage:   r.MinDamage,
		MaxDamage:   r.MaxDamage,
		Total:       r.Total,
		Rank1:       r.Rank1.IVs().String(),
		Rank1Stat:   r.Stat.Of(r.Rank1),
		DamageRank1: r.DamageRank1,
		CreatedAt:   time.Now().UTC(),
	}
	for _, d := range r.Damages() {
		b := r.Tiers[d]
		rep.Tiers = append(rep.Tiers, Tier{
			Damage:  d,
			Count:   b.Count,
			Percent: r.Share(d),
			Low:     r.Stat.Of(b.Lowest),
			High:    r.Stat.Of(b.Highest),
			LowIVs:  b.Lowest.IVs().String(),
			HighIVs: b.Highest.IVs().String(),
		})
	}
	return rep
}

// Title is the one-line matchup heading.
func (r *Report) Title() string {
	return fmt.Sprintf("%s using %s vs. %s", r.Attacker, r.Move, r.Defender)
}

// Span returns the lowest and highest varying-stat value across all tiers.
func (r *Report) Span() (lo, hi float64) {
	for i, t := range r.Tiers {
		if i == 0 || t.Low < lo {
			lo = t.Low
		}
		if i == 0 || t.High > hi {
			hi = t.High
		}
	}
	return lo, hi
}

func abbrev(stat string) string {
	if len(stat) < 3 {
		return stat
	}
	return stat[:3]
}

// Write renders r as text.
//
// Postcondition: Writes a header line, a range line and one line per tier.
func Write(w io.Writer, r *Report) error {
	p := message.NewPrinter(language.English)
	var b strings.Builder

	p.Fprintf(&b, "%s (CP cap %d)\n", r.Title(), r.CapLimit)
	if len(r.Tiers) > 0 {
		verb := "takes"
		if r.Kind == KindBreakpoints {
			verb = "deals"
		}
		lo, hi := r.Span()
		p.Fprintf(&b, "%.2f - %.2f %s; rank 1 %s (%.2f) %s %d\n",
			lo, hi, r.Stat, r.Rank1, r.Rank1Stat, verb, r.DamageRank1)
	}
	for _, t := range r.Tiers {
		p.Fprintf(&b, "- %d: %.2f%% of IVs; %s: %.2f - %.2f\n", t.Damage, t.Percent, abbrev(r.Stat), t.Low, t.High)
	}
	if r.Summary != "" {
		p.Fprintf(&b, "\n%s\n", r.Summary)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
