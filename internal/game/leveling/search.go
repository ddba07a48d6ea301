// Package leveling finds the highest level an individual can reach under a CP cap
// and enumerates that level for every IV spread of a species.
package leveling

import (
	"errors"
	"fmt"
	"math"

	"github.com/cory-johannsen/pvp-damage/internal/game/catalog"
	"github.com/cory-johannsen/pvp-damage/internal/game/stats"
)

// ErrNoValidLevel is returned when even level 1 exceeds the cap.
var ErrNoValidLevel = errors.New("no level satisfies the CP cap")

// FindMaxLevel returns species at the highest level whose floored CP does not
// exceed capLimit.
//
// CP is 0.1 × cpm² × sqrt(atk² × def × sta) over base+IV stats, so the cap
// bounds cpm directly. The first table level at or above that bound is the
// candidate; the floor in CP can keep it eligible, otherwise the level below is.
//
// Precondition: species is non-nil; capLimit > 0.
// Postcondition: result.PowerCap() <= capLimit, and the next level (if any) exceeds
// capLimit. Returns an error wrapping ErrNoValidLevel or stats.ErrInvalidIVs otherwise.
func FindMaxLevel(species *catalog.Species, ivs stats.IVs, capLimit int) (stats.Individual, error) {
	if !ivs.Valid() {
		return stats.Individual{}, fmt.Errorf("leveling: %w: %s", stats.ErrInvalidIVs, ivs)
	}
	atk := species.Base.Attack + float64(ivs.Attack)
	def := species.Base.Defense + float64(ivs.Defense)
	sta := species.Base.Stamina + float64(ivs.Stamina)
	product := math.Sqrt(atk * atk * def * sta)

	cpmLimit := math.Sqrt(10 * float64(capLimit) / product)
	if cpmLimit > stats.MaxCPM() {
		return stats.NewIndividual(species, stats.MaxLevel, ivs)
	}

	idx := 0
	for idx < stats.LevelCount-1 && stats.LevelAt(idx).CPM() < cpmLimit {
		idx++
	}
	ind, err := stats.NewIndividual(species, stats.LevelAt(idx), ivs)
	if err != nil {
		return stats.Individual{}, err
	}
	if ind.PowerCap() <= capLimit {
		return ind, nil
	}
	if idx == 0 {
		return stats.Individual{}, fmt.Errorf("leveling: %w: %s %s at CP %d",
			ErrNoValidLevel, species.FullName(), ivs, capLimit)
	}
	return stats.NewIndividual(species, stats.LevelAt(idx-1), ivs)
}
