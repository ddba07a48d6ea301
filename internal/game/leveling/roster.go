package leveling

import (
	"fmt"

	"github.com/cory-johannsen/pvp-damage/internal/game/catalog"
	"github.com/cory-johannsen/pvp-damage/internal/game/stats"
)

// Roster holds the max-level individual for every IV spread of one species under one cap.
// A Roster is read-only once built.
type Roster struct {
	species  *catalog.Species
	capLimit int
	members  []stats.Individual
}

func newRoster(species *catalog.Species, capLimit int) *Roster {
	return &Roster{
		species:  species,
		capLimit: capLimit,
		members:  make([]stats.Individual, stats.IVCombinations),
	}
}

func (r *Roster) Species() *catalog.Species { return r.species }
func (r *Roster) CapLimit() int             { return r.capLimit }
func (r *Roster) Len() int                  { return len(r.members) }

// At returns the individual with the given IVs.
//
// Precondition: ivs.Valid().
func (r *Roster) At(ivs stats.IVs) stats.Individual {
	if !ivs.Valid() {
		panic(fmt.Sprintf("leveling.Roster.At: invalid IVs %s", ivs))
	}
	return r.members[ivs.Index()]
}

// Individuals returns a copy of every member in IV index order.
func (r *Roster) Individuals() []stats.Individual {
	out := make([]stats.Individual, len(r.members))
	copy(out, r.members)
	return out
}

// Enumerate builds the Roster for species under capLimit on the calling goroutine.
//
// Postcondition: Returns a Roster with exactly stats.IVCombinations members, or the
// first FindMaxLevel error.
func Enumerate(species *catalog.Species, capLimit int) (*Roster, error) {
	r := newRoster(species, capLimit)
	if err := r.fill(0, stats.IVCombinations); err != nil {
		return nil, err
	}
	return r, nil
}

// fill populates members[from:to]. Disjoint ranges may be filled concurrently.
func (r *Roster) fill(from, to int) error {
	for i := from; i < to; i++ {
		ind, err := FindMaxLevel(r.species, stats.IVsAt(i), r.capLimit)
		if err != nil {
			return err
		}
		r.members[i] = ind
	}
	return nil
}
