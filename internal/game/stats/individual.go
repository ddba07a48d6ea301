// Package stats models leveled individuals: the level multiplier table, IVs,
// effective stats and combat power.
package stats

import (
	"errors"
	"fmt"
	"math"

	"github.com/cory-johannsen/pvp-damage/internal/game/catalog"
)

var (
	// ErrInvalidLevel is returned for a level outside [1, 51] or off the 0.5 grid.
	ErrInvalidLevel = errors.New("invalid level")
	// ErrInvalidIVs is returned when an IV component is outside [0, 15].
	ErrInvalidIVs = errors.New("invalid IVs")
)

// MinCP is the floor applied to displayed combat power.
const MinCP = 10

// Individual is a species at a specific level with specific IVs.
// Effective stats are computed once at construction; the value is immutable.
type Individual struct {
	species *catalog.Species
	level   Level
	ivs     IVs
	attack  float64
	defense float64
	stamina float64
}

// NewIndividual builds an Individual.
//
// Precondition: species is non-nil.
// Postcondition: Returns an error wrapping ErrInvalidLevel or ErrInvalidIVs on bad input.
func NewIndividual(species *catalog.Species, level Level, ivs IVs) (Individual, error) {
	if !level.Valid() {
		return Individual{}, fmt.Errorf("stats: %w: %s", ErrInvalidLevel, level)
	}
	if !ivs.Valid() {
		return Individual{}, fmt.Errorf("stats: %w: %s", ErrInvalidIVs, ivs)
	}
	cpm := level.CPM()
	return Individual{
		species: species,
		level:   level,
		ivs:     ivs,
		attack:  (species.Base.Attack + float64(ivs.Attack)) * cpm,
		defense: (species.Base.Defense + float64(ivs.Defense)) * cpm,
		stamina: (species.Base.Stamina + float64(ivs.Stamina)) * cpm,
	}, nil
}

// MustIndividual is NewIndividual for inputs known to be valid.
//
// Precondition: level and ivs are valid.
func MustIndividual(species *catalog.Species, level Level, ivs IVs) Individual {
	ind, err := NewIndividual(species, level, ivs)
	if err != nil {
		panic(err)
	}
	return ind
}

func (i Individual) Species() *catalog.Species { return i.species }
func (i Individual) Level() Level              { return i.level }
func (i Individual) IVs() IVs                  { return i.ivs }
func (i Individual) CPM() float64              { return i.level.CPM() }

// AttackStat is (base attack + attack IV) × cpm.
func (i Individual) AttackStat() float64 { return i.attack }

// DefenseStat is (base defense + defense IV) × cpm.
func (i Individual) DefenseStat() float64 { return i.defense }

// StaminaStat is (base stamina + stamina IV) × cpm.
func (i Individual) StaminaStat() float64 { return i.stamina }

// HP is the floored stamina stat, never below 10.
func (i Individual) HP() int {
	return max(MinCP, int(math.Floor(i.stamina)))
}

// StatProduct is attack × defense × floor(stamina), the usual ranking key for IV spreads.
func (i Individual) StatProduct() float64 {
	return i.attack * i.defense * math.Floor(i.stamina)
}

// PowerCap is floor(0.1 × sqrt(attack² × defense × stamina)) with no minimum applied.
// League eligibility is decided on this value.
func (i Individual) PowerCap() int {
	return int(math.Floor(0.1 * math.Sqrt(i.attack*i.attack*i.defense*i.stamina)))
}

// CP is PowerCap raised to the in-game minimum of 10.
func (i Individual) CP() int {
	return max(MinCP, i.PowerCap())
}

// String returns "Name L<level> a/d/s CP n".
func (i Individual) String() string {
	return fmt.Sprintf("%s L%s %s CP %d", i.species.FullName(), i.level, i.ivs, i.CP())
}
