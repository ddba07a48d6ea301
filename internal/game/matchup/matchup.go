// Package matchup resolves loosely specified battlers (species by id or name,
// optional level, IVs and shadow flag) into concrete individuals and moves.
package matchup

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cory-johannsen/pvp-damage/internal/game/breakpoint"
	"github.com/cory-johannsen/pvp-damage/internal/game/catalog"
	"github.com/cory-johannsen/pvp-damage/internal/game/leveling"
	"github.com/cory-johannsen/pvp-damage/internal/game/stats"
)

// DefaultLevel is used for a battler given neither a level nor a cap.
const DefaultLevel stats.Level = 40

// Side describes one battler. Zero values mean "unset".
type Side struct {
	// Species is an id (optionally suffixed "_shadow") or a display name.
	Species string
	Shadow  bool
	Level   float64
	// IVs is "a/d/s".
	IVs string
}

// Resolver turns Sides into individuals against one catalog.
type Resolver struct {
	catalog *catalog.Catalog
	enum    *leveling.Enumerator
}

// NewResolver creates a Resolver. Rank 1 lookups enumerate through enum.
//
// Precondition: c and enum are non-nil.
func NewResolver(c *catalog.Catalog, enum *leveling.Enumerator) *Resolver {
	return &Resolver{catalog: c, enum: enum}
}

// Catalog returns the catalog the resolver looks names up in.
func (r *Resolver) Catalog() *catalog.Catalog { return r.catalog }

// Species resolves key as an id first, then as a display name. shadow forces the
// shadow form.
//
// Postcondition: Returns the species or an error wrapping catalog.ErrSpeciesNotFound.
func (r *Resolver) Species(key string, shadow bool) (*catalog.Species, error) {
	if strings.TrimSpace(key) == "" {
		return nil, &catalog.NotFoundError{Kind: "species", Key: key}
	}
	sp, err := r.catalog.SpeciesByID(strings.ToLower(strings.TrimSpace(key)))
	if err != nil {
		sp, err = r.catalog.Species(key, false)
		if err != nil {
			return nil, err
		}
	}
	if shadow && !sp.Shadow {
		sp = catalog.WithShadow(sp)
	}
	return sp, nil
}

// Move resolves name as a display name, then as a fast or charged move id.
//
// Postcondition: Returns catalog.ErrAmbiguousMove for names shared by a fast and a
// charged move, or an error wrapping catalog.ErrMoveNotFound.
func (r *Resolver) Move(name string) (catalog.Move, error) {
	m, err := r.catalog.Move(name)
	if err == nil || errors.Is(err, catalog.ErrAmbiguousMove) {
		return m, err
	}
	id := strings.ToUpper(strings.TrimSpace(name))
	if f, ferr := r.catalog.FastMoveByID(id); ferr == nil {
		return f, nil
	}
	if c, cerr := r.catalog.ChargedMoveByID(id); cerr == nil {
		return c, nil
	}
	return nil, err
}

// Individual builds side. An explicit level wins; otherwise the battler is
// levelled to capLimit with its IVs, or is the rank 1 spread under capLimit when
// it has none. Without a cap it is a DefaultLevel hundo unless IVs are given.
//
// Postcondition: Returns a valid individual or the first resolution error.
func (r *Resolver) Individual(ctx context.Context, side Side, capLimit int) (stats.Individual, error) {
	sp, err := r.Species(side.Species, side.Shadow)
	if err != nil {
		return stats.Individual{}, err
	}

	ivs := stats.Hundo
	if side.IVs != "" {
		if ivs, err = stats.ParseIVs(side.IVs); err != nil {
			return stats.Individual{}, err
		}
	}

	switch {
	case side.Level != 0:
		level, err := stats.NewLevel(side.Level)
		if err != nil {
			return stats.Individual{}, err
		}
		return stats.NewIndividual(sp, level, ivs)
	case capLimit > 0 && side.IVs != "":
		return leveling.FindMaxLevel(sp, ivs, capLimit)
	case capLimit > 0:
		roster, err := r.enum.Enumerate(ctx, sp, capLimit)
		if err != nil {
			return stats.Individual{}, fmt.Errorf("rank 1 of %s: %w", sp.Key(), err)
		}
		return breakpoint.Rank1(roster.Individuals()), nil
	default:
		return stats.NewIndividual(sp, DefaultLevel, ivs)
	}
}
