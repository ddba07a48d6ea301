// Package catalog holds the read-only move and species tables built once from game data.
package catalog

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

const shadowSuffix = "_shadow"

// Catalog indexes moves and species by display name and by id.
// It is never mutated after New returns and is safe for concurrent readers.
type Catalog struct {
	species       []*Species
	speciesByName map[string]*Species
	speciesByID   map[string]*Species
	fastByName    map[string]*FastMove
	fastByID      map[string]*FastMove
	chargedByName map[string]*ChargedMove
	chargedByID   map[string]*ChargedMove
	fastMoveCount int
	chargedCount  int
}

// New builds a Catalog. Entries are deduplicated by id; the first occurrence wins.
//
// Postcondition: Every lookup method reflects exactly the supplied records.
func New(fast []*FastMove, charged []*ChargedMove, species []*Species) *Catalog {
	c := &Catalog{
		speciesByName: make(map[string]*Species, len(species)),
		speciesByID:   make(map[string]*Species, len(species)),
		fastByName:    make(map[string]*FastMove, len(fast)),
		fastByID:      make(map[string]*FastMove, len(fast)),
		chargedByName: make(map[string]*ChargedMove, len(charged)),
		chargedByID:   make(map[string]*ChargedMove, len(charged)),
	}
	for _, m := range fast {
		if _, dup := c.fastByID[m.MoveID]; dup {
			continue
		}
		c.fastByID[m.MoveID] = m
		c.fastByName[fold(m.MoveName)] = m
		c.fastMoveCount++
	}
	for _, m := range charged {
		if _, dup := c.chargedByID[m.MoveID]; dup {
			continue
		}
		c.chargedByID[m.MoveID] = m
		c.chargedByName[fold(m.MoveName)] = m
		c.chargedCount++
	}
	for _, s := range species {
		if _, dup := c.speciesByID[s.ID]; dup {
			continue
		}
		c.species = append(c.species, s)
		c.speciesByID[s.ID] = s
		c.speciesByName[fold(s.Name)] = s
	}
	return c
}

// fold normalises a display name for case-insensitive lookups.
// A Caser is stateful, so one is created per call.
func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// Species returns the species with the given display name, optionally as its shadow form.
//
// Postcondition: Returns the species or an error wrapping ErrSpeciesNotFound.
func (c *Catalog) Species(name string, asShadow bool) (*Species, error) {
	s, ok := c.speciesByName[fold(name)]
	if !ok {
		return nil, &NotFoundError{Kind: "species", Key: name}
	}
	if asShadow {
		return WithShadow(s), nil
	}
	return s, nil
}

// SpeciesByID returns the species with the given id. An id ending in "_shadow"
// resolves to the shadow form of the base species.
//
// Postcondition: Returns the species or an error wrapping ErrSpeciesNotFound.
func (c *Catalog) SpeciesByID(id string) (*Species, error) {
	base, shadow := strings.CutSuffix(id, shadowSuffix)
	s, ok := c.speciesByID[base]
	if !ok {
		return nil, &NotFoundError{Kind: "species", Key: base}
	}
	if shadow {
		return WithShadow(s), nil
	}
	return s, nil
}

// AllSpecies returns every non-shadow species sorted by dex number, then id.
func (c *Catalog) AllSpecies() []*Species {
	out := make([]*Species, len(c.species))
	copy(out, c.species)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Dex != out[j].Dex {
			return out[i].Dex < out[j].Dex
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// FastMove returns the fast move with the given display name.
func (c *Catalog) FastMove(name string) (*FastMove, error) {
	m, ok := c.fastByName[fold(name)]
	if !ok {
		return nil, &NotFoundError{Kind: "fast move", Key: name}
	}
	return m, nil
}

// FastMoveByID returns the fast move with the given id.
func (c *Catalog) FastMoveByID(id string) (*FastMove, error) {
	m, ok := c.fastByID[id]
	if !ok {
		return nil, &NotFoundError{Kind: "fast move", Key: id}
	}
	return m, nil
}

// ChargedMove returns the charged move with the given display name.
func (c *Catalog) ChargedMove(name string) (*ChargedMove, error) {
	m, ok := c.chargedByName[fold(name)]
	if !ok {
		return nil, &NotFoundError{Kind: "charged move", Key: name}
	}
	return m, nil
}

// ChargedMoveByID returns the charged move with the given id.
func (c *Catalog) ChargedMoveByID(id string) (*ChargedMove, error) {
	m, ok := c.chargedByID[id]
	if !ok {
		return nil, &NotFoundError{Kind: "charged move", Key: id}
	}
	return m, nil
}

// Move resolves a display name to either a fast or a charged move.
//
// Postcondition: Returns ErrAmbiguousMove if the name matches both kinds, or an
// error wrapping ErrMoveNotFound if it matches neither.
func (c *Catalog) Move(name string) (Move, error) {
	key := fold(name)
	fast, isFast := c.fastByName[key]
	charged, isCharged := c.chargedByName[key]
	switch {
	case isFast && isCharged:
		return nil, fmt.Errorf("catalog: %w: %q is both %s and %s", ErrAmbiguousMove, name, fast, charged)
	case isFast:
		return fast, nil
	case isCharged:
		return charged, nil
	default:
		return nil, &NotFoundError{Kind: "move", Key: name}
	}
}

// SpeciesCount returns the number of non-shadow species.
func (c *Catalog) SpeciesCount() int { return len(c.species) }

// FastMoveCount returns the number of distinct fast moves.
func (c *Catalog) FastMoveCount() int { return c.fastMoveCount }

// ChargedMoveCount returns the number of distinct charged moves.
func (c *Catalog) ChargedMoveCount() int { return c.chargedCount }
