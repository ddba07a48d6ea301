package catalog

import "github.com/cory-johannsen/pvp-damage/internal/game/typing"

// BaseStats are a species' base attack, defense and stamina.
type BaseStats struct {
	Attack  float64
	Defense float64
	Stamina float64
}

// Species is the immutable per-species record loaded from the game data.
// Values are shared read-only; derive variants with WithShadow instead of mutating.
type Species struct {
	Dex          int
	ID           string
	Name         string
	Types        []typing.Type
	Base         BaseStats
	FastMoves    []*FastMove
	ChargedMoves []*ChargedMove
	Shadow       bool
}

// WithShadow returns the shadow form of s: identical data with Shadow set.
//
// Postcondition: s is unchanged; result.Shadow is true.
func WithShadow(s *Species) *Species {
	out := *s
	out.Shadow = true
	return &out
}

// HasType reports whether t is one of the species' types.
func (s *Species) HasType(t typing.Type) bool {
	for _, st := range s.Types {
		if st == t {
			return true
		}
	}
	return false
}

// FullName is the display name with a "(Shadow)" suffix for shadow forms.
func (s *Species) FullName() string {
	if s.Shadow {
		return s.Name + " (Shadow)"
	}
	return s.Name
}

// Key identifies the species form: the species id, suffixed with "_shadow" for shadows.
func (s *Species) Key() string {
	if s.Shadow {
		return s.ID + shadowSuffix
	}
	return s.ID
}

// Same reports whether s and o are the same species form.
func (s *Species) Same(o *Species) bool {
	if s == nil || o == nil {
		return s == o
	}
	return s.ID == o.ID && s.Shadow == o.Shadow
}

// KnowsMove reports whether m is in the species' legal fast or charged move list.
func (s *Species) KnowsMove(m Move) bool {
	switch mv := m.(type) {
	case *FastMove:
		for _, f := range s.FastMoves {
			if f.MoveID == mv.MoveID {
				return true
			}
		}
	case *ChargedMove:
		for _, c := range s.ChargedMoves {
			if c.MoveID == mv.MoveID {
				return true
			}
		}
	}
	return false
}
