// Package typing defines the 18 battle types and the PvP type-effectiveness chart.
package typing

import (
	"errors"
	"fmt"
	"strings"
)

// Type is one of the 18 battle types.
type Type int

const (
	Normal Type = iota
	Fire
	Water
	Electric
	Grass
	Ice
	Fighting
	Poison
	Ground
	Flying
	Psychic
	Bug
	Rock
	Ghost
	Dragon
	Dark
	Steel
	Fairy
)

// Count is the number of battle types.
const Count = 18

// ErrUnknownType is returned when a type name does not match any battle type.
var ErrUnknownType = errors.New("unknown type")

var typeNames = [Count]string{
	Normal:   "normal",
	Fire:     "fire",
	Water:    "water",
	Electric: "electric",
	Grass:    "grass",
	Ice:      "ice",
	Fighting: "fighting",
	Poison:   "poison",
	Ground:   "ground",
	Flying:   "flying",
	Psychic:  "psychic",
	Bug:      "bug",
	Rock:     "rock",
	Ghost:    "ghost",
	Dragon:   "dragon",
	Dark:     "dark",
	Steel:    "steel",
	Fairy:    "fairy",
}

// String returns the lower-case game-data name of the type.
func (t Type) String() string {
	if !t.Valid() {
		return fmt.Sprintf("type(%d)", int(t))
	}
	return typeNames[t]
}

// Valid reports whether t is one of the 18 battle types.
func (t Type) Valid() bool {
	return t >= Normal && t <= Fairy
}

// Parse converts a game-data type name into a Type.
//
// Postcondition: Returns a valid Type, or an error wrapping ErrUnknownType.
func Parse(name string) (Type, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, tn := range typeNames {
		if tn == n {
			return Type(i), nil
		}
	}
	return 0, fmt.Errorf("typing: %w: %q", ErrUnknownType, name)
}

// All returns every battle type in declaration order.
//
// Postcondition: len(result) == Count.
func All() []Type {
	out := make([]Type, Count)
	for i := range out {
		out[i] = Type(i)
	}
	return out
}

// Set is a bitset of battle types.
type Set uint32

// SetOf builds a Set containing ts.
func SetOf(ts ...Type) Set {
	var s Set
	for _, t := range ts {
		s |= 1 << uint(t)
	}
	return s
}

// Has reports whether t is a member of s.
func (s Set) Has(t Type) bool {
	return s&(1<<uint(t)) != 0
}

// Types returns the members of s in declaration order.
func (s Set) Types() []Type {
	var out []Type
	for i := 0; i < Count; i++ {
		if s.Has(Type(i)) {
			out = append(out, Type(i))
		}
	}
	return out
}
