package stats

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxIV is the highest value of a single IV.
const MaxIV = 15

// IVCombinations is the number of distinct IV triples.
const IVCombinations = (MaxIV + 1) * (MaxIV + 1) * (MaxIV + 1)

// IVs is an individual-value triple. Each component is in [0, 15].
type IVs struct {
	Attack  int
	Defense int
	Stamina int
}

// Hundo is the perfect 15/15/15 spread.
var Hundo = IVs{Attack: MaxIV, Defense: MaxIV, Stamina: MaxIV}

// IVsAt returns the IV triple with the given Index.
//
// Precondition: 0 <= i < IVCombinations.
func IVsAt(i int) IVs {
	return IVs{Attack: i >> 8, Defense: (i >> 4) & 0xF, Stamina: i & 0xF}
}

// Valid reports whether every component is in [0, 15].
func (iv IVs) Valid() bool {
	return validIV(iv.Attack) && validIV(iv.Defense) && validIV(iv.Stamina)
}

func validIV(v int) bool { return v >= 0 && v <= MaxIV }

// Index maps iv onto [0, 4096) in attack-major order.
//
// Precondition: iv.Valid().
func (iv IVs) Index() int {
	return iv.Attack<<8 | iv.Defense<<4 | iv.Stamina
}

// String returns "a/d/s".
func (iv IVs) String() string {
	return fmt.Sprintf("%d/%d/%d", iv.Attack, iv.Defense, iv.Stamina)
}

// ParseIVs parses "a/d/s", e.g. "0/15/15".
//
// Postcondition: Returns valid IVs or an error wrapping ErrInvalidIVs.
func ParseIVs(s string) (IVs, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 3 {
		return IVs{}, fmt.Errorf("stats: %w: %q is not a/d/s", ErrInvalidIVs, s)
	}
	var v [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return IVs{}, fmt.Errorf("stats: %w: %q: %w", ErrInvalidIVs, s, err)
		}
		v[i] = n
	}
	iv := IVs{Attack: v[0], Defense: v[1], Stamina: v[2]}
	if !iv.Valid() {
		return IVs{}, fmt.Errorf("stats: %w: %s", ErrInvalidIVs, iv)
	}
	return iv, nil
}
