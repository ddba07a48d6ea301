package breakpoint

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/cory-johannsen/pvp-damage/internal/game/stats"
)

// Stat selects one effective stat of an individual.
type Stat int

const (
	Attack Stat = iota
	Defense
	Stamina
)

// Of returns the selected effective stat of ind.
func (s Stat) Of(ind stats.Individual) float64 {
	switch s {
	case Attack:
		return ind.AttackStat()
	case Defense:
		return ind.DefenseStat()
	default:
		return ind.StaminaStat()
	}
}

func (s Stat) String() string {
	switch s {
	case Attack:
		return "attack"
	case Defense:
		return "defense"
	default:
		return "stamina"
	}
}

// ParseStat accepts "attack", "defense" or "stamina" and their three-letter forms.
func ParseStat(name string) (Stat, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "attack", "atk":
		return Attack, nil
	case "defense", "def":
		return Defense, nil
	case "stamina", "sta", "hp":
		return Stamina, nil
	}
	return 0, fmt.Errorf("breakpoint: unknown stat %q", name)
}

func mustNonEmpty(inds []stats.Individual, op string) {
	if len(inds) == 0 {
		panic("breakpoint." + op + ": empty roster")
	}
}

// Highest returns the member with the largest s. Ties keep the first.
//
// Precondition: len(inds) > 0.
func Highest(inds []stats.Individual, s Stat) stats.Individual {
	mustNonEmpty(inds, "Highest")
	return slices.MaxFunc(inds, func(a, b stats.Individual) int { return cmp.Compare(s.Of(a), s.Of(b)) })
}

// Lowest returns the member with the smallest s. Ties keep the first.
//
// Precondition: len(inds) > 0.
func Lowest(inds []stats.Individual, s Stat) stats.Individual {
	mustNonEmpty(inds, "Lowest")
	return slices.MinFunc(inds, func(a, b stats.Individual) int { return cmp.Compare(s.Of(a), s.Of(b)) })
}

func HighestAttack(inds []stats.Individual) stats.Individual  { return Highest(inds, Attack) }
func HighestDefense(inds []stats.Individual) stats.Individual { return Highest(inds, Defense) }
func HighestStamina(inds []stats.Individual) stats.Individual { return Highest(inds, Stamina) }
func LowestAttack(inds []stats.Individual) stats.Individual   { return Lowest(inds, Attack) }
func LowestDefense(inds []stats.Individual) stats.Individual  { return Lowest(inds, Defense) }
func LowestStamina(inds []stats.Individual) stats.Individual  { return Lowest(inds, Stamina) }

// SortBy returns a copy of inds stably sorted by ascending s.
func SortBy(inds []stats.Individual, s Stat) []stats.Individual {
	out := slices.Clone(inds)
	slices.SortStableFunc(out, func(a, b stats.Individual) int { return cmp.Compare(s.Of(a), s.Of(b)) })
	return out
}

func SortByAttack(inds []stats.Individual) []stats.Individual  { return SortBy(inds, Attack) }
func SortByDefense(inds []stats.Individual) []stats.Individual { return SortBy(inds, Defense) }
func SortByStamina(inds []stats.Individual) []stats.Individual { return SortBy(inds, Stamina) }

// Rank1 returns the member with the highest stat product.
//
// Precondition: len(inds) > 0.
func Rank1(inds []stats.Individual) stats.Individual {
	mustNonEmpty(inds, "Rank1")
	return slices.MaxFunc(inds, func(a, b stats.Individual) int {
		return cmp.Compare(a.StatProduct(), b.StatProduct())
	})
}

// Group is the members sharing one key value.
type Group struct {
	Key     float64
	Members []stats.Individual
}

// GroupBy buckets inds by key, returning groups in ascending key order.
// Members keep their relative order within a group.
func GroupBy(inds []stats.Individual, key func(stats.Individual) float64) []Group {
	index := make(map[float64]int)
	var groups []Group
	for _, ind := range inds {
		k := key(ind)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, Group{Key: k})
		}
		groups[i].Members = append(groups[i].Members, ind)
	}
	slices.SortFunc(groups, func(a, b Group) int { return cmp.Compare(a.Key, b.Key) })
	return groups
}

// Filter returns the members for which keep reports true.
func Filter(inds []stats.Individual, keep func(stats.Individual) bool) []stats.Individual {
	var out []stats.Individual
	for _, ind := range inds {
		if keep(ind) {
			out = append(out, ind)
		}
	}
	return out
}

// ParseFilter compiles expressions such as "attack>=127.18" or "def < 150".
// Supported operators are >=, <=, >, < and =.
func ParseFilter(expr string) (func(stats.Individual) bool, error) {
	e := strings.ReplaceAll(expr, " ", "")
	for _, op := range []string{">=", "<=", ">", "<", "="} {
		name, rawValue, found := strings.Cut(e, op)
		if !found {
			continue
		}
		s, err := ParseStat(name)
		if err != nil {
			return nil, err
		}
		v, err := strconv.ParseFloat(rawValue, 64)
		if err != nil {
			return nil, fmt.Errorf("breakpoint: filter %q: %w", expr, err)
		}
		return compare(s, op, v), nil
	}
	return nil, fmt.Errorf("breakpoint: filter %q has no comparison operator", expr)
}

func compare(s Stat, op string, v float64) func(stats.Individual) bool {
	switch op {
	case ">=":
		return func(ind stats.Individual) bool { return s.Of(ind) >= v }
	case "<=":
		return func(ind stats.Individual) bool { return s.Of(ind) <= v }
	case ">":
		return func(ind stats.Individual) bool { return s.Of(ind) > v }
	case "<":
		return func(ind stats.Individual) bool { return s.Of(ind) < v }
	default:
		return func(ind stats.Individual) bool { return s.Of(ind) == v }
	}
}

// FormatRange renders the span of s over inds, e.g. "127.18 - 131.02 attack".
// Stamina is shown as whole hit points.
//
// Precondition: len(inds) > 0.
func FormatRange(inds []stats.Individual, s Stat) string {
	lo, hi := s.Of(Lowest(inds, s)), s.Of(Highest(inds, s))
	if s == Stamina {
		return fmt.Sprintf("%d - %d %s", int(math.Floor(lo)), int(math.Floor(hi)), s)
	}
	return fmt.Sprintf("%.2f - %.2f %s", lo, hi, s)
}

func FormatAttackRange(inds []stats.Individual) string  { return FormatRange(inds, Attack) }
func FormatDefenseRange(inds []stats.Individual) string { return FormatRange(inds, Defense) }
func FormatStaminaRange(inds []stats.Individual) string { return FormatRange(inds, Stamina) }
