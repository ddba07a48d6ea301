package catalog

import (
	"fmt"

	"github.com/cory-johannsen/pvp-damage/internal/game/typing"
)

// Move is either a *FastMove or a *ChargedMove.
// The unexported marker method keeps the set of implementations closed.
type Move interface {
	ID() string
	Name() string
	Type() typing.Type
	Power() int
	// Energy is the energy gained by a fast move or spent by a charged move.
	Energy() int
	isMove()
}

// FastMove is a move used every few turns that generates energy.
type FastMove struct {
	MoveID    string
	MoveName  string
	MoveType  typing.Type
	MovePower int
	// EnergyGain is the energy generated per use.
	EnergyGain int
	// Turns is the cooldown in 500ms turns.
	Turns int
}

func (m *FastMove) ID() string        { return m.MoveID }
func (m *FastMove) Name() string      { return m.MoveName }
func (m *FastMove) Type() typing.Type { return m.MoveType }
func (m *FastMove) Power() int        { return m.MovePower }
func (m *FastMove) Energy() int       { return m.EnergyGain }
func (*FastMove) isMove()             {}

// String returns "Name (type; N power, N energy, N turns)".
func (m *FastMove) String() string {
	return fmt.Sprintf("%s (%s; %d power, %d energy, %d turns)",
		m.MoveName, m.MoveType, m.MovePower, m.EnergyGain, m.Turns)
}

// ChargedMove is a move that spends accumulated energy.
type ChargedMove struct {
	MoveID    string
	MoveName  string
	MoveType  typing.Type
	MovePower int
	// EnergyCost is the energy required to use the move.
	EnergyCost int
}

func (m *ChargedMove) ID() string        { return m.MoveID }
func (m *ChargedMove) Name() string      { return m.MoveName }
func (m *ChargedMove) Type() typing.Type { return m.MoveType }
func (m *ChargedMove) Power() int        { return m.MovePower }
func (m *ChargedMove) Energy() int       { return m.EnergyCost }
func (*ChargedMove) isMove()             {}

// String returns "Name (type; N power, N energy)".
func (m *ChargedMove) String() string {
	return fmt.Sprintf("%s (%s; %d power, %d energy)",
		m.MoveName, m.MoveType, m.MovePower, m.EnergyCost)
}

// Moveset is one fast move and one or two charged moves.
type Moveset struct {
	Fast *FastMove
	// Charged holds the primary charged move and an optional second one (nil when absent).
	Charged [2]*ChargedMove
}

// NewMoveset builds a Moveset.
//
// Precondition: fast is non-nil.
// Postcondition: Returns an error unless 1 or 2 charged moves are supplied.
func NewMoveset(fast *FastMove, charged ...*ChargedMove) (Moveset, error) {
	if fast == nil {
		return Moveset{}, fmt.Errorf("catalog: moveset requires a fast move")
	}
	if len(charged) < 1 || len(charged) > 2 {
		return Moveset{}, fmt.Errorf("catalog: moveset requires 1 or 2 charged moves, got %d", len(charged))
	}
	ms := Moveset{Fast: fast}
	copy(ms.Charged[:], charged)
	return ms, nil
}
