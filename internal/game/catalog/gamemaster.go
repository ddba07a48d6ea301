package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cory-johannsen/pvp-damage/internal/game/typing"
)

// cooldownPerTurn is the duration of one PvP turn in milliseconds.
const cooldownPerTurn = 500

// transformID is a fast move that generates no energy.
const transformID = "TRANSFORM"

// struggleFast stands in for species whose fast move data is missing. The game data
// lists Struggle only as a charged move.
var struggleFast = &FastMove{
	MoveID:    "STRUGGLE",
	MoveName:  "Struggle",
	MoveType:  typing.Normal,
	MovePower: 0,
	Turns:     1,
}

// gmFile is the top-level gamemaster document.
type gmFile struct {
	Pokemon []gmPokemon `json:"pokemon"`
	Moves   []gmMove    `json:"moves"`
}

type gmPokemon struct {
	Dex          *int         `json:"dex"`
	SpeciesID    string       `json:"speciesId"`
	SpeciesName  string       `json:"speciesName"`
	BaseStats    *gmBaseStats `json:"baseStats"`
	Types        []string     `json:"types"`
	FastMoves    []string     `json:"fastMoves"`
	ChargedMoves []string     `json:"chargedMoves"`
}

type gmBaseStats struct {
	Atk *float64 `json:"atk"`
	Def *float64 `json:"def"`
	HP  *float64 `json:"hp"`
}

type gmMove struct {
	MoveID     string `json:"moveId"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	Power      *int   `json:"power"`
	Energy     *int   `json:"energy"`
	EnergyGain *int   `json:"energyGain"`
	Cooldown   *int   `json:"cooldown"`
}

// LoadGamemaster reads and parses a gamemaster JSON file.
//
// Precondition: path must point to a gamemaster document.
// Postcondition: Returns a populated Catalog or a non-nil error.
func LoadGamemaster(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening gamemaster %s: %w", path, err)
	}
	defer f.Close()
	c, err := DecodeGamemaster(f)
	if err != nil {
		return nil, fmt.Errorf("loading gamemaster %s: %w", path, err)
	}
	return c, nil
}

// DecodeGamemaster parses a gamemaster document from r.
//
// Postcondition: Returns a populated Catalog, or an error wrapping ErrSchema that
// names the offending record.
func DecodeGamemaster(r io.Reader) (*Catalog, error) {
	var file gmFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("parsing gamemaster JSON: %w", err)
	}
	if file.Pokemon == nil || file.Moves == nil {
		return nil, fmt.Errorf("%w: document requires both \"pokemon\" and \"moves\"", ErrSchema)
	}

	fast, charged, err := convertMoves(file.Moves)
	if err != nil {
		return nil, err
	}
	fastByID := make(map[string]*FastMove, len(fast))
	for _, m := range fast {
		fastByID[m.MoveID] = m
	}
	chargedByID := make(map[string]*ChargedMove, len(charged))
	for _, m := range charged {
		chargedByID[m.MoveID] = m
	}

	species := make([]*Species, 0, len(file.Pokemon))
	for i, gp := range file.Pokemon {
		if skipSpecies(gp.SpeciesID) {
			continue
		}
		s, err := convertPokemon(i, gp, fastByID, chargedByID)
		if err != nil {
			return nil, err
		}
		species = append(species, s)
	}
	return New(fast, charged, species), nil
}

// skipSpecies filters shadow entries (derived with WithShadow instead) and the
// XS/XL size variants.
func skipSpecies(id string) bool {
	return strings.Contains(id, "shadow") || strings.Contains(id, "_xs") || strings.Contains(id, "_xl")
}

// convertMoves splits game-data moves into fast and charged moves. Fast moves carry a
// non-zero energy gain; charged moves a non-zero energy cost.
func convertMoves(moves []gmMove) ([]*FastMove, []*ChargedMove, error) {
	var fast []*FastMove
	var charged []*ChargedMove
	for i, gm := range moves {
		if gm.MoveID == "" || gm.Name == "" || gm.Type == "" {
			return nil, nil, fmt.Errorf("%w: moves[%d] (%q) requires moveId, name and type", ErrSchema, i, gm.MoveID)
		}
		if gm.Power == nil || gm.Energy == nil || gm.EnergyGain == nil {
			return nil, nil, fmt.Errorf("%w: move %s requires power, energy and energyGain", ErrSchema, gm.MoveID)
		}
		t, err := typing.Parse(gm.Type)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: move %s: %w", ErrSchema, gm.MoveID, err)
		}
		if *gm.EnergyGain != 0 || gm.MoveID == transformID {
			if gm.Cooldown == nil {
				return nil, nil, fmt.Errorf("%w: fast move %s requires cooldown", ErrSchema, gm.MoveID)
			}
			fast = append(fast, &FastMove{
				MoveID:     gm.MoveID,
				MoveName:   gm.Name,
				MoveType:   t,
				MovePower:  *gm.Power,
				EnergyGain: *gm.EnergyGain,
				Turns:      *gm.Cooldown / cooldownPerTurn,
			})
		}
		if *gm.Energy != 0 {
			charged = append(charged, &ChargedMove{
				MoveID:     gm.MoveID,
				MoveName:   gm.Name,
				MoveType:   t,
				MovePower:  *gm.Power,
				EnergyCost: *gm.Energy,
			})
		}
	}
	fast = append(fast, struggleFast)
	return fast, charged, nil
}

func convertPokemon(i int, gp gmPokemon, fastByID map[string]*FastMove, chargedByID map[string]*ChargedMove) (*Species, error) {
	if gp.SpeciesID == "" || gp.SpeciesName == "" || gp.Dex == nil {
		return nil, fmt.Errorf("%w: pokemon[%d] (%q) requires dex, speciesId and speciesName", ErrSchema, i, gp.SpeciesID)
	}
	if gp.BaseStats == nil || gp.BaseStats.Atk == nil || gp.BaseStats.Def == nil || gp.BaseStats.HP == nil {
		return nil, fmt.Errorf("%w: species %s requires baseStats.atk, baseStats.def and baseStats.hp", ErrSchema, gp.SpeciesID)
	}

	s := &Species{
		Dex:  *gp.Dex,
		ID:   gp.SpeciesID,
		Name: gp.SpeciesName,
		Base: BaseStats{
			Attack:  *gp.BaseStats.Atk,
			Defense: *gp.BaseStats.Def,
			Stamina: *gp.BaseStats.HP,
		},
	}
	for _, name := range gp.Types {
		if name == "none" {
			continue
		}
		t, err := typing.Parse(name)
		if err != nil {
			return nil, fmt.Errorf("%w: species %s: %w", ErrSchema, gp.SpeciesID, err)
		}
		s.Types = append(s.Types, t)
	}
	if len(s.Types) < 1 || len(s.Types) > 2 {
		return nil, fmt.Errorf("%w: species %s must have 1 or 2 types, got %d", ErrSchema, gp.SpeciesID, len(s.Types))
	}
	for _, id := range gp.FastMoves {
		m, ok := fastByID[id]
		if !ok {
			return nil, fmt.Errorf("%w: species %s: %w", ErrSchema, gp.SpeciesID, &NotFoundError{Kind: "fast move", Key: id})
		}
		s.FastMoves = append(s.FastMoves, m)
	}
	for _, id := range gp.ChargedMoves {
		m, ok := chargedByID[id]
		if !ok {
			return nil, fmt.Errorf("%w: species %s: %w", ErrSchema, gp.SpeciesID, &NotFoundError{Kind: "charged move", Key: id})
		}
		s.ChargedMoves = append(s.ChargedMoves, m)
	}
	return s, nil
}
