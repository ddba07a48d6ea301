package api

import (
	"github.com/cory-johannsen/pvp-damage/internal/game/catalog"
	"github.com/cory-johannsen/pvp-damage/internal/game/stats"
)

type baseStatsJSON struct {
	Attack  float64 `json:"attack"`
	Defense float64 `json:"defense"`
	Stamina float64 `json:"stamina"`
}

type speciesJSON struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Dex          int           `json:"dex"`
	Shadow       bool          `json:"shadow"`
	Types        []string      `json:"types"`
	Base         baseStatsJSON `json:"base_stats"`
	FastMoves    []string      `json:"fast_moves"`
	ChargedMoves []string      `json:"charged_moves"`
}

func newSpeciesJSON(s *catalog.Species) speciesJSON {
	out := speciesJSON{
		ID:     s.Key(),
		Name:   s.Name,
		Dex:    s.Dex,
		Shadow: s.Shadow,
		Base: baseStatsJSON{
			Attack:  s.Base.Attack,
			Defense: s.Base.Defense,
			Stamina: s.Base.Stamina,
		},
		FastMoves:    []string{},
		ChargedMoves: []string{},
	}
	for _, t := range s.Types {
		out.Types = append(out.Types, t.String())
	}
	for _, m := range s.FastMoves {
		out.FastMoves = append(out.FastMoves, m.MoveName)
	}
	for _, m := range s.ChargedMoves {
		out.ChargedMoves = append(out.ChargedMoves, m.MoveName)
	}
	return out
}

type individualJSON struct {
	Species     string  `json:"species"`
	Level       float64 `json:"level"`
	IVs         string  `json:"ivs"`
	CP          int     `json:"cp"`
	HP          int     `json:"hp"`
	Attack      float64 `json:"attack"`
	Defense     float64 `json:"defense"`
	Stamina     float64 `json:"stamina"`
	StatProduct float64 `json:"stat_product"`
}

func newIndividualJSON(ind stats.Individual) individualJSON {
	return individualJSON{
		Species:     ind.Species().FullName(),
		Level:       float64(ind.Level()),
		IVs:         ind.IVs().String(),
		CP:          ind.CP(),
		HP:          ind.HP(),
		Attack:      ind.AttackStat(),
		Defense:     ind.DefenseStat(),
		Stamina:     ind.StaminaStat(),
		StatProduct: ind.StatProduct(),
	}
}
