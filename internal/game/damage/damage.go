// Package damage computes single-hit PvP damage.
package damage

import (
	"math"

	"github.com/cory-johannsen/pvp-damage/internal/game/catalog"
	"github.com/cory-johannsen/pvp-damage/internal/game/stats"
	"github.com/cory-johannsen/pvp-damage/internal/game/typing"
)

const (
	// STABBonus applies when the move type matches one of the attacker's types.
	STABBonus = 1.2
	// ShadowAttackBonus scales a shadow attacker's attack.
	ShadowAttackBonus = 1.2
	// ShadowDefensePenalty scales a shadow defender's defense.
	ShadowDefensePenalty = 5.0 / 6.0
	// pvpScale is the 0.5 × 1.3 factor used by trainer battles.
	pvpScale = 0.5 * 1.3
)

// Stage is a stat buff stage, meaningful in [-4, +4].
type Stage int

const (
	MinStage Stage = -4
	MaxStage Stage = 4
)

var stageMultipliers = [MaxStage - MinStage + 1]float64{
	0.5, 4.0 / 7.0, 4.0 / 6.0, 4.0 / 5.0, 1, 5.0 / 4.0, 6.0 / 4.0, 7.0 / 4.0, 2,
}

// Multiplier returns the stat multiplier for s, clamping s to [-4, +4].
func (s Stage) Multiplier() float64 {
	return stageMultipliers[min(max(s, MinStage), MaxStage)-MinStage]
}

// Buffs are the attacker's attack stage and the defender's defense stage.
type Buffs struct {
	Attack  Stage
	Defense Stage
}

// IsSTAB reports whether move shares a type with species.
func IsSTAB(move catalog.Move, species *catalog.Species) bool {
	return species.HasType(move.Type())
}

// Calculate returns the damage move deals when attacker hits defender.
//
// Precondition: attacker and defender were built by stats.NewIndividual.
// Postcondition: Result is >= 1 and depends only on the arguments.
func Calculate(move catalog.Move, attacker, defender stats.Individual, buffs Buffs) int {
	return FromStats(
		move,
		attacker.Species(),
		defender.Species(),
		attacker.AttackStat(),
		defender.DefenseStat(),
		buffs,
	)
}

// FromStats is Calculate on raw attack and defense stats, letting callers reuse one
// damage value for every individual that shares a stat.
func FromStats(move catalog.Move, attacker, defender *catalog.Species, attack, defense float64, buffs Buffs) int {
	stab := 1.0
	if IsSTAB(move, attacker) {
		stab = STABBonus
	}
	effAttack := attack * buffs.Attack.Multiplier()
	if attacker.Shadow {
		effAttack *= ShadowAttackBonus
	}
	effDefense := defense * buffs.Defense.Multiplier()
	if defender.Shadow {
		effDefense *= ShadowDefensePenalty
	}
	mult := stab * typing.MoveEffectiveness(move.Type(), defender.Types)
	// The conversion keeps the product from fusing with the +1 on FMA targets.
	scaled := float64(pvpScale * effAttack / effDefense * mult * float64(move.Power()))
	return int(math.Floor(scaled + 1))
}
