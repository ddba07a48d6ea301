package typing

// Multiplier is a single-type damage multiplier.
type Multiplier float64

const (
	SuperEffective Multiplier = 1.6
	Resisted       Multiplier = 0.625
	// DoublyResisted models the game's "immune" relation as two stacked resistances.
	DoublyResisted Multiplier = 0.625 * 0.625
	Neutral        Multiplier = 1
)

// Matchup lists the defending types an attacking type is strong or weak against.
type Matchup struct {
	SuperEffectiveOn Set
	ResistedBy       Set
	DoublyResistedBy Set
}

var chart = [Count]Matchup{
	Normal: {
		ResistedBy:       SetOf(Rock, Steel),
		DoublyResistedBy: SetOf(Ghost),
	},
	Fighting: {
		SuperEffectiveOn: SetOf(Dark, Ice, Normal, Rock, Steel),
		ResistedBy:       SetOf(Bug, Fairy, Flying, Poison, Psychic),
		DoublyResistedBy: SetOf(Ghost),
	},
	Flying: {
		SuperEffectiveOn: SetOf(Bug, Fighting, Grass),
		ResistedBy:       SetOf(Electric, Rock, Steel),
	},
	Poison: {
		SuperEffectiveOn: SetOf(Fairy, Grass),
		ResistedBy:       SetOf(Ghost, Ground, Poison, Rock),
		DoublyResistedBy: SetOf(Steel),
	},
	Ground: {
		SuperEffectiveOn: SetOf(Electric, Fire, Poison, Rock, Steel),
		ResistedBy:       SetOf(Bug, Grass),
		DoublyResistedBy: SetOf(Flying),
	},
	Rock: {
		SuperEffectiveOn: SetOf(Bug, Fire, Flying, Ice),
		ResistedBy:       SetOf(Fighting, Ground, Steel),
	},
	Bug: {
		SuperEffectiveOn: SetOf(Dark, Grass, Psychic),
		ResistedBy:       SetOf(Fairy, Fighting, Fire, Flying, Ghost, Poison, Steel),
	},
	Ghost: {
		SuperEffectiveOn: SetOf(Ghost, Psychic),
		ResistedBy:       SetOf(Dark),
		DoublyResistedBy: SetOf(Normal),
	},
	Steel: {
		SuperEffectiveOn: SetOf(Fairy, Ice, Rock),
		ResistedBy:       SetOf(Electric, Fire, Steel, Water),
	},
	Fire: {
		SuperEffectiveOn: SetOf(Bug, Grass, Ice, Steel),
		ResistedBy:       SetOf(Dragon, Fire, Rock, Water),
	},
	Water: {
		SuperEffectiveOn: SetOf(Fire, Ground, Rock),
		ResistedBy:       SetOf(Dragon, Grass, Water),
	},
	Grass: {
		SuperEffectiveOn: SetOf(Ground, Rock, Water),
		ResistedBy:       SetOf(Bug, Dragon, Fire, Flying, Grass, Poison, Steel),
	},
	Electric: {
		SuperEffectiveOn: SetOf(Flying, Water),
		ResistedBy:       SetOf(Dragon, Electric, Grass),
		DoublyResistedBy: SetOf(Ground),
	},
	Psychic: {
		SuperEffectiveOn: SetOf(Fighting, Poison),
		ResistedBy:       SetOf(Psychic, Steel),
		DoublyResistedBy: SetOf(Dark),
	},
	Ice: {
		SuperEffectiveOn: SetOf(Dragon, Flying, Grass, Ground),
		ResistedBy:       SetOf(Fire, Ice, Steel, Water),
	},
	Dragon: {
		SuperEffectiveOn: SetOf(Dragon),
		ResistedBy:       SetOf(Steel),
		DoublyResistedBy: SetOf(Fairy),
	},
	Dark: {
		SuperEffectiveOn: SetOf(Ghost, Psychic),
		ResistedBy:       SetOf(Dark, Fairy, Fighting),
	},
	Fairy: {
		SuperEffectiveOn: SetOf(Dark, Dragon, Fighting),
		ResistedBy:       SetOf(Fire, Poison, Steel),
	},
}

// MatchupFor returns the chart row for the attacking type.
//
// Precondition: attack must be valid.
func MatchupFor(attack Type) Matchup {
	return chart[attack]
}

// Effectiveness returns the multiplier of an attacking type against one defending type.
//
// Precondition: attack and defend must be valid.
// Postcondition: Returns one of SuperEffective, Resisted, DoublyResisted, Neutral.
func Effectiveness(attack, defend Type) Multiplier {
	m := chart[attack]
	switch {
	case m.SuperEffectiveOn.Has(defend):
		return SuperEffective
	case m.ResistedBy.Has(defend):
		return Resisted
	case m.DoublyResistedBy.Has(defend):
		return DoublyResisted
	default:
		return Neutral
	}
}

// MoveEffectiveness returns the product of Effectiveness(attack, t) over the defender's types.
// Electric against Ground/Dragon is 0.625³.
//
// Precondition: attack and every defender type must be valid.
func MoveEffectiveness(attack Type, defender []Type) float64 {
	mult := 1.0
	for _, t := range defender {
		mult *= float64(Effectiveness(attack, t))
	}
	return mult
}
