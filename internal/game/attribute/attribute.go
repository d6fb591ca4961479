// Package attribute defines the sub-attribute and primary-attribute model
// underlying every derived character statistic.
package attribute

// SubName identifies one of the twelve granular sub-attributes.
type SubName string

// The twelve sub-attributes. Every character carries a score for each.
const (
	BruteForce   SubName = "Brute Force"
	Endurance    SubName = "Endurance"
	Dexterity    SubName = "Dexterity"
	Reflexes     SubName = "Reflexes"
	Resilience   SubName = "Resilience"
	Constitution SubName = "Constitution"
	Logic        SubName = "Logic"
	Knowledge    SubName = "Knowledge"
	Perception   SubName = "Perception"
	Intuition    SubName = "Intuition"
	Charm        SubName = "Charm"
	Willpower    SubName = "Willpower"
)

// SubNames lists all sub-attributes in canonical display order.
var SubNames = []SubName{
	BruteForce, Endurance, Dexterity, Reflexes,
	Resilience, Constitution, Logic, Knowledge,
	Perception, Intuition, Charm, Willpower,
}

// Valid reports whether n is one of the twelve defined sub-attributes.
func (n SubName) Valid() bool {
	for _, s := range SubNames {
		if n == s {
			return true
		}
	}
	return false
}

// PrimaryName identifies one of the six aggregate primary attributes.
type PrimaryName string

// The six primary attributes.
const (
	STR PrimaryName = "STR"
	AGI PrimaryName = "AGI"
	VIG PrimaryName = "VIG"
	INT PrimaryName = "INT"
	INS PrimaryName = "INS"
	PRE PrimaryName = "PRE"
)

// PrimaryNames lists all primary attributes in canonical display order.
var PrimaryNames = []PrimaryName{STR, AGI, VIG, INT, INS, PRE}

// governing maps each primary attribute to the ordered pair of
// sub-attributes whose scores it averages.
var governing = map[PrimaryName][2]SubName{
	STR: {BruteForce, Endurance},
	AGI: {Dexterity, Reflexes},
	VIG: {Resilience, Constitution},
	INT: {Logic, Knowledge},
	INS: {Perception, Intuition},
	PRE: {Charm, Willpower},
}

// Governing returns the two sub-attributes averaged into primary p.
//
// Precondition: p must be one of the six defined primary attributes.
func Governing(p PrimaryName) (SubName, SubName) {
	pair, ok := governing[p]
	if !ok {
		panic("attribute: Governing called with unknown primary " + string(p))
	}
	return pair[0], pair[1]
}

// Valid reports whether p is one of the six defined primary attributes.
func (p PrimaryName) Valid() bool {
	_, ok := governing[p]
	return ok
}

// Modifier computes the standard attribute modifier: floor((score - 10) / 2).
// Uses true floor division so negative intermediates round down, not toward zero.
//
// Postcondition: Modifier(8) == -1, Modifier(10) == 0, Modifier(15) == 2.
func Modifier(score int) int {
	diff := score - 10
	if diff < 0 {
		return (diff - 1) / 2
	}
	return diff / 2
}

// Sub is a single named sub-attribute score.
// Scores start at 8 during baseline creation and are unbounded upward.
type Sub struct {
	Name  SubName
	Score int
}

// Primary is a derived aggregate attribute. Score and Mod are always
// recomputed from the governing sub-attributes, never set directly.
type Primary struct {
	Name  PrimaryName
	Score int
	Mod   int
}
