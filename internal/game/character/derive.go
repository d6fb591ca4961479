package character

import (
	"github.com/dungeonmaister/gameserver/internal/game/attribute"
)

// Base constants for resource pool maxima.
const (
	baseHP = 10
	baseSP = 5
	baseEP = 5
)

// Recalculate recomputes every derived field from the character's current
// sub-attributes, species bonuses, and level:
//
//	primary score  = average of the two governing sub-attribute scores
//	primary mod    = floor((score - 10) / 2)
//	HP max         = 10 + Resilience mod × level + species HP bonus
//	SP max         = 5 + Endurance mod × level + species SP bonus
//	EP max         = 5 + (Logic mod + Willpower mod) × level + species EP bonus
//	Defense        = 10 + Reflexes mod
//	MovementSpeed  = 30 + Reflexes mod × 5 + species speed bonus
//	Carrying       = Brute Force score × 5 + species carrying bonus
//	Initiative     = Reflexes mod
//
// Current pool values are clamped down to the new maxima but never raised:
// recomputing stats must not heal a damaged character. Filling pools to max
// happens once, at baseline creation.
//
// Must be called after every mutation touching a sub-attribute, a species
// bonus accumulator, or the level.
func (c *Character) Recalculate() {
	for _, name := range attribute.PrimaryNames {
		a, b := attribute.Governing(name)
		pri := c.PrimaryAttributes[name]
		pri.Score = (c.SubScore(a) + c.SubScore(b)) / 2
		pri.Mod = attribute.Modifier(pri.Score)
	}

	resMod := attribute.Modifier(c.SubScore(attribute.Resilience))
	endMod := attribute.Modifier(c.SubScore(attribute.Endurance))
	logMod := attribute.Modifier(c.SubScore(attribute.Logic))
	wilMod := attribute.Modifier(c.SubScore(attribute.Willpower))
	refMod := attribute.Modifier(c.SubScore(attribute.Reflexes))

	c.HP.Max = baseHP + resMod*c.Level + c.Species.HP
	c.SP.Max = baseSP + endMod*c.Level + c.Species.SP
	c.EP.Max = baseEP + (logMod+wilMod)*c.Level + c.Species.EP

	clampPool(&c.HP)
	clampPool(&c.SP)
	clampPool(&c.EP)

	c.Defense = 10 + refMod
	c.MovementSpeed = 30 + refMod*5 + c.Species.Speed
	c.CarryingCapacity = c.SubScore(attribute.BruteForce)*5 + c.Species.Carrying
	c.Initiative = refMod
}

func clampPool(p *Pool) {
	if p.Current > p.Max {
		p.Current = p.Max
	}
}
