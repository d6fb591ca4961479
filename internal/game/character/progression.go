package character

import (
	"strings"

	"github.com/dungeonmaister/gameserver/internal/game/attribute"
	"github.com/dungeonmaister/gameserver/internal/game/content"
)

// NewBaseline creates a fresh level-1 character: every sub-attribute at 8,
// no skills, empty inventory, zero species bonuses. Derived stats are
// recomputed and all resource pools are filled to their maxima — the only
// point in a character's life where pools are reset upward.
//
// Deterministic; no failure mode.
func NewBaseline(id, name string) *Character {
	c := &Character{
		ID:                id,
		Name:              name,
		SubAttributes:     make(map[attribute.SubName]*attribute.Sub, len(attribute.SubNames)),
		PrimaryAttributes: make(map[attribute.PrimaryName]*attribute.Primary, len(attribute.PrimaryNames)),
		Level:             1,
	}
	for _, n := range attribute.SubNames {
		c.SubAttributes[n] = &attribute.Sub{Name: n, Score: 8}
	}
	for _, n := range attribute.PrimaryNames {
		c.PrimaryAttributes[n] = &attribute.Primary{Name: n}
	}
	c.Recalculate()
	c.HP.Current = c.HP.Max
	c.SP.Current = c.SP.Max
	c.EP.Current = c.EP.Max
	return c
}

// Life-path apply functions. All of them mutate the character in place and
// leave the content record untouched; the character is owned exclusively by
// the caller for the duration of the call. Callers conventionally apply
// kingdom → species feature → origin → life event → career → devotion →
// birth sign, but no step depends on another having run.

// ApplySpeciesFeature applies each effect of the feature: sub-attribute
// bonuses raise the named sub-attribute, derived-stat bonuses accumulate
// into the matching species bonus. Other effect types are ignored.
func ApplySpeciesFeature(c *Character, feature *content.SpeciesFeature) {
	for _, eff := range feature.Effects {
		switch eff.Type {
		case content.EffectSubAttributeBonus:
			if eff.SubAttribute.Valid() && eff.Value != 0 {
				c.AddSubScore(eff.SubAttribute, eff.Value)
			}
		case content.EffectDerivedStatBonus:
			switch eff.DerivedStat {
			case content.DerivedHP:
				c.Species.HP += eff.Value
			case content.DerivedSP:
				c.Species.SP += eff.Value
			case content.DerivedEP:
				c.Species.EP += eff.Value
			case content.DerivedSpeed:
				c.Species.Speed += eff.Value
			case content.DerivedCarrying:
				c.Species.Carrying += eff.Value
			}
		}
	}
	c.Recalculate()
}

// ApplyOrigin grants each of the origin's skill proficiencies. Idempotent:
// re-applying never duplicates a skill or resets its mastery tier. Origins
// never touch sub-attributes, so no recalculation is needed.
func ApplyOrigin(c *Character, origin *content.Origin) {
	for _, id := range origin.SkillProficiencies {
		c.AddSkill(id)
	}
}

// ApplyLifeEvent applies the event's stat modifiers, then grants its skills.
func ApplyLifeEvent(c *Character, event *content.LifeEvent) {
	for _, mod := range event.StatModifiers {
		c.AddSubScore(mod.SubAttribute, mod.Value)
	}
	for _, id := range event.SkillProficiencies {
		c.AddSkill(id)
	}
	c.Recalculate()
}

// ApplyCareer applies stat modifiers, grants skills, and adds one inventory
// item per starting-gear name.
func ApplyCareer(c *Character, career *content.Career) {
	for _, mod := range career.StatModifiers {
		c.AddSubScore(mod.SubAttribute, mod.Value)
	}
	for _, id := range career.SkillProficiencies {
		c.AddSkill(id)
	}
	for _, gear := range career.StartingGear {
		c.AddItem(Item{
			ID:          GearItemID(gear),
			Name:        gear,
			Description: "Starting equipment.",
		})
	}
	c.Recalculate()
}

// ApplyDevotion adds the devotion's single bonus. The devotion's
// prerequisite, if any, is NOT enforced here — callers must pre-validate
// with MeetsPrerequisite before invoking.
func ApplyDevotion(c *Character, devotion *content.Devotion) {
	c.AddSubScore(devotion.Bonus.SubAttribute, devotion.Bonus.Value)
	c.Recalculate()
}

// ApplyBirthSign applies each sub-attribute-bonus effect of the sign.
// Other effect types are ignored.
func ApplyBirthSign(c *Character, sign *content.BirthSign) {
	for _, eff := range sign.Effects {
		if eff.Type == content.EffectSubAttributeBonus && eff.SubAttribute.Valid() && eff.Value != 0 {
			c.AddSubScore(eff.SubAttribute, eff.Value)
		}
	}
	c.Recalculate()
}

// MeetsPrerequisite reports whether the character satisfies the devotion's
// prerequisite. A devotion without a prerequisite is always satisfied.
func MeetsPrerequisite(c *Character, devotion *content.Devotion) bool {
	pre := devotion.Prerequisite
	if pre == nil {
		return true
	}
	pri, ok := c.PrimaryAttributes[pre.Attribute]
	if !ok {
		return false
	}
	return pri.Score >= pre.Value
}

// GearItemID derives a stable item ID from a starting-gear display name:
// lowercased with spaces replaced by underscores.
func GearItemID(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "_")
}
