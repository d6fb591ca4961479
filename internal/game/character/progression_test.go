package character

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/dungeonmaister/gameserver/internal/game/attribute"
	"github.com/dungeonmaister/gameserver/internal/game/content"
)

func TestNewBaseline(t *testing.T) {
	c := NewBaseline("char-1", "Thistle")

	require.Len(t, c.SubAttributes, 12)
	for _, n := range attribute.SubNames {
		assert.Equal(t, 8, c.SubScore(n), "sub-attribute %s", n)
	}

	require.Len(t, c.PrimaryAttributes, 6)
	for _, n := range attribute.PrimaryNames {
		pri := c.PrimaryAttributes[n]
		assert.Equal(t, 8, pri.Score, "primary %s score", n)
		assert.Equal(t, -1, pri.Mod, "primary %s modifier", n)
	}

	assert.Equal(t, 1, c.Level)
	assert.Equal(t, 9, c.HP.Max, "HP = 10 + (-1)*1")
	assert.Equal(t, 9, c.HP.Current)
	assert.Equal(t, 4, c.SP.Max)
	assert.Equal(t, 3, c.EP.Max, "EP = 5 + (-1 + -1)*1")
	assert.Equal(t, 9, c.Defense)
	assert.Equal(t, 25, c.MovementSpeed)
	assert.Equal(t, 40, c.CarryingCapacity, "Brute Force 8*5 + 0")
	assert.Equal(t, -1, c.Initiative)
	assert.Empty(t, c.Skills)
	assert.Empty(t, c.Inventory.Items)
	assert.Equal(t, 0, c.Inventory.Gold)
}

func TestApplyOriginIdempotent(t *testing.T) {
	c := NewBaseline("char-1", "Thistle")
	origin := &content.Origin{
		ID:                 "street_urchin",
		Name:               "Street Urchin",
		SkillProficiencies: []string{"stealth", "sleight_of_hand"},
	}

	ApplyOrigin(c, origin)
	require.Len(t, c.Skills, 2)
	assert.Equal(t, Skill{ID: "stealth", MasteryTier: 1}, c.Skills[0])
	assert.Equal(t, Skill{ID: "sleight_of_hand", MasteryTier: 1}, c.Skills[1])

	// Bump a tier out of band, then re-apply: no duplicates, tier untouched.
	c.Skills[0].MasteryTier = 3
	ApplyOrigin(c, origin)
	require.Len(t, c.Skills, 2)
	assert.Equal(t, 3, c.Skills[0].MasteryTier)
}

func TestApplyLifeEventModifiers(t *testing.T) {
	c := NewBaseline("char-1", "Thistle")
	event := &content.LifeEvent{
		ID: "plague_survivor",
		StatModifiers: []content.StatModifier{
			{SubAttribute: attribute.Constitution, Value: 2},
			{SubAttribute: attribute.Endurance, Value: 1},
			{SubAttribute: attribute.Charm, Value: -1},
		},
		SkillProficiencies: []string{"medicine"},
	}

	ApplyLifeEvent(c, event)

	assert.Equal(t, 10, c.SubScore(attribute.Constitution))
	assert.Equal(t, 9, c.SubScore(attribute.Endurance))
	assert.Equal(t, 7, c.SubScore(attribute.Charm))
	assert.Equal(t, 4, c.SP.Max, "SP = 5 + modifier(9)*1")
	assert.True(t, c.HasSkill("medicine"))
}

func TestApplyCareerStartingGear(t *testing.T) {
	c := NewBaseline("char-1", "Thistle")
	career := &content.Career{
		ID:           "caravan_guard",
		StatModifiers: []content.StatModifier{
			{SubAttribute: attribute.BruteForce, Value: 1},
		},
		SkillProficiencies: []string{"athletics", "intimidation"},
		StartingGear:       []string{"Iron Shortsword", "Travel Rations"},
	}

	ApplyCareer(c, career)

	require.Len(t, c.Inventory.Items, 2)
	assert.Equal(t, "iron_shortsword", c.Inventory.Items[0].ID)
	assert.Equal(t, "Iron Shortsword", c.Inventory.Items[0].Name)
	assert.Equal(t, "Starting equipment.", c.Inventory.Items[0].Description)
	assert.Equal(t, "travel_rations", c.Inventory.Items[1].ID)
}

func TestSequentialBruteForceBonuses(t *testing.T) {
	c := NewBaseline("char-1", "Thistle")
	ApplyOrigin(c, &content.Origin{ID: "farmhand", SkillProficiencies: []string{"animal_handling", "athletics"}})
	ApplyLifeEvent(c, &content.LifeEvent{
		ID:            "harvest_champion",
		StatModifiers: []content.StatModifier{{SubAttribute: attribute.BruteForce, Value: 2}},
	})
	ApplyCareer(c, &content.Career{
		ID:            "dock_worker",
		StatModifiers: []content.StatModifier{{SubAttribute: attribute.BruteForce, Value: 1}},
	})

	assert.Equal(t, 11, c.SubScore(attribute.BruteForce))
	assert.Equal(t, 55, c.CarryingCapacity)
}

func TestApplySpeciesFeatureDerivedBonuses(t *testing.T) {
	c := NewBaseline("char-1", "Thistle")
	feature := &content.SpeciesFeature{
		ID: "thick_hide",
		Effects: []content.Effect{
			{Type: content.EffectDerivedStatBonus, DerivedStat: content.DerivedHP, Value: 3},
			{Type: content.EffectDerivedStatBonus, DerivedStat: content.DerivedSpeed, Value: -5},
			{Type: content.EffectSubAttributeBonus, SubAttribute: attribute.Resilience, Value: 2},
			{Type: content.EffectSpecial, Description: "Pack Tactics"}, // ignored
			{Type: content.EffectType("unknown_effect"), Value: 99},    // ignored
		},
	}

	ApplySpeciesFeature(c, feature)

	assert.Equal(t, 10, c.SubScore(attribute.Resilience))
	assert.Equal(t, 3, c.Species.HP)
	assert.Equal(t, -5, c.Species.Speed)
	// HP = 10 + modifier(10)*1 + 3 = 13
	assert.Equal(t, 13, c.HP.Max)
	assert.Equal(t, 20, c.MovementSpeed)
}

func TestRecalculateDoesNotHeal(t *testing.T) {
	c := NewBaseline("char-1", "Thistle")
	c.HP.Current = 2

	// Raising Resilience raises HP max; current must stay where it was.
	ApplyLifeEvent(c, &content.LifeEvent{
		ID:            "hardened",
		StatModifiers: []content.StatModifier{{SubAttribute: attribute.Resilience, Value: 4}},
	})

	assert.Equal(t, 11, c.HP.Max)
	assert.Equal(t, 2, c.HP.Current)
}

func TestRecalculateClampsCurrentDown(t *testing.T) {
	c := NewBaseline("char-1", "Thistle")
	require.Equal(t, 9, c.HP.Current)

	// Lowering Resilience lowers HP max below the full current pool.
	ApplyLifeEvent(c, &content.LifeEvent{
		ID:            "wasting_illness",
		StatModifiers: []content.StatModifier{{SubAttribute: attribute.Resilience, Value: -4}},
	})

	assert.Equal(t, 7, c.HP.Max)
	assert.Equal(t, 7, c.HP.Current)
}

func TestMeetsPrerequisite(t *testing.T) {
	c := NewBaseline("char-1", "Thistle")

	none := &content.Devotion{ID: "open_path"}
	assert.True(t, MeetsPrerequisite(c, none))

	gated := &content.Devotion{
		ID:           "iron_covenant",
		Prerequisite: &content.Prerequisite{Attribute: attribute.STR, Value: 10},
	}
	assert.False(t, MeetsPrerequisite(c, gated))

	ApplyLifeEvent(c, &content.LifeEvent{
		ID: "forge_raised",
		StatModifiers: []content.StatModifier{
			{SubAttribute: attribute.BruteForce, Value: 2},
			{SubAttribute: attribute.Endurance, Value: 2},
		},
	})
	assert.True(t, MeetsPrerequisite(c, gated))
}

// derivedStatsConsistent checks the full derived-stat formula invariant.
func derivedStatsConsistent(t *rapid.T, c *Character) {
	for _, n := range attribute.PrimaryNames {
		a, b := attribute.Governing(n)
		pri := c.PrimaryAttributes[n]
		wantScore := (c.SubScore(a) + c.SubScore(b)) / 2
		if pri.Score != wantScore {
			t.Fatalf("primary %s score = %d, want %d", n, pri.Score, wantScore)
		}
		if pri.Mod != attribute.Modifier(wantScore) {
			t.Fatalf("primary %s mod = %d, want %d", n, pri.Mod, attribute.Modifier(wantScore))
		}
	}

	resMod := attribute.Modifier(c.SubScore(attribute.Resilience))
	endMod := attribute.Modifier(c.SubScore(attribute.Endurance))
	logMod := attribute.Modifier(c.SubScore(attribute.Logic))
	wilMod := attribute.Modifier(c.SubScore(attribute.Willpower))
	refMod := attribute.Modifier(c.SubScore(attribute.Reflexes))

	if got, want := c.HP.Max, 10+resMod*c.Level+c.Species.HP; got != want {
		t.Fatalf("HP max = %d, want %d", got, want)
	}
	if got, want := c.SP.Max, 5+endMod*c.Level+c.Species.SP; got != want {
		t.Fatalf("SP max = %d, want %d", got, want)
	}
	if got, want := c.EP.Max, 5+(logMod+wilMod)*c.Level+c.Species.EP; got != want {
		t.Fatalf("EP max = %d, want %d", got, want)
	}
	if got, want := c.Defense, 10+refMod; got != want {
		t.Fatalf("defense = %d, want %d", got, want)
	}
	if got, want := c.MovementSpeed, 30+refMod*5+c.Species.Speed; got != want {
		t.Fatalf("speed = %d, want %d", got, want)
	}
	if got, want := c.CarryingCapacity, c.SubScore(attribute.BruteForce)*5+c.Species.Carrying; got != want {
		t.Fatalf("carrying = %d, want %d", got, want)
	}
	if c.Initiative != refMod {
		t.Fatalf("initiative = %d, want %d", c.Initiative, refMod)
	}
}

func TestDerivedStatsInvariantUnderRandomApplies(t *testing.T) {
	subGen := rapid.SampledFrom(attribute.SubNames)
	valueGen := rapid.IntRange(-3, 3)

	rapid.Check(t, func(t *rapid.T) {
		c := NewBaseline("char-prop", "Subject")

		ops := rapid.IntRange(0, 20).Draw(t, "ops")
		for i := 0; i < ops; i++ {
			switch rapid.IntRange(0, 4).Draw(t, "op") {
			case 0:
				ApplyLifeEvent(c, &content.LifeEvent{
					ID: "evt",
					StatModifiers: []content.StatModifier{
						{SubAttribute: subGen.Draw(t, "sub"), Value: valueGen.Draw(t, "value")},
					},
				})
			case 1:
				ApplySpeciesFeature(c, &content.SpeciesFeature{
					ID: "feat",
					Effects: []content.Effect{{
						Type:        content.EffectDerivedStatBonus,
						DerivedStat: rapid.SampledFrom([]content.DerivedStat{
							content.DerivedHP, content.DerivedSP, content.DerivedEP,
							content.DerivedSpeed, content.DerivedCarrying,
						}).Draw(t, "stat"),
						Value: valueGen.Draw(t, "value"),
					}},
				})
			case 2:
				ApplyDevotion(c, &content.Devotion{
					ID:    "dev",
					Bonus: content.StatModifier{SubAttribute: subGen.Draw(t, "sub"), Value: 1},
				})
			case 3:
				ApplyBirthSign(c, &content.BirthSign{
					ID: "sign",
					Effects: []content.Effect{{
						Type:         content.EffectSubAttributeBonus,
						SubAttribute: subGen.Draw(t, "sub"),
						Value:        valueGen.Draw(t, "value"),
					}},
				})
			case 4:
				ApplyOrigin(c, &content.Origin{
					ID:                 "orig",
					SkillProficiencies: []string{"survival", "lore"},
				})
			}
			derivedStatsConsistent(t, c)
		}
	})
}

func TestCloneIsDeep(t *testing.T) {
	c := NewBaseline("char-1", "Thistle")
	c.AddSkill("stealth")
	c.AddItem(Item{ID: "rope", Name: "Rope"})

	cp := c.Clone()
	cp.AddSubScore(attribute.BruteForce, 5)
	cp.Recalculate()
	cp.Skills[0].MasteryTier = 5
	cp.Inventory.Items[0].Name = "Frayed Rope"
	cp.AddGold(100)

	assert.Equal(t, 8, c.SubScore(attribute.BruteForce))
	assert.Equal(t, 40, c.CarryingCapacity)
	assert.Equal(t, 1, c.Skills[0].MasteryTier)
	assert.Equal(t, "Rope", c.Inventory.Items[0].Name)
	assert.Equal(t, 0, c.Inventory.Gold)
}

func TestInventoryHelpers(t *testing.T) {
	c := NewBaseline("char-1", "Thistle")
	c.AddItem(Item{ID: "torch", Name: "Torch"})
	c.AddItem(Item{ID: "rope", Name: "Rope"})

	assert.True(t, c.RemoveItem("torch"))
	assert.False(t, c.RemoveItem("torch"))
	require.Len(t, c.Inventory.Items, 1)

	c.AddGold(25)
	c.AddGold(-10)
	assert.Equal(t, 15, c.Inventory.Gold)
}
