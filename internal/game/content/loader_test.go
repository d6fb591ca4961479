package content

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// minimalContent maps each content file to a small valid document.
var minimalContent = map[string]string{
	"kingdoms.yaml": `
- id: mammal
  name: Mammal
  description: Warm-blooded and adaptable.
  primary_sub_stats: [Brute Force, Endurance]
`,
	"species_features.yaml": `
- id: keen_eyes
  name: Keen Eyes
  description: Sharp distance vision.
  category: Eyes
  effects:
    - type: sub_attribute_bonus
      sub_attribute: Perception
      value: 2
- id: thick_hide
  name: Thick Hide
  description: A natural layer of protection.
  category: Evo. Advantage
  effects:
    - type: derived_stat_bonus
      derived_stat: hp
      value: 3
`,
	"origins.yaml": `
- id: street_urchin
  name: Street Urchin
  description: Raised in the gutters.
  skill_proficiencies: [stealth, sleight_of_hand]
`,
	"life_events.yaml": `
- id: plague_survivor
  name: Plague Survivor
  description: You lived where others did not.
  stat_modifiers:
    - sub_attribute: Constitution
      value: 2
    - sub_attribute: Endurance
      value: 1
    - sub_attribute: Charm
      value: -1
  skill_proficiencies: [medicine, survival]
`,
	"careers.yaml": `
- id: caravan_guard
  name: Caravan Guard
  description: Paid to watch the roads.
  stat_modifiers:
    - sub_attribute: Brute Force
      value: 1
  skill_proficiencies: [athletics, intimidation]
  starting_gear: [Iron Shortsword, Travel Rations]
`,
	"devotions.yaml": `
- id: iron_covenant
  name: The Iron Covenant
  description: Strength is the only honest tongue.
  kingdom: mammal
  bonus:
    sub_attribute: Brute Force
    value: 1
  benefit: Once per day, reroll a failed feat of strength.
  prerequisite:
    attribute: STR
    value: 10
`,
	"birth_signs.yaml": `
- id: the_ember
  name: The Ember
  description: Born under the burning star.
  roll_range: [1, 4]
  effects:
    - type: sub_attribute_bonus
      sub_attribute: Willpower
      value: 1
`,
	"skills.yaml": `
- id: stealth
  name: Stealth
  description: Moving unseen and unheard.
  tier: general
`,
	"locations.yaml": `
- id: loc-001
  name: Whispering Caverns
  description: A dark, damp cave system.
  biome: dungeon
`,
	"factions.yaml": `
- id: verdant-compact
  name: The Verdant Compact
  description: An alliance of the plant kingdoms.
  type: Commonwealth
`,
	"beliefs.yaml": `
- name: The Long Root
  description: All life shares one buried origin.
  tenet: Tend what grows.
`,
	"history.yaml": `
- name: The Great Shattering
  description: The world broke into drifting shards.
  era: The Great Shattering
`,
	"world_events.yaml": `
- id: evt-verdant-bloom
  name: The Verdant Bloom
  description: The Compact's influence flowers across the shards.
  trigger:
    faction_id: verdant-compact
    threshold: 15
`,
	"items.yaml": `
- id: healing_draught
  name: Healing Draught
  description: Restores a little vigor.
  effect_script: healing_draught
`,
	"abilities.yaml": `
- id: second_wind
  name: Second Wind
  description: Push through the pain.
  ep_cost: 2
  effect_script: second_wind
`,
}

func writeContentDir(t *testing.T, overrides map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, doc := range minimalContent {
		if over, ok := overrides[name]; ok {
			doc = over
		}
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(doc), 0o644))
	}
	return dir
}

func TestLoadAllCategories(t *testing.T) {
	dir := writeContentDir(t, nil)

	store, err := Load(dir)
	require.NoError(t, err)

	assert.Len(t, store.Kingdoms(), 1)
	assert.Len(t, store.SpeciesFeatures(), 2)
	assert.Len(t, store.Origins(), 1)
	assert.Len(t, store.LifeEvents(), 1)
	assert.Len(t, store.Careers(), 1)
	assert.Len(t, store.Devotions(), 1)
	assert.Len(t, store.BirthSigns(), 1)
	assert.Len(t, store.Skills(), 1)
	assert.Len(t, store.Locations(), 1)
	assert.Len(t, store.Factions(), 1)
	assert.Len(t, store.Beliefs(), 1)
	assert.Len(t, store.History(), 1)
	assert.Len(t, store.WorldEvents(), 1)
	assert.Len(t, store.Items(), 1)
	assert.Len(t, store.Abilities(), 1)

	feature, ok := store.SpeciesFeature("thick_hide")
	require.True(t, ok)
	assert.Equal(t, EffectDerivedStatBonus, feature.Effects[0].Type)
	assert.Equal(t, DerivedHP, feature.Effects[0].DerivedStat)

	devotion, ok := store.Devotion("iron_covenant")
	require.True(t, ok)
	require.NotNil(t, devotion.Prerequisite)
	assert.Equal(t, 10, devotion.Prerequisite.Value)
}

func TestLoadMissingFileFails(t *testing.T) {
	dir := writeContentDir(t, nil)
	require.NoError(t, os.Remove(filepath.Join(dir, "careers.yaml")))

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "careers.yaml")
}

func TestLoadRejectsUnknownSubAttribute(t *testing.T) {
	dir := writeContentDir(t, map[string]string{
		"life_events.yaml": `
- id: cursed
  name: Cursed
  description: Something is wrong with you.
  stat_modifiers:
    - sub_attribute: Luck
      value: -2
`,
	})

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Luck")
}

func TestLoadRejectsDuplicateIDs(t *testing.T) {
	dir := writeContentDir(t, map[string]string{
		"origins.yaml": `
- id: street_urchin
  name: Street Urchin
  description: one
  skill_proficiencies: [stealth, sleight_of_hand]
- id: street_urchin
  name: Street Urchin Again
  description: two
  skill_proficiencies: [stealth, sleight_of_hand]
`,
	})

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestLoadRejectsEmptyID(t *testing.T) {
	dir := writeContentDir(t, map[string]string{
		"skills.yaml": `
- id: ""
  name: Nameless
  description: A skill with no id.
  tier: general
`,
	})

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty id")
}

func TestChoicesForEachStep(t *testing.T) {
	dir := writeContentDir(t, nil)
	store, err := Load(dir)
	require.NoError(t, err)

	for _, step := range []Step{
		StepKingdom, StepSpeciesFeature, StepOrigin, StepLifeEvent,
		StepCareer, StepDevotion, StepBirthSign,
	} {
		choices, err := store.ChoicesFor(step)
		require.NoError(t, err, "step %s", step)
		assert.NotEmpty(t, choices, "step %s", step)
	}

	_, err = store.ChoicesFor(StepComplete)
	assert.Error(t, err)
}

func TestNextStepSequence(t *testing.T) {
	want := []Step{
		StepKingdom, StepSpeciesFeature, StepOrigin, StepLifeEvent,
		StepCareer, StepDevotion, StepBirthSign, StepComplete,
	}
	step := StepKingdom
	for i := 0; i < len(want)-1; i++ {
		assert.Equal(t, want[i], step)
		next, ok := NextStep(step)
		require.True(t, ok, "step %s", step)
		step = next
	}
	assert.Equal(t, StepComplete, step)

	_, ok := NextStep(StepComplete)
	assert.False(t, ok)
}
