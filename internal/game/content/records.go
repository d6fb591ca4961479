// Package content defines the immutable content records consumed by the
// progression engine and narrative layer, and the typed YAML loader that
// fails fast at startup on malformed data.
package content

import (
	"github.com/dungeonmaister/gameserver/internal/game/attribute"
)

// EffectType discriminates the effects a species feature or birth sign can carry.
type EffectType string

// Effect types. Unrecognized types are ignored by the progression engine,
// not treated as errors, so content can ship effects the engine does not
// yet interpret.
const (
	EffectSubAttributeBonus EffectType = "sub_attribute_bonus"
	EffectDerivedStatBonus  EffectType = "derived_stat_bonus"
	EffectSkillBonus        EffectType = "skill_bonus"
	EffectSpecial           EffectType = "special"
)

// DerivedStat names the derived-stat accumulators a species feature can raise.
type DerivedStat string

// Derived stats addressable by derived_stat_bonus effects.
const (
	DerivedHP       DerivedStat = "hp"
	DerivedSP       DerivedStat = "sp"
	DerivedEP       DerivedStat = "ep"
	DerivedSpeed    DerivedStat = "speed"
	DerivedCarrying DerivedStat = "carrying"
)

// Effect is one effect entry on a species feature or birth sign.
type Effect struct {
	Type         EffectType        `yaml:"type"`
	SubAttribute attribute.SubName `yaml:"sub_attribute,omitempty"`
	DerivedStat  DerivedStat       `yaml:"derived_stat,omitempty"`
	SkillID      string            `yaml:"skill_id,omitempty"`
	Value        int               `yaml:"value,omitempty"`
	Description  string            `yaml:"description,omitempty"`
}

// StatModifier adds Value to the named sub-attribute.
type StatModifier struct {
	SubAttribute attribute.SubName `yaml:"sub_attribute"`
	Value        int               `yaml:"value"`
}

// Kingdom is the first life-path choice. It carries no mechanical effect of
// its own; it scopes which species features and devotions are offered.
type Kingdom struct {
	ID              string               `yaml:"id"`
	Name            string               `yaml:"name"`
	Description     string               `yaml:"description"`
	PrimarySubStats [2]attribute.SubName `yaml:"primary_sub_stats"`
}

// SpeciesFeature grants sub-attribute or derived-stat bonuses.
type SpeciesFeature struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Category    string   `yaml:"category"`
	Effects     []Effect `yaml:"effects"`
}

// Origin grants skill proficiencies.
type Origin struct {
	ID                 string   `yaml:"id"`
	Name               string   `yaml:"name"`
	Description        string   `yaml:"description"`
	SkillProficiencies []string `yaml:"skill_proficiencies"`
}

// LifeEvent applies stat modifiers and grants skill proficiencies.
type LifeEvent struct {
	ID                 string         `yaml:"id"`
	Name               string         `yaml:"name"`
	Description        string         `yaml:"description"`
	StatModifiers      []StatModifier `yaml:"stat_modifiers"`
	SkillProficiencies []string       `yaml:"skill_proficiencies"`
}

// Career applies stat modifiers, grants skills, and provides starting gear.
type Career struct {
	ID                 string         `yaml:"id"`
	Name               string         `yaml:"name"`
	Description        string         `yaml:"description"`
	StatModifiers      []StatModifier `yaml:"stat_modifiers"`
	SkillProficiencies []string       `yaml:"skill_proficiencies"`
	StartingGear       []string       `yaml:"starting_gear"`
}

// Prerequisite is a minimum primary-attribute score required for a devotion.
// The progression engine does not enforce it; the gateway pre-validates.
type Prerequisite struct {
	Attribute attribute.PrimaryName `yaml:"attribute"`
	Value     int                   `yaml:"value"`
}

// Devotion adds a single sub-attribute bonus.
type Devotion struct {
	ID           string        `yaml:"id"`
	Name         string        `yaml:"name"`
	Description  string        `yaml:"description"`
	Kingdom      string        `yaml:"kingdom"`
	Bonus        StatModifier  `yaml:"bonus"`
	Benefit      string        `yaml:"benefit"`
	Prerequisite *Prerequisite `yaml:"prerequisite,omitempty"`
}

// BirthSign applies sub-attribute-bonus effects.
type BirthSign struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	RollRange   [2]int   `yaml:"roll_range"`
	Effects     []Effect `yaml:"effects"`
}

// SkillDefinition describes a learnable skill.
type SkillDefinition struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Tier        string `yaml:"tier"` // "general" or "advanced"
}

// Location is a key world location with a biome used for map theming.
type Location struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Biome       string `yaml:"biome"`
}

// Faction is a world power consumed by the narrative prompt builder.
type Faction struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Type        string `yaml:"type"`
}

// Belief is a world belief consumed by the narrative prompt builder.
type Belief struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Tenet       string `yaml:"tenet,omitempty"`
}

// HistoricalEvent is a lore entry consumed by the narrative prompt builder.
type HistoricalEvent struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Era         string `yaml:"era"`
}

// EventTrigger fires a world event once a faction's influence reaches Threshold.
type EventTrigger struct {
	FactionID string `yaml:"faction_id"`
	Threshold int    `yaml:"threshold"`
}

// WorldEvent is a triggerable world event affecting the narrative context.
type WorldEvent struct {
	ID          string       `yaml:"id"`
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	Trigger     EventTrigger `yaml:"trigger"`
}

// ItemDefinition describes a usable item. EffectScript names the Lua effect
// script invoked when the item is used; empty means the item has no use effect.
type ItemDefinition struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	Description  string `yaml:"description"`
	EffectScript string `yaml:"effect_script,omitempty"`
}

// AbilityDefinition describes a usable ability and its EP cost.
type AbilityDefinition struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	Description  string `yaml:"description"`
	EPCost       int    `yaml:"ep_cost"`
	EffectScript string `yaml:"effect_script,omitempty"`
}
