// Package character defines the character domain model, derived-stat
// recomputation, and the life-path progression engine.
package character

import (
	"github.com/dungeonmaister/gameserver/internal/game/attribute"
)

// Pool is a depletable resource pool (HP, SP, EP).
type Pool struct {
	Current int `json:"current"`
	Max     int `json:"max"`
}

// Skill is one learned skill. Skills are unique by ID; re-adding an
// existing ID is a no-op and never resets the mastery tier.
type Skill struct {
	ID          string `json:"id"`
	MasteryTier int    `json:"masteryTier"`
}

// Item is a carried inventory item.
type Item struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Inventory holds a character's items and gold.
type Inventory struct {
	Items []Item `json:"items"`
	Gold  int    `json:"gold"`
}

// SpeciesBonuses accumulates additive derived-stat modifiers granted by
// species features. Bonuses are never reset once granted.
type SpeciesBonuses struct {
	HP       int `json:"hp"`
	SP       int `json:"sp"`
	EP       int `json:"ep"`
	Speed    int `json:"speed"`
	Carrying int `json:"carrying"`
}

// Character is a player character.
//
// Invariant: SubAttributes always contains all twelve keys and
// PrimaryAttributes all six. Every derived field (primary scores and
// modifiers, pool maxima, Defense, MovementSpeed, CarryingCapacity,
// Initiative) equals its formula applied to the current sub-attributes,
// species bonuses, and level; Recalculate restores the invariant after
// any mutation of its inputs.
type Character struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	SubAttributes     map[attribute.SubName]*attribute.Sub         `json:"subAttributes"`
	PrimaryAttributes map[attribute.PrimaryName]*attribute.Primary `json:"primaryAttributes"`

	Skills []Skill `json:"skills"`
	Level  int     `json:"level"`

	HP Pool `json:"hp"`
	SP Pool `json:"sp"`
	EP Pool `json:"ep"`

	Defense          int `json:"defense"`
	MovementSpeed    int `json:"movementSpeed"`
	Initiative       int `json:"initiative"`
	CarryingCapacity int `json:"carryingCapacity"`

	Species   SpeciesBonuses `json:"speciesBonuses"`
	Inventory Inventory      `json:"inventory"`
}

// SubScore returns the score of the named sub-attribute.
//
// Precondition: name must be one of the twelve defined sub-attributes.
func (c *Character) SubScore(name attribute.SubName) int {
	sub, ok := c.SubAttributes[name]
	if !ok {
		panic("character: SubScore called with unknown sub-attribute " + string(name))
	}
	return sub.Score
}

// AddSubScore adds delta to the named sub-attribute score.
// Callers must Recalculate afterwards to restore the derived-stat invariant.
func (c *Character) AddSubScore(name attribute.SubName, delta int) {
	sub, ok := c.SubAttributes[name]
	if !ok {
		panic("character: AddSubScore called with unknown sub-attribute " + string(name))
	}
	sub.Score += delta
}

// HasSkill reports whether the character has learned the skill with the given ID.
func (c *Character) HasSkill(id string) bool {
	for _, s := range c.Skills {
		if s.ID == id {
			return true
		}
	}
	return false
}

// AddSkill appends a skill at mastery tier 1 if not already present.
// Re-adding an existing ID is a no-op: no duplicate entry, tier untouched.
func (c *Character) AddSkill(id string) {
	if c.HasSkill(id) {
		return
	}
	c.Skills = append(c.Skills, Skill{ID: id, MasteryTier: 1})
}

// AddItem appends an item to the inventory.
func (c *Character) AddItem(item Item) {
	c.Inventory.Items = append(c.Inventory.Items, item)
}

// RemoveItem removes the first item with the given ID from the inventory.
// Returns true if an item was removed.
func (c *Character) RemoveItem(id string) bool {
	for i, item := range c.Inventory.Items {
		if item.ID == id {
			c.Inventory.Items = append(c.Inventory.Items[:i], c.Inventory.Items[i+1:]...)
			return true
		}
	}
	return false
}

// AddGold adds amount to the character's gold. Amount may be negative.
func (c *Character) AddGold(amount int) {
	c.Inventory.Gold += amount
}

// Clone returns a deep copy of the character.
//
// Postcondition: Mutating the copy never affects the original.
func (c *Character) Clone() *Character {
	out := *c

	out.SubAttributes = make(map[attribute.SubName]*attribute.Sub, len(c.SubAttributes))
	for name, sub := range c.SubAttributes {
		cp := *sub
		out.SubAttributes[name] = &cp
	}
	out.PrimaryAttributes = make(map[attribute.PrimaryName]*attribute.Primary, len(c.PrimaryAttributes))
	for name, pri := range c.PrimaryAttributes {
		cp := *pri
		out.PrimaryAttributes[name] = &cp
	}
	out.Skills = append([]Skill(nil), c.Skills...)
	out.Inventory.Items = append([]Item(nil), c.Inventory.Items...)

	return &out
}
