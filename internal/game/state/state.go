// Package state defines the per-session game snapshot the gateway hands to
// clients and the rules engine. Snapshots have value semantics: handlers
// clone, mutate the clone, and swap it in, so nothing downstream ever holds
// a reference into live session state.
package state

import (
	"fmt"

	"github.com/dungeonmaister/gameserver/internal/game/character"
	"github.com/dungeonmaister/gameserver/internal/game/combat"
	"github.com/dungeonmaister/gameserver/internal/game/dice"
	"github.com/dungeonmaister/gameserver/internal/game/mapgen"
)

// Entity is a positioned actor on the map. Entities that are not players
// are enemies or neutral NPCs; the distinction beyond IsPlayer lives in the
// character record.
type Entity struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	IsPlayer bool   `json:"isPlayer"`
}

// GameState is the full serializable snapshot of one running session.
type GameState struct {
	Map            *mapgen.Map                     `json:"map"`
	MapName        string                          `json:"mapName"`
	MapDescription string                          `json:"mapDescription"`
	Props          []mapgen.Prop                   `json:"props"`
	Entities       []*Entity                       `json:"entities"`
	Characters     map[string]*character.Character `json:"characters"`
	SelectedEntity string                          `json:"selectedEntityId"`
	Combat         *combat.State                   `json:"combat,omitempty"`
}

// NewInitialState builds the opening snapshot for a freshly generated map.
// Every entity is placed on the first floor tile in scan order; the first
// player entity becomes the selected entity.
//
// Precondition: m must contain at least one floor tile; every entity ID must
// have a matching character.
func NewInitialState(m *mapgen.Map, props []mapgen.Prop, entities []*Entity, chars map[string]*character.Character) (*GameState, error) {
	x, y, ok := m.FirstFloor()
	if !ok {
		return nil, fmt.Errorf("state: map has no floor tile to place entities on")
	}
	for _, e := range entities {
		if _, found := chars[e.ID]; !found {
			return nil, fmt.Errorf("state: entity %q has no character record", e.ID)
		}
	}

	gs := &GameState{
		Map:        m,
		Props:      props,
		Entities:   make([]*Entity, 0, len(entities)),
		Characters: make(map[string]*character.Character, len(chars)),
	}
	for _, e := range entities {
		placed := *e
		placed.X, placed.Y = x, y
		gs.Entities = append(gs.Entities, &placed)
		if placed.IsPlayer && gs.SelectedEntity == "" {
			gs.SelectedEntity = placed.ID
		}
	}
	for id, c := range chars {
		gs.Characters[id] = c.Clone()
	}
	return gs, nil
}

// Entity returns the entity with the given id, or nil.
func (g *GameState) Entity(id string) *Entity {
	for _, e := range g.Entities {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// Character returns the character for an entity id, or nil.
func (g *GameState) Character(id string) *character.Character {
	return g.Characters[id]
}

// Clone deep-copies the snapshot. The map grid is copied too: map tiles
// never change after generation today, but Clone must not rely on that.
func (g *GameState) Clone() *GameState {
	clone := &GameState{
		MapName:        g.MapName,
		MapDescription: g.MapDescription,
		SelectedEntity: g.SelectedEntity,
	}
	if g.Map != nil {
		tiles := make([][]mapgen.Tile, len(g.Map.Tiles))
		for y, row := range g.Map.Tiles {
			tiles[y] = append([]mapgen.Tile(nil), row...)
		}
		clone.Map = &mapgen.Map{Width: g.Map.Width, Height: g.Map.Height, Tiles: tiles}
	}
	clone.Props = append([]mapgen.Prop(nil), g.Props...)
	clone.Entities = make([]*Entity, 0, len(g.Entities))
	for _, e := range g.Entities {
		copied := *e
		clone.Entities = append(clone.Entities, &copied)
	}
	clone.Characters = make(map[string]*character.Character, len(g.Characters))
	for id, c := range g.Characters {
		clone.Characters[id] = c.Clone()
	}
	if g.Combat != nil {
		combatCopy := *g.Combat
		combatCopy.Order = append([]string(nil), g.Combat.Order...)
		clone.Combat = &combatCopy
	}
	return clone
}

// ApplyAttack resolves one attack inside a cloned snapshot and returns the
// clone along with the attack result. The receiver is never mutated.
//
// Precondition: attackerID and defenderID must both map to characters in g.
func (g *GameState) ApplyAttack(attackerID, defenderID string, src dice.Source) (*GameState, combat.AttackResult, error) {
	next := g.Clone()
	attacker := next.Character(attackerID)
	if attacker == nil {
		return nil, combat.AttackResult{}, fmt.Errorf("state: unknown attacker %q", attackerID)
	}
	defender := next.Character(defenderID)
	if defender == nil {
		return nil, combat.AttackResult{}, fmt.Errorf("state: unknown defender %q", defenderID)
	}
	result := combat.ResolveAttack(attacker, defender, src)
	return next, result, nil
}
