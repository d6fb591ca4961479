// Package rules holds the small out-of-combat rule functions: grid movement
// and skill checks.
package rules

import (
	"fmt"

	"github.com/dungeonmaister/gameserver/internal/game/character"
	"github.com/dungeonmaister/gameserver/internal/game/dice"
	"github.com/dungeonmaister/gameserver/internal/game/mapgen"
	"github.com/dungeonmaister/gameserver/internal/game/state"
)

// Direction is a one-step cardinal movement.
type Direction string

// The four movement directions.
const (
	DirUp    Direction = "up"
	DirDown  Direction = "down"
	DirLeft  Direction = "left"
	DirRight Direction = "right"
)

// ParseDirection validates a client-supplied direction string. Callers
// reject unknown directions before reaching MoveEntity.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(s); d {
	case DirUp, DirDown, DirLeft, DirRight:
		return d, nil
	}
	return "", fmt.Errorf("rules: unknown direction %q", s)
}

// delta returns the coordinate offset for a direction.
func (d Direction) delta() (int, int) {
	switch d {
	case DirUp:
		return 0, -1
	case DirDown:
		return 0, 1
	case DirLeft:
		return -1, 0
	case DirRight:
		return 1, 0
	}
	panic("rules: delta called with unknown direction " + string(d))
}

// MoveEntity steps the entity one tile in the given direction. Walking into
// a wall or off the map is a silent no-op: the position is unchanged and no
// error is reported.
//
// Precondition: dir must come from ParseDirection.
// Postcondition: Returns true iff the entity moved.
func MoveEntity(e *state.Entity, dir Direction, m *mapgen.Map) bool {
	dx, dy := dir.delta()
	nx, ny := e.X+dx, e.Y+dy
	if !m.IsFloor(nx, ny) {
		return false
	}
	e.X, e.Y = nx, ny
	return true
}

// CheckResult is the outcome of one skill check.
type CheckResult struct {
	SkillID string `json:"skillId"`
	Roll    int    `json:"roll"`
	DC      int    `json:"dc"`
	Success bool   `json:"success"`
}

// SkillCheck rolls a d20 against a difficulty class. A roll greater than or
// equal to dc succeeds. The character's skill ranks and attribute modifiers
// do not factor in yet; the roll is flat.
//
// Precondition: c and src must be non-nil.
func SkillCheck(c *character.Character, skillID string, dc int, src dice.Source) CheckResult {
	roll := dice.D20(src)
	return CheckResult{
		SkillID: skillID,
		Roll:    roll,
		DC:      dc,
		Success: roll >= dc,
	}
}
