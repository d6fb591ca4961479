// Package combat implements the turn-based combat engine: initiative
// ordering, turn rotation, and attack resolution.
package combat

import (
	"fmt"
	"sort"

	"github.com/dungeonmaister/gameserver/internal/game/character"
	"github.com/dungeonmaister/gameserver/internal/game/dice"
)

// State is the combat portion of a game session. When Active is false the
// Turn and Order fields are meaningless and left as-is from the last
// encounter until the next Start.
type State struct {
	// Active is true while an encounter is running.
	Active bool `json:"active"`
	// Turn indexes into Order at the current actor.
	Turn int `json:"turn"`
	// Order is the initiative-ordered list of combatant IDs, highest
	// initiative first.
	Order []string `json:"order"`
}

// Start begins an encounter with the given combatants.
//
// Order is computed by sorting ids descending by the initiative of the
// matching character. The sort is stable: combatants with equal initiative
// keep the relative order of the ids slice. Turn resets to 0 so the highest
// initiative acts first.
//
// Precondition: ids must be non-empty and every id must be present in chars.
// Postcondition: On success the state is Active with a fresh Order; on error
// the state is unchanged.
func (s *State) Start(ids []string, chars map[string]*character.Character) error {
	if len(ids) == 0 {
		return fmt.Errorf("combat: cannot start with no combatants")
	}
	for _, id := range ids {
		if _, ok := chars[id]; !ok {
			return fmt.Errorf("combat: no character for combatant %q", id)
		}
	}

	order := make([]string, len(ids))
	copy(order, ids)
	sort.SliceStable(order, func(i, j int) bool {
		return chars[order[i]].Initiative > chars[order[j]].Initiative
	})

	s.Active = true
	s.Turn = 0
	s.Order = order
	return nil
}

// NextTurn advances to the next combatant, wrapping around to the top of
// the order.
//
// Precondition: combat must be active.
func (s *State) NextTurn() error {
	if !s.Active {
		return fmt.Errorf("combat: not active")
	}
	s.Turn = (s.Turn + 1) % len(s.Order)
	return nil
}

// Current returns the ID of the combatant whose turn it is.
//
// Precondition: combat must be active.
func (s *State) Current() (string, error) {
	if !s.Active {
		return "", fmt.Errorf("combat: not active")
	}
	return s.Order[s.Turn], nil
}

// End stops the encounter. Ending an inactive state is a no-op.
func (s *State) End() {
	s.Active = false
}

// AttackResult describes one resolved attack.
type AttackResult struct {
	AttackerID string `json:"attackerId"`
	DefenderID string `json:"defenderId"`
	Roll       int    `json:"roll"`
	Hit        bool   `json:"hit"`
	Damage     int    `json:"damage"`
	Narrative  string `json:"narrative"`
}

// ResolveAttack rolls one attack from attacker against defender and applies
// the damage.
//
// A d20 strictly greater than the defender's Defense hits for 1d6 damage.
// Damage is subtracted from the defender's current HP, which may go
// negative; downed-state handling is the caller's concern.
//
// Precondition: attacker, defender, and src must be non-nil.
// Postcondition: On a miss the defender is unchanged.
func ResolveAttack(attacker, defender *character.Character, src dice.Source) AttackResult {
	result := AttackResult{
		AttackerID: attacker.ID,
		DefenderID: defender.ID,
		Roll:       dice.D20(src),
	}
	if result.Roll <= defender.Defense {
		result.Narrative = fmt.Sprintf("%s swings at %s and misses (rolled %d against defense %d).",
			attacker.Name, defender.Name, result.Roll, defender.Defense)
		return result
	}

	result.Hit = true
	result.Damage = dice.D6(src)
	defender.HP.Current -= result.Damage
	result.Narrative = fmt.Sprintf("%s hits %s for %d damage (rolled %d against defense %d).",
		attacker.Name, defender.Name, result.Damage, result.Roll, defender.Defense)
	return result
}
