package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dungeonmaister/gameserver/internal/game/character"
)

// seqSource replays a scripted sequence of Intn results.
type seqSource struct {
	vals []int
	idx  int
}

func (s *seqSource) Intn(n int) int {
	if s.idx >= len(s.vals) {
		panic("seqSource: script exhausted")
	}
	v := s.vals[s.idx] % n
	s.idx++
	return v
}

func combatant(t *testing.T, id string, initiative int) *character.Character {
	t.Helper()
	c := character.NewBaseline(id, "fighter-"+id)
	c.Initiative = initiative
	return c
}

func TestStartOrdersByInitiativeDescending(t *testing.T) {
	chars := map[string]*character.Character{
		"slow":   combatant(t, "slow", -1),
		"fast":   combatant(t, "fast", 3),
		"medium": combatant(t, "medium", 1),
	}

	var s State
	require.NoError(t, s.Start([]string{"slow", "medium", "fast"}, chars))

	assert.True(t, s.Active)
	assert.Equal(t, 0, s.Turn)
	assert.Equal(t, []string{"fast", "medium", "slow"}, s.Order)
}

func TestStartTiesKeepCallerOrder(t *testing.T) {
	chars := map[string]*character.Character{
		"a": combatant(t, "a", 2),
		"b": combatant(t, "b", 2),
		"c": combatant(t, "c", 2),
	}

	var s State
	require.NoError(t, s.Start([]string{"b", "c", "a"}, chars))
	assert.Equal(t, []string{"b", "c", "a"}, s.Order)
}

func TestStartRejectsEmptyAndUnknown(t *testing.T) {
	var s State
	assert.Error(t, s.Start(nil, map[string]*character.Character{}))

	chars := map[string]*character.Character{"a": combatant(t, "a", 0)}
	err := s.Start([]string{"a", "ghost"}, chars)
	assert.Error(t, err)
	assert.False(t, s.Active, "failed start must not activate combat")
}

func TestNextTurnWrapsAround(t *testing.T) {
	chars := map[string]*character.Character{
		"a": combatant(t, "a", 2),
		"b": combatant(t, "b", 1),
	}

	var s State
	require.NoError(t, s.Start([]string{"a", "b"}, chars))

	current, err := s.Current()
	require.NoError(t, err)
	assert.Equal(t, "a", current)

	require.NoError(t, s.NextTurn())
	current, _ = s.Current()
	assert.Equal(t, "b", current)

	require.NoError(t, s.NextTurn())
	current, _ = s.Current()
	assert.Equal(t, "a", current)
}

func TestInactiveStateGuards(t *testing.T) {
	var s State
	assert.Error(t, s.NextTurn())
	_, err := s.Current()
	assert.Error(t, err)
	s.End() // no-op on inactive state
	assert.False(t, s.Active)
}

func TestEndStopsEncounter(t *testing.T) {
	chars := map[string]*character.Character{"a": combatant(t, "a", 0)}
	var s State
	require.NoError(t, s.Start([]string{"a"}, chars))
	s.End()
	assert.False(t, s.Active)
}

func TestResolveAttackMiss(t *testing.T) {
	attacker := combatant(t, "att", 0)
	defender := combatant(t, "def", 0)
	defender.Defense = 10
	before := defender.HP.Current

	// d20 roll of 10 equals defense 10: a miss, strictly-greater is required.
	src := &seqSource{vals: []int{9}}
	result := ResolveAttack(attacker, defender, src)

	assert.False(t, result.Hit)
	assert.Equal(t, 10, result.Roll)
	assert.Zero(t, result.Damage)
	assert.Equal(t, before, defender.HP.Current)
	assert.Contains(t, result.Narrative, "misses")
}

func TestResolveAttackHit(t *testing.T) {
	attacker := combatant(t, "att", 0)
	defender := combatant(t, "def", 0)
	defender.Defense = 10
	before := defender.HP.Current

	// d20 roll of 11 beats defense 10; d6 roll of 4 damage.
	src := &seqSource{vals: []int{10, 3}}
	result := ResolveAttack(attacker, defender, src)

	assert.True(t, result.Hit)
	assert.Equal(t, 11, result.Roll)
	assert.Equal(t, 4, result.Damage)
	assert.Equal(t, before-4, defender.HP.Current)
	assert.Contains(t, result.Narrative, "hits")
}

func TestResolveAttackCanDriveHPNegative(t *testing.T) {
	attacker := combatant(t, "att", 0)
	defender := combatant(t, "def", 0)
	defender.Defense = 0
	defender.HP.Current = 2

	src := &seqSource{vals: []int{19, 5}} // roll 20, damage 6
	result := ResolveAttack(attacker, defender, src)

	require.True(t, result.Hit)
	assert.Equal(t, -4, defender.HP.Current)
}
