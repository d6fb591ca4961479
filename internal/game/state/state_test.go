package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dungeonmaister/gameserver/internal/game/character"
	"github.com/dungeonmaister/gameserver/internal/game/dice"
	"github.com/dungeonmaister/gameserver/internal/game/mapgen"
)

func testMap(t *testing.T) *mapgen.Map {
	t.Helper()
	m, _, err := mapgen.Generate(10, 10, mapgen.DefaultParams(), dice.NewCryptoSource())
	require.NoError(t, err)
	return m
}

func testState(t *testing.T) *GameState {
	t.Helper()
	chars := map[string]*character.Character{
		"hero":  character.NewBaseline("hero", "Hero"),
		"enemy": character.NewBaseline("enemy", "Goblin"),
	}
	entities := []*Entity{
		{ID: "enemy", Name: "Goblin"},
		{ID: "hero", Name: "Hero", IsPlayer: true},
	}
	gs, err := NewInitialState(testMap(t), nil, entities, chars)
	require.NoError(t, err)
	return gs
}

func TestNewInitialStatePlacesOnFirstFloor(t *testing.T) {
	gs := testState(t)

	fx, fy, ok := gs.Map.FirstFloor()
	require.True(t, ok)
	for _, e := range gs.Entities {
		assert.Equal(t, fx, e.X)
		assert.Equal(t, fy, e.Y)
	}
	assert.Equal(t, "hero", gs.SelectedEntity, "first player entity is selected")
}

func TestNewInitialStateRejectsMissingCharacter(t *testing.T) {
	_, err := NewInitialState(testMap(t), nil, []*Entity{{ID: "ghost"}}, nil)
	assert.Error(t, err)
}

func TestNewInitialStateRejectsFloorlessMap(t *testing.T) {
	m := &mapgen.Map{Width: 3, Height: 3, Tiles: [][]mapgen.Tile{
		{0, 0, 0}, {0, 0, 0}, {0, 0, 0},
	}}
	_, err := NewInitialState(m, nil, nil, nil)
	assert.Error(t, err)
}

func TestCloneIsDeep(t *testing.T) {
	gs := testState(t)
	clone := gs.Clone()

	clone.Entities[0].X = 99
	clone.Characters["hero"].HP.Current = -5
	clone.Map.Tiles[0][0] = mapgen.TileFloor
	clone.SelectedEntity = "enemy"

	assert.NotEqual(t, 99, gs.Entities[0].X)
	assert.NotEqual(t, -5, gs.Characters["hero"].HP.Current)
	assert.Equal(t, mapgen.TileWall, gs.Map.Tiles[0][0])
	assert.Equal(t, "hero", gs.SelectedEntity)
}

func TestApplyAttackLeavesReceiverUntouched(t *testing.T) {
	gs := testState(t)
	gs.Characters["enemy"].Defense = 0
	before := gs.Characters["enemy"].HP.Current

	next, result, err := gs.ApplyAttack("hero", "enemy", &hitSource{})
	require.NoError(t, err)

	assert.True(t, result.Hit)
	assert.Equal(t, before, gs.Characters["enemy"].HP.Current, "receiver untouched")
	assert.Less(t, next.Characters["enemy"].HP.Current, before, "clone took damage")
}

func TestApplyAttackUnknownIDs(t *testing.T) {
	gs := testState(t)
	_, _, err := gs.ApplyAttack("ghost", "enemy", &hitSource{})
	assert.Error(t, err)
	_, _, err = gs.ApplyAttack("hero", "ghost", &hitSource{})
	assert.Error(t, err)
}

// hitSource always rolls the die maximum, guaranteeing a hit.
type hitSource struct{}

func (hitSource) Intn(n int) int { return n - 1 }
