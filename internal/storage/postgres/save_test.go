package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dungeonmaister/gameserver/internal/game/character"
	"github.com/dungeonmaister/gameserver/internal/game/mapgen"
	"github.com/dungeonmaister/gameserver/internal/game/state"
	"github.com/dungeonmaister/gameserver/internal/storage/postgres"
	"github.com/dungeonmaister/gameserver/internal/testutil"
)

func sampleState(t *testing.T, heroHP int) *state.GameState {
	t.Helper()
	m := &mapgen.Map{Width: 3, Height: 3, Tiles: [][]mapgen.Tile{
		{mapgen.TileWall, mapgen.TileWall, mapgen.TileWall},
		{mapgen.TileWall, mapgen.TileFloor, mapgen.TileWall},
		{mapgen.TileWall, mapgen.TileWall, mapgen.TileWall},
	}}
	hero := character.NewBaseline("hero", "Ashka")
	hero.HP.Current = heroHP
	gs, err := state.NewInitialState(m, nil,
		[]*state.Entity{{ID: "hero", Name: "Ashka", IsPlayer: true}},
		map[string]*character.Character{"hero": hero},
	)
	require.NoError(t, err)
	return gs
}

func TestSaveRepositoryRoundTrip(t *testing.T) {
	pc := testutil.NewPostgresContainer(t)
	pc.ApplyMigrations(t)
	repo := postgres.NewSaveRepository(pc.RawPool)
	ctx := context.Background()

	saved := sampleState(t, 7)
	require.NoError(t, repo.Save(ctx, "session-1", saved))

	loaded, err := repo.Load(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, 7, loaded.Characters["hero"].HP.Current)
	assert.Equal(t, "hero", loaded.SelectedEntity)
	assert.Equal(t, saved.Map.Width, loaded.Map.Width)
}

func TestSaveRepositoryOverwrite(t *testing.T) {
	pc := testutil.NewPostgresContainer(t)
	pc.ApplyMigrations(t)
	repo := postgres.NewSaveRepository(pc.RawPool)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "session-1", sampleState(t, 7)))
	require.NoError(t, repo.Save(ctx, "session-1", sampleState(t, 2)))

	loaded, err := repo.Load(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Characters["hero"].HP.Current)
}

func TestSaveRepositoryMissing(t *testing.T) {
	pc := testutil.NewPostgresContainer(t)
	pc.ApplyMigrations(t)
	repo := postgres.NewSaveRepository(pc.RawPool)

	_, err := repo.Load(context.Background(), "nobody")
	assert.ErrorIs(t, err, postgres.ErrSaveNotFound)
}

func TestSaveRepositoryDelete(t *testing.T) {
	pc := testutil.NewPostgresContainer(t)
	pc.ApplyMigrations(t)
	repo := postgres.NewSaveRepository(pc.RawPool)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "session-1", sampleState(t, 7)))
	require.NoError(t, repo.Delete(ctx, "session-1"))

	_, err := repo.Load(ctx, "session-1")
	assert.ErrorIs(t, err, postgres.ErrSaveNotFound)

	// Deleting a missing save is a no-op.
	require.NoError(t, repo.Delete(ctx, "session-1"))
}
