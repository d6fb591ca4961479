package mapgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/dungeonmaister/gameserver/internal/game/dice"
)

// seqSource replays a scripted sequence of Intn results, reducing each
// scripted value modulo n so any script stays in range.
type seqSource struct {
	vals []int
	idx  int
}

func (s *seqSource) Intn(n int) int {
	if n <= 0 {
		panic("seqSource: n <= 0")
	}
	if s.idx >= len(s.vals) {
		return 0
	}
	v := s.vals[s.idx] % n
	s.idx++
	return v
}

func TestGenerateRejectsTinyGrids(t *testing.T) {
	src := dice.NewCryptoSource()
	for _, dims := range [][2]int{{2, 10}, {10, 2}, {0, 0}, {2, 2}} {
		_, _, err := Generate(dims[0], dims[1], DefaultParams(), src)
		assert.Error(t, err, "dims %v", dims)
	}
}

func TestGenerateRejectsBadParams(t *testing.T) {
	src := dice.NewCryptoSource()

	bad := DefaultParams()
	bad.PropDensity = "extreme"
	_, _, err := Generate(10, 10, bad, src)
	assert.Error(t, err)

	bad = DefaultParams()
	bad.PropThemes = nil
	_, _, err = Generate(10, 10, bad, src)
	assert.Error(t, err)
}

func TestGenerateBorderIsWall(t *testing.T) {
	m, _, err := Generate(20, 15, DefaultParams(), dice.NewCryptoSource())
	require.NoError(t, err)

	for x := 0; x < m.Width; x++ {
		assert.Equal(t, TileWall, m.Tiles[0][x])
		assert.Equal(t, TileWall, m.Tiles[m.Height-1][x])
	}
	for y := 0; y < m.Height; y++ {
		assert.Equal(t, TileWall, m.Tiles[y][0])
		assert.Equal(t, TileWall, m.Tiles[y][m.Width-1])
	}
}

func TestGenerateHasFloor(t *testing.T) {
	m, _, err := Generate(3, 3, DefaultParams(), dice.NewCryptoSource())
	require.NoError(t, err)

	x, y, ok := m.FirstFloor()
	require.True(t, ok)
	assert.Equal(t, 1, x)
	assert.Equal(t, 1, y)
}

func TestGeneratePropsOnDistinctFloorTiles(t *testing.T) {
	params := Params{PropDensity: DensityHigh, PropThemes: []string{"barrel", "crate"}, EnemyCount: 2}
	m, props, err := Generate(30, 30, params, dice.NewCryptoSource())
	require.NoError(t, err)

	seen := map[[2]int]bool{}
	for _, p := range props {
		assert.True(t, m.IsFloor(p.X, p.Y), "prop at (%d,%d) not on floor", p.X, p.Y)
		assert.Contains(t, params.PropThemes, p.Name)
		key := [2]int{p.X, p.Y}
		assert.False(t, seen[key], "two props share tile (%d,%d)", p.X, p.Y)
		seen[key] = true
	}
}

func TestGeneratePropCountTiers(t *testing.T) {
	for density, want := range map[Density]int{DensityLow: 3, DensityMedium: 5, DensityHigh: 7} {
		params := DefaultParams()
		params.PropDensity = density
		_, props, err := Generate(30, 30, params, dice.NewCryptoSource())
		require.NoError(t, err)
		assert.Len(t, props, want, "density %s", density)
	}
}

func TestGeneratePropCountCappedByFloor(t *testing.T) {
	// A walker that only steps up carves a short column, fewer cells
	// than the high-density prop count.
	params := DefaultParams()
	params.PropDensity = DensityHigh
	src := &seqSource{} // exhausted script always returns 0: step "up"

	m, props, err := Generate(3, 9, params, src)
	require.NoError(t, err)

	floors := 0
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if m.Tiles[y][x] == TileFloor {
				floors++
			}
		}
	}
	assert.LessOrEqual(t, len(props), floors)
}

func TestGenerateFloorsConnected(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		width := rapid.IntRange(3, 40).Draw(t, "width")
		height := rapid.IntRange(3, 40).Draw(t, "height")

		m, _, err := Generate(width, height, DefaultParams(), dice.NewCryptoSource())
		require.NoError(t, err)

		sx, sy, ok := m.FirstFloor()
		require.True(t, ok)

		// Flood fill from the first floor tile.
		visited := map[[2]int]bool{{sx, sy}: true}
		queue := [][2]int{{sx, sy}}
		for len(queue) > 0 {
			cell := queue[0]
			queue = queue[1:]
			for _, d := range [][2]int{{0, -1}, {0, 1}, {-1, 0}, {1, 0}} {
				nx, ny := cell[0]+d[0], cell[1]+d[1]
				if m.IsFloor(nx, ny) && !visited[[2]int{nx, ny}] {
					visited[[2]int{nx, ny}] = true
					queue = append(queue, [2]int{nx, ny})
				}
			}
		}

		for y := 0; y < m.Height; y++ {
			for x := 0; x < m.Width; x++ {
				if m.Tiles[y][x] == TileFloor && !visited[[2]int{x, y}] {
					t.Fatalf("floor tile (%d,%d) unreachable from (%d,%d)", x, y, sx, sy)
				}
			}
		}
	})
}
