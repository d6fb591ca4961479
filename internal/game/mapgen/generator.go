// Package mapgen generates dungeon tile grids with a drunkard's-walk carve
// and scatters props across the resulting floor.
package mapgen

import (
	"fmt"

	"github.com/dungeonmaister/gameserver/internal/game/dice"
)

// Tile is one grid cell: wall or floor.
type Tile uint8

// Tile kinds.
const (
	TileWall Tile = iota
	TileFloor
)

// Map is an immutable tile grid. Tiles are indexed [y][x].
type Map struct {
	Width  int      `json:"width"`
	Height int      `json:"height"`
	Tiles  [][]Tile `json:"tiles"`
}

// InBounds reports whether (x, y) lies inside the grid.
func (m *Map) InBounds(x, y int) bool {
	return x >= 0 && x < m.Width && y >= 0 && y < m.Height
}

// IsFloor reports whether (x, y) is an in-bounds floor tile.
func (m *Map) IsFloor(x, y int) bool {
	return m.InBounds(x, y) && m.Tiles[y][x] == TileFloor
}

// FirstFloor returns the coordinates of the first floor tile in row-major
// scan order.
//
// Postcondition: Returns (x, y, true) if any floor tile exists.
func (m *Map) FirstFloor() (int, int, bool) {
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if m.Tiles[y][x] == TileFloor {
				return x, y, true
			}
		}
	}
	return 0, 0, false
}

// Prop is a named object placed on a floor tile. At most one prop occupies
// a tile; placement removes the tile from the candidate pool.
type Prop struct {
	Name string `json:"name"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

// Density selects the prop-count tier.
type Density string

// The three valid density tiers. No other value is accepted.
const (
	DensityLow    Density = "low"
	DensityMedium Density = "medium"
	DensityHigh   Density = "high"
)

// propCount returns the number of props for a density tier.
func (d Density) propCount() (int, bool) {
	switch d {
	case DensityHigh:
		return 7, true
	case DensityMedium:
		return 5, true
	case DensityLow:
		return 3, true
	}
	return 0, false
}

// Params configures a generation run. PropThemes is the name pool props are
// drawn from, with replacement. EnemyCount is carried for the encounter
// layer and does not affect tile generation.
type Params struct {
	PropDensity Density  `json:"propDensity"`
	PropThemes  []string `json:"propThemes"`
	EnemyCount  int      `json:"enemyCount"`
}

// DefaultParams is the conservative fallback used when AI-generated
// parameters are unavailable or invalid.
func DefaultParams() Params {
	return Params{
		PropDensity: DensityLow,
		PropThemes:  []string{"rock", "pebble"},
		EnemyCount:  1,
	}
}

// Validate checks that params are well formed.
func (p Params) Validate() error {
	if _, ok := p.PropDensity.propCount(); !ok {
		return fmt.Errorf("mapgen: invalid prop density %q", p.PropDensity)
	}
	if len(p.PropThemes) == 0 {
		return fmt.Errorf("mapgen: prop themes must not be empty")
	}
	return nil
}

type point struct{ x, y int }

// Generate produces a width×height map and its props.
//
// The grid starts all wall. A drunkard's walk begins at the grid center with
// the starting cell carved, then runs width×height iterations: each picks
// one of the four cardinal directions uniformly; the step is committed and
// the new cell carved only when it lies strictly inside the border
// (1 <= x <= width-2, 1 <= y <= height-2), otherwise the walker stays put.
// The border therefore remains all wall, and every floor cell is connected
// to the start by construction. Props are then placed on distinct floor
// cells chosen uniformly from the candidate pool, with names drawn uniformly
// (with replacement) from params.PropThemes.
//
// Precondition: width and height must be >= 3 so the walk has interior
// cells; params must validate; src must be non-nil.
// Postcondition: Border cells are all wall; at least one floor cell exists;
// every prop sits on a distinct floor cell.
func Generate(width, height int, params Params, src dice.Source) (*Map, []Prop, error) {
	if width < 3 || height < 3 {
		return nil, nil, fmt.Errorf("mapgen: grid must be at least 3x3, got %dx%d", width, height)
	}
	if err := params.Validate(); err != nil {
		return nil, nil, err
	}

	m := &Map{Width: width, Height: height, Tiles: make([][]Tile, height)}
	for y := range m.Tiles {
		m.Tiles[y] = make([]Tile, width)
	}

	// Cardinal steps: up, down, left, right.
	steps := [4]point{{0, -1}, {0, 1}, {-1, 0}, {1, 0}}

	cur := point{width / 2, height / 2}
	m.Tiles[cur.y][cur.x] = TileFloor

	for i := 0; i < width*height; i++ {
		step := steps[src.Intn(4)]
		next := point{cur.x + step.x, cur.y + step.y}
		if next.x < 1 || next.x > width-2 || next.y < 1 || next.y > height-2 {
			continue
		}
		cur = next
		m.Tiles[cur.y][cur.x] = TileFloor
	}

	var pool []point
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if m.Tiles[y][x] == TileFloor {
				pool = append(pool, point{x, y})
			}
		}
	}

	count, _ := params.PropDensity.propCount()
	props := make([]Prop, 0, count)
	for i := 0; i < count && len(pool) > 0; i++ {
		idx := src.Intn(len(pool))
		cell := pool[idx]
		pool[idx] = pool[len(pool)-1]
		pool = pool[:len(pool)-1]

		name := params.PropThemes[src.Intn(len(params.PropThemes))]
		props = append(props, Prop{Name: name, X: cell.x, Y: cell.y})
	}

	return m, props, nil
}
