// Package terrain provides a solid tile grid usable as a physics.TerrainSampler
package terrain

import (
	"math"
	"sync"

	"github.com/lixenwraith/drape/physics"
	"github.com/lixenwraith/drape/vmath"
)

// Grid is a bounded tile map of solid flags, row-major
// Readers and writers may run on different goroutines; writes are expected
// between simulation ticks so a tick sees a consistent map
type Grid struct {
	mu     sync.RWMutex
	width  int
	height int
	solid  []bool
}

var _ physics.TerrainSampler = (*Grid)(nil)

// NewGrid creates an empty grid, negative sizes are treated as zero
func NewGrid(width, height int) *Grid {
	width = max(width, 0)
	height = max(height, 0)
	return &Grid{
		width:  width,
		height: height,
		solid:  make([]bool, width*height),
	}
}

func (g *Grid) Width() int {
	return g.width
}

func (g *Grid) Height() int {
	return g.height
}

func (g *Grid) inBounds(x, y int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

// IsSolid reports whether tile (x, y) blocks particles, out of bounds is open
func (g *Grid) IsSolid(x, y int) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.inBounds(x, y) && g.solid[y*g.width+x]
}

// SetSolid sets one tile, out of bounds writes are ignored
// Returns the previous state
func (g *Grid) SetSolid(x, y int, solid bool) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.inBounds(x, y) {
		return false
	}
	i := y*g.width + x
	prev := g.solid[i]
	g.solid[i] = solid
	return prev
}

// FillRect sets every tile in the inclusive rectangle, clipped to the grid
func (g *Grid) FillRect(x0, y0, x1, y1 int, solid bool) {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	x0, y0 = max(x0, 0), max(y0, 0)
	x1, y1 = min(x1, g.width-1), min(y1, g.height-1)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			g.solid[y*g.width+x] = solid
		}
	}
}

// Count returns the number of solid tiles
func (g *Grid) Count() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n := 0
	for _, s := range g.solid {
		if s {
			n++
		}
	}
	return n
}

// WorldToTile maps a world position to its tile coordinates
func WorldToTile(p vmath.Vec2) (int, int) {
	return physics.TileAt(p)
}

// TileCenter returns the world position of a tile's centre
func TileCenter(x, y int) vmath.Vec2 {
	return vmath.V2((float64(x)+0.5)*physics.TileSize, (float64(y)+0.5)*physics.TileSize)
}

// TileOrigin returns the world position of a tile's top-left corner
func TileOrigin(x, y int) vmath.Vec2 {
	return vmath.V2(float64(x)*physics.TileSize, float64(y)*physics.TileSize)
}

// SolidAt reports whether the world position lies in a solid tile
func (g *Grid) SolidAt(p vmath.Vec2) bool {
	if !p.IsFinite() || math.Abs(p.X) > math.MaxInt32 || math.Abs(p.Y) > math.MaxInt32 {
		return false
	}
	return g.IsSolid(WorldToTile(p))
}
