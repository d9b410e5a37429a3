package physics

import (
	"math"

	"github.com/lixenwraith/drape/vmath"
)

// TileSize is the edge length of one terrain tile in world units
const TileSize = 16.0

// maxResolveRounds bounds push-out iterations when a footprint overlaps
// several solid tiles
const maxResolveRounds = 4

// TerrainSampler is the read-only view of world geometry
// Implementations return false for coordinates outside the world
type TerrainSampler interface {
	IsSolid(tileX, tileY int) bool
}

// TerrainFunc adapts a plain function to TerrainSampler
type TerrainFunc func(tileX, tileY int) bool

func (f TerrainFunc) IsSolid(tileX, tileY int) bool {
	return f(tileX, tileY)
}

// TileAt returns the tile containing world point p
func TileAt(p vmath.Vec2) (int, int) {
	return int(math.Floor(p.X / TileSize)), int(math.Floor(p.Y / TileSize))
}

// ResolveTerrain pushes p out of any solid tile its footprint overlaps
// Footprint is an area-sized box centred on the particle (minimum 1 unit)
// Push-out is axis-aligned along the shortest exit of each overlapping tile,
// and the implicit velocity into the surface on that axis is cancelled
// Returns true if the particle was displaced
func ResolveTerrain(p *Particle[vmath.Vec2], area vmath.Vec2, sampler TerrainSampler) bool {
	if p.Fixed || sampler == nil {
		return false
	}

	halfW := math.Max(area.X, 1) * 0.5
	halfH := math.Max(area.Y, 1) * 0.5

	moved := false
	for range maxResolveRounds {
		if !resolveRound(p, halfW, halfH, sampler) {
			break
		}
		moved = true
	}
	return moved
}

// resolveRound handles the first overlapping solid tile found
func resolveRound(p *Particle[vmath.Vec2], halfW, halfH float64, sampler TerrainSampler) bool {
	minX, maxX := p.Position.X-halfW, p.Position.X+halfW
	minY, maxY := p.Position.Y-halfH, p.Position.Y+halfH

	tx0 := int(math.Floor(minX / TileSize))
	tx1 := int(math.Floor(math.Nextafter(maxX, math.Inf(-1)) / TileSize))
	ty0 := int(math.Floor(minY / TileSize))
	ty1 := int(math.Floor(math.Nextafter(maxY, math.Inf(-1)) / TileSize))

	for ty := ty0; ty <= ty1; ty++ {
		for tx := tx0; tx <= tx1; tx++ {
			if !sampler.IsSolid(tx, ty) {
				continue
			}

			left := float64(tx) * TileSize
			top := float64(ty) * TileSize

			// Distance to move the footprint fully clear on each side
			// Faces buried against another solid tile are not exits
			best := math.Inf(1)
			var delta vmath.Vec2
			try := func(open bool, dist float64, d vmath.Vec2) {
				if open && dist < best {
					best = dist
					delta = d
				}
			}
			pushLeft := maxX - left
			pushRight := left + TileSize - minX
			pushUp := maxY - top
			pushDown := top + TileSize - minY
			try(!sampler.IsSolid(tx-1, ty), pushLeft, vmath.Vec2{X: -pushLeft})
			try(!sampler.IsSolid(tx+1, ty), pushRight, vmath.Vec2{X: pushRight})
			try(!sampler.IsSolid(tx, ty-1), pushUp, vmath.Vec2{Y: -pushUp})
			try(!sampler.IsSolid(tx, ty+1), pushDown, vmath.Vec2{Y: pushDown})
			if math.IsInf(best, 1) {
				// Enclosed tile, surface upward
				delta = vmath.Vec2{Y: -pushUp}
			}

			p.Position = p.Position.Add(delta)
			if delta.X != 0 {
				p.Previous.X = p.Position.X
			} else {
				p.Previous.Y = p.Position.Y
			}
			return true
		}
	}
	return false
}
