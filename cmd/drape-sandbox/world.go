package main

import (
	"log"

	"github.com/lixenwraith/drape/physics"
	"github.com/lixenwraith/drape/scene"
	"github.com/lixenwraith/drape/terrain"
	"github.com/lixenwraith/drape/vmath"
)

// One terminal cell covers cellWidth×cellHeight world units, a tile is 2×1 cells
const (
	cellWidth  = physics.TileSize / 2
	cellHeight = physics.TileSize
)

const (
	ceilingRows = 2
	floorRows   = 3
)

// buildTerrain makes a hall filling the screen: ceiling, floor and two pillars
func buildTerrain(screenW, screenH int) *terrain.Grid {
	tw := max(screenW/2, 8)
	th := max(screenH-1, 8)
	g := terrain.NewGrid(tw, th)
	g.FillRect(0, 0, tw-1, ceilingRows-1, true)
	g.FillRect(0, th-floorRows, tw-1, th-1, true)

	for _, x := range []int{tw / 3, tw * 2 / 3} {
		g.FillRect(x, ceilingRows, x, th-floorRows-1, true)
	}
	return g
}

// anchorBelow returns a point just inside the bottom edge of a solid tile
func anchorBelow(tx, ty int) vmath.Vec2 {
	return terrain.TileOrigin(tx, ty).Add(vmath.V2(physics.TileSize/2, physics.TileSize-1))
}

// populate decorates a fresh hall
func populate(s *scene.Scene, g *terrain.Grid) {
	tw, th := g.Width(), g.Height()
	ceiling := ceilingRows - 1
	floorTop := th - floorRows
	hall := float64(floorTop-ceilingRows) * physics.TileSize

	for tx := 3; tx < tw/3-1; tx += 5 {
		length := hall * (0.3 + 0.1*float64(tx%3))
		if _, err := s.AddLantern(anchorBelow(tx, ceiling), length, 1-2*(tx%2)); err != nil {
			log.Printf("lantern at %d: %v", tx, err)
		}
	}

	left, right := tw/3, tw*2/3
	if _, err := s.AddOrnament(anchorBelow(left+2, ceiling), anchorBelow(right-2, ceiling), 0.35); err != nil {
		log.Printf("ornament: %v", err)
	}

	for i, px := range []int{left, right} {
		start := terrain.TileCenter(px, ceilingRows+1)
		end := terrain.TileCenter(px, floorTop-2)
		if _, err := s.AddPillar(start, end, 3+2*i, 0.25, int64(px)); err != nil {
			log.Printf("pillar at %d: %v", px, err)
		}
	}

	if _, err := s.AddTapestry(right+(tw-right)/2, ceiling); err != nil {
		log.Printf("tapestry: %v", err)
	}
}
