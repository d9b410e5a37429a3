package scene

import (
	"context"
	"fmt"

	"github.com/lixenwraith/drape/cloth"
	"github.com/lixenwraith/drape/config"
	"github.com/lixenwraith/drape/terrain"
	"github.com/lixenwraith/drape/vmath"
)

// Tapestry is a cloth hung from a ceiling tile
// It stays hidden from Tick and renderers until its settle pass completes
type Tapestry struct {
	tileX, tileY int
	preset       config.Tapestry
	gravity      vmath.Vec3F
	settler      *cloth.Settler
}

func newTapestry(p config.Tapestry, tileX, tileY int) (*Tapestry, error) {
	origin := terrain.TileOrigin(tileX, tileY)
	c, err := cloth.New(vmath.V3FFrom2(origin, 0), p.Width, p.Height, p.Spacing, p.Mass, p.Stiffness,
		cloth.WithIterations(p.Iterations),
		cloth.WithPinDepth(p.PinDepth),
	)
	if err != nil {
		return nil, fmt.Errorf("scene: tapestry at (%d,%d): %w", tileX, tileY, err)
	}

	t := &Tapestry{
		tileX:   tileX,
		tileY:   tileY,
		preset:  p,
		gravity: vmath.Vec3F{Y: p.Gravity},
	}
	t.settler = cloth.NewSettler(c, p.SettleSteps, func(c *cloth.Cloth) {
		c.Simulate(p.Dt, p.Substep, t.gravity)
	})
	return t, nil
}

func (t *Tapestry) Tile() (int, int) {
	return t.tileX, t.tileY
}

// Anchor is the world position of the hanging tile's corner
func (t *Tapestry) Anchor() vmath.Vec2 {
	return terrain.TileOrigin(t.tileX, t.tileY)
}

// Ready reports whether settling finished and the cloth is live
func (t *Tapestry) Ready() bool {
	return t.settler.Ready()
}

// Cloth returns the settled cloth, nil until Ready
func (t *Tapestry) Cloth() *cloth.Cloth {
	return t.settler.Cloth()
}

// Settle starts the background settle pass, a no-op when already started
func (t *Tapestry) Settle(ctx context.Context) {
	t.settler.Start(ctx)
}

// Wait blocks until settling ends
func (t *Tapestry) Wait() error {
	return t.settler.Wait()
}

// update runs the per-tick steps with the viewer pushing through the cloth
// Returns true if the viewer brushed it
func (t *Tapestry) update(viewerPos, viewerVel vmath.Vec2) bool {
	c := t.settler.Cloth()
	if c == nil {
		return false
	}
	brushed := false
	for range t.preset.StepsPerTick {
		if c.PushFrom(viewerPos, viewerVel, t.preset.PushInner, t.preset.PushOuter, t.preset.PushScale) {
			brushed = true
		}
		c.Simulate(t.preset.Dt, t.preset.Substep, t.gravity)
	}
	return brushed
}

func (t *Tapestry) release() {
	t.settler.Cancel()
}

func (t *Tapestry) record() cloth.Params {
	return cloth.Params{TileX: t.tileX, TileY: t.tileY}
}
