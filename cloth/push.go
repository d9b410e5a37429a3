package cloth

import (
	"github.com/lixenwraith/drape/vmath"
)

// Brush thresholds for reporting an interaction worth a sound cue
const (
	brushInterpolant = 0.67
	brushMinSpeed    = 3.0
)

// PushFrom injects proximity forces from an actor moving through the cloth
// Each particle within outer of actorPos receives actorVel scaled by how
// deep it sits between outer (0) and inner (1), times scale
// Returns true if the actor brushed the cloth hard enough to be noticed
func (c *Cloth) PushFrom(actorPos, actorVel vmath.Vec2, inner, outer, scale float64) bool {
	if !actorPos.IsFinite() || !actorVel.IsFinite() {
		return false
	}

	fast := actorVel.Len() >= brushMinSpeed
	brushed := false
	for i := range c.particles {
		p := &c.particles[i]
		dist := vmath.Distance2(actorPos, p.Position.XY())
		k := vmath.InverseLerp(outer, inner, dist)
		if k <= 0 {
			continue
		}
		v := actorVel.Scale(k * scale)
		p.AddForce(vmath.Vec3F{X: v.X, Y: v.Y})
		if fast && k >= brushInterpolant {
			brushed = true
		}
	}
	return brushed
}
