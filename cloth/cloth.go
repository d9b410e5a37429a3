package cloth

import (
	"errors"
	"fmt"

	"github.com/lixenwraith/drape/physics"
	"github.com/lixenwraith/drape/vmath"
)

// Defaults applied when no Option overrides them
const (
	DefaultIterations = 8
	DefaultPinnedRows = 2
	DefaultPinTaper   = 0.9
	DefaultDamping    = 0.99
	DefaultStepDt     = 0.051
)

// DefaultGravity is the downward acceleration used when settling
var DefaultGravity = vmath.Vec3F{Y: 3}

var (
	ErrDimensions = errors.New("cloth dimensions must be at least 1x1")
	ErrSpacing    = errors.New("spacing must be positive and finite")
	ErrStiffness  = errors.New("stiffness must be in (0, 1]")
)

// Option adjusts construction parameters
type Option func(*Cloth)

// WithIterations sets constraint passes per Simulate, higher is stiffer and slower
func WithIterations(n int) Option {
	return func(c *Cloth) {
		if n > 0 {
			c.iterations = n
		}
	}
}

// WithPinnedRows sets how many top rows are re-pinned every step
func WithPinnedRows(n int) Option {
	return func(c *Cloth) {
		if n >= 0 {
			c.pinnedRows = n
		}
	}
}

// WithPinTaper narrows the pinned edge to f of the grid width
func WithPinTaper(f float64) Option {
	return func(c *Cloth) {
		if f > 0 && vmath.IsFinite(f) {
			c.pinTaper = f
		}
	}
}

// WithPinDepth bows the pinned edge outward by up to d at its centre
func WithPinDepth(d float64) Option {
	return func(c *Cloth) {
		if vmath.IsFinite(d) {
			c.pinDepth = d
		}
	}
}

func WithDamping(d float64) Option {
	return func(c *Cloth) {
		if vmath.IsFinite(d) {
			c.damping = vmath.Clamp01(d)
		}
	}
}

// Cloth is a width×height grid of verlet particles with structural
// constraints to the right and below neighbour, stored row-major
type Cloth struct {
	particles   []physics.Particle[vmath.Vec3F]
	constraints []physics.Constraint

	width, height int
	spacing       float64
	stiffness     float64
	anchor        vmath.Vec3F

	iterations int
	pinnedRows int
	pinTaper   float64
	pinDepth   float64
	damping    float64
}

// New builds the grid hanging at rest below anchor, centred on it
// All particles start free; pinned rows are asserted by Simulate
func New(anchor vmath.Vec3F, width, height int, spacing, mass, stiffness float64, opts ...Option) (*Cloth, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("cloth: %w: got %dx%d", ErrDimensions, width, height)
	}
	if spacing <= 0 || !vmath.IsFinite(spacing) {
		return nil, fmt.Errorf("cloth: %w: got %v", ErrSpacing, spacing)
	}
	if stiffness <= 0 || stiffness > 1 || !vmath.IsFinite(stiffness) {
		return nil, fmt.Errorf("cloth: %w: got %v", ErrStiffness, stiffness)
	}
	if !anchor.IsFinite() {
		return nil, fmt.Errorf("cloth: non-finite anchor %v", anchor)
	}

	c := &Cloth{
		particles:  make([]physics.Particle[vmath.Vec3F], width*height),
		width:      width,
		height:     height,
		spacing:    spacing,
		stiffness:  stiffness,
		anchor:     anchor,
		iterations: DefaultIterations,
		pinnedRows: DefaultPinnedRows,
		pinTaper:   DefaultPinTaper,
		damping:    DefaultDamping,
	}
	for _, opt := range opts {
		opt(c)
	}

	halfSpan := float64(width-1) * 0.5
	for y := range height {
		for x := range width {
			pos := anchor.Add(vmath.Vec3F{
				X: (float64(x) - halfSpan) * spacing,
				Y: float64(y) * spacing,
			})
			c.particles[c.index(x, y)] = physics.NewParticle(pos, mass, false)
		}
	}

	c.constraints = buildConstraints(width, height, spacing)
	return c, nil
}

// buildConstraints links each particle to its right and below neighbour
// Edges and corners get fewer links, there is no wraparound
func buildConstraints(width, height int, spacing float64) []physics.Constraint {
	n := (width-1)*height + width*(height-1)
	cs := make([]physics.Constraint, 0, n)
	for y := range height {
		for x := range width {
			i := y*width + x
			if x+1 < width {
				cs = append(cs, physics.Constraint{A: i, B: i + 1, RestLength: spacing})
			}
			if y+1 < height {
				cs = append(cs, physics.Constraint{A: i, B: i + width, RestLength: spacing})
			}
		}
	}
	return cs
}

func (c *Cloth) index(x, y int) int {
	return y*c.width + x
}

func (c *Cloth) inBounds(x, y int) bool {
	return x >= 0 && x < c.width && y >= 0 && y < c.height
}

// Simulate advances the cloth by dt
// Sequence per (sub)step: pin, gravity, integrate, constraints, re-pin
// useSubstepping halves dt and runs the sequence twice
func (c *Cloth) Simulate(dt float64, useSubstepping bool, gravity vmath.Vec3F) {
	if !useSubstepping {
		c.step(dt, gravity)
		return
	}
	// Forces queued by callers are consumed by the first half
	c.step(dt*0.5, gravity)
	c.step(dt*0.5, gravity)
}

func (c *Cloth) step(dt float64, gravity vmath.Vec3F) {
	c.pin()

	for i := range c.particles {
		p := &c.particles[i]
		if !p.Fixed {
			p.AddForce(gravity.Scale(p.Mass))
		}
	}
	for i := range c.particles {
		c.particles[i].Integrate(dt, c.damping)
	}

	physics.SolveAll(c.particles, c.constraints, c.iterations, c.stiffness)

	// Solver corrections never touch fixed points, but the pinned layout is
	// re-snapped anyway so external anchor moves and option changes take hold
	c.pin()
}

// pin snaps the top rows onto the anchor line
func (c *Cloth) pin() {
	rows := min(c.pinnedRows, c.height)
	span := float64(c.width) * c.spacing * c.pinTaper
	for y := range rows {
		for x := range c.width {
			xi := 0.5
			if c.width > 1 {
				xi = float64(x) / float64(c.width-1)
			}
			p := &c.particles[c.index(x, y)]
			p.SetPosition(c.anchor.Add(vmath.Vec3F{
				X: (xi - 0.5) * span,
				Y: float64(y) * c.spacing,
				Z: vmath.Tent01(xi) * c.pinDepth,
			}))
			p.Fixed = true
		}
	}
}

// AddForce queues a force on particle (x, y) for the next Simulate
// Out-of-range coordinates are ignored
func (c *Cloth) AddForce(x, y int, f vmath.Vec3F) {
	if !c.inBounds(x, y) {
		return
	}
	c.particles[c.index(x, y)].AddForce(f)
}

// SetAnchor moves the pin line, applied at the next Simulate
func (c *Cloth) SetAnchor(anchor vmath.Vec3F) {
	if anchor.IsFinite() {
		c.anchor = anchor
	}
}

func (c *Cloth) Anchor() vmath.Vec3F {
	return c.anchor
}

func (c *Cloth) Width() int {
	return c.width
}

func (c *Cloth) Height() int {
	return c.height
}

func (c *Cloth) Spacing() float64 {
	return c.spacing
}

// Point returns the position of particle (x, y)
func (c *Cloth) Point(x, y int) (vmath.Vec3F, bool) {
	if !c.inBounds(x, y) {
		return vmath.Vec3F{}, false
	}
	return c.particles[c.index(x, y)].Position, true
}

// Pinned reports whether particle (x, y) is currently fixed
func (c *Cloth) Pinned(x, y int) bool {
	return c.inBounds(x, y) && c.particles[c.index(x, y)].Fixed
}

// Positions returns a row-major copy of all particle positions
func (c *Cloth) Positions() []vmath.Vec3F {
	out := make([]vmath.Vec3F, len(c.particles))
	for i := range c.particles {
		out[i] = c.particles[i].Position
	}
	return out
}

// Row returns the planar positions of row y, left to right
func (c *Cloth) Row(y int) []vmath.Vec2 {
	if y < 0 || y >= c.height {
		return nil
	}
	out := make([]vmath.Vec2, c.width)
	for x := range c.width {
		out[x] = c.particles[c.index(x, y)].Position.XY()
	}
	return out
}

// Column returns the planar positions of column x, top to bottom
func (c *Cloth) Column(x int) []vmath.Vec2 {
	if x < 0 || x >= c.width {
		return nil
	}
	out := make([]vmath.Vec2, c.height)
	for y := range c.height {
		out[y] = c.particles[c.index(x, y)].Position.XY()
	}
	return out
}

// ConstraintCount returns the number of structural links
func (c *Cloth) ConstraintCount() int {
	return len(c.constraints)
}

// Params is the persisted boundary of a cloth: its owning tile only,
// geometry is rebuilt from the construction preset
type Params struct {
	TileX int `toml:"tile_x"`
	TileY int `toml:"tile_y"`
}
