// Package scene owns the world objects built on ropes and cloth: hanging
// lanterns, ornamental and pillar ropes, and tapestries
// All methods belong to the simulation goroutine except the settle passes
// started by Enter, which only ever touch their own cloth
package scene

import (
	"cmp"
	"context"
	"errors"
	"log"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/lixenwraith/drape/cloth"
	"github.com/lixenwraith/drape/config"
	"github.com/lixenwraith/drape/persist"
	"github.com/lixenwraith/drape/physics"
	"github.com/lixenwraith/drape/pool"
	"github.com/lixenwraith/drape/vmath"
	"github.com/lixenwraith/drape/wind"
)

// Scene is the simulation root for one level
type Scene struct {
	cfg     config.Config
	ropes   *pool.Manager
	terrain physics.TerrainSampler
	wind    *wind.Field

	lanterns   []*Lantern
	ornaments  []*Ornament
	pillars    []*Pillar
	tapestries []*Tapestry

	viewerPos vmath.Vec2
	viewerVel vmath.Vec2

	// enterCtx is set by Enter so tapestries added later settle immediately
	enterCtx context.Context

	// OnBrush is called when the viewer pushes through a tapestry fast enough
	// to be heard
	OnBrush func(*Tapestry)
	// OnDetach is called after a rope owner loses an anchor tile and is removed
	OnDetach func(owner any)
}

// New creates an empty scene; sampler may be nil for open space
func New(cfg config.Config, sampler physics.TerrainSampler) *Scene {
	w := wind.NewField(cfg.Wind.Seed, cfg.Wind.Base, cfg.Wind.Gust)
	w.SetRate(cfg.Wind.Rate)
	return &Scene{
		cfg:     cfg,
		ropes:   pool.New(),
		terrain: sampler,
		wind:    w,
	}
}

// Ropes exposes the rope manager for renderers and tests
func (s *Scene) Ropes() *pool.Manager {
	return s.ropes
}

func (s *Scene) Wind() *wind.Field {
	return s.wind
}

func (s *Scene) Lanterns() []*Lantern {
	return s.lanterns
}

func (s *Scene) Ornaments() []*Ornament {
	return s.ornaments
}

func (s *Scene) Pillars() []*Pillar {
	return s.pillars
}

func (s *Scene) Tapestries() []*Tapestry {
	return s.tapestries
}

// SetViewer records the actor position and velocity used for tapestry
// pushes and activity range
func (s *Scene) SetViewer(pos, vel vmath.Vec2) {
	if pos.IsFinite() && vel.IsFinite() {
		s.viewerPos, s.viewerVel = pos, vel
	}
}

func (s *Scene) Viewer() vmath.Vec2 {
	return s.viewerPos
}

// AddLantern hangs a lantern of the given length below anchor
func (s *Scene) AddLantern(anchor vmath.Vec2, length float64, direction int) (*Lantern, error) {
	l, err := newLantern(s.ropes, s.cfg.Lantern, anchor, length, direction)
	if err != nil {
		return nil, err
	}
	s.lanterns = append(s.lanterns, l)
	return l, nil
}

// AddOrnament strings a decorative rope between start and end
func (s *Scene) AddOrnament(start, end vmath.Vec2, sag float64) (*Ornament, error) {
	o, err := newOrnament(s.ropes, s.cfg.Ornament, start, end, sag, 0)
	if err != nil {
		return nil, err
	}
	s.ornaments = append(s.ornaments, o)
	return o, nil
}

// AddPillar wraps a beaded rope between start and end
func (s *Scene) AddPillar(start, end vmath.Vec2, beadCount int, sag float64, id int64) (*Pillar, error) {
	p, err := newPillar(s.ropes, s.cfg.Pillar, start, end, beadCount, sag, 0, id)
	if err != nil {
		return nil, err
	}
	s.pillars = append(s.pillars, p)
	return p, nil
}

// AddTapestry hangs a tapestry from tile (x, y)
// After Enter the new tapestry starts settling at once
func (s *Scene) AddTapestry(tileX, tileY int) (*Tapestry, error) {
	t, err := newTapestry(s.cfg.Tapestry, tileX, tileY)
	if err != nil {
		return nil, err
	}
	s.tapestries = append(s.tapestries, t)
	if s.enterCtx != nil {
		t.Settle(s.enterCtx)
	}
	return t, nil
}

func (s *Scene) RemoveLantern(l *Lantern) bool {
	var ok bool
	if s.lanterns, ok = without(s.lanterns, l); ok {
		s.ropes.Remove(l.handle)
	}
	return ok
}

func (s *Scene) RemoveOrnament(o *Ornament) bool {
	var ok bool
	if s.ornaments, ok = without(s.ornaments, o); ok {
		s.ropes.Remove(o.handle)
	}
	return ok
}

func (s *Scene) RemovePillar(p *Pillar) bool {
	var ok bool
	if s.pillars, ok = without(s.pillars, p); ok {
		s.ropes.Remove(p.handle)
	}
	return ok
}

// RemoveTapestry cancels any in-flight settle before dropping the tapestry
func (s *Scene) RemoveTapestry(t *Tapestry) bool {
	var ok bool
	if s.tapestries, ok = without(s.tapestries, t); ok {
		t.release()
	}
	return ok
}

func without[T comparable](list []T, item T) ([]T, bool) {
	i := slices.Index(list, item)
	if i < 0 {
		return list, false
	}
	return slices.Delete(list, i, i+1), true
}

// Clear removes every owner and cancels all settling
func (s *Scene) Clear() {
	for _, t := range s.tapestries {
		t.release()
	}
	s.ropes.Clear()
	s.lanterns, s.ornaments, s.pillars, s.tapestries = nil, nil, nil, nil
}

// Tick advances the scene by one fixed step
// Order: wind, anchor support check, ornament sway, ropes, tapestries
func (s *Scene) Tick() {
	s.wind.Advance(1 / float64(s.cfg.Simulation.TickRate))
	w := s.wind.Scalar()

	s.pruneDetached()

	for _, o := range s.ornaments {
		o.advance(w)
	}

	s.ropes.UpdateAll(s.cfg.Simulation.RopeDt, w, s.terrain)

	for _, t := range s.tapestries {
		if !s.active(t) {
			continue
		}
		if t.update(s.viewerPos, s.viewerVel) && s.OnBrush != nil {
			s.OnBrush(t)
		}
	}
}

// active reports whether a tapestry is settled and near enough to simulate
func (s *Scene) active(t *Tapestry) bool {
	if !t.Ready() {
		return false
	}
	r := s.cfg.Simulation.ActiveRange
	return r <= 0 || vmath.WithinRange(s.viewerPos, t.Anchor(), r)
}

// pruneDetached removes rope owners whose anchor tile is gone
func (s *Scene) pruneDetached() {
	if s.terrain == nil {
		return
	}
	for _, l := range slices.Clone(s.lanterns) {
		if !s.supported(l.anchors()) {
			s.RemoveLantern(l)
			s.detached(l)
		}
	}
	for _, o := range slices.Clone(s.ornaments) {
		if !s.supported(o.anchors()) {
			s.RemoveOrnament(o)
			s.detached(o)
		}
	}
	for _, p := range slices.Clone(s.pillars) {
		if !s.supported(p.anchors()) {
			s.RemovePillar(p)
			s.detached(p)
		}
	}
}

func (s *Scene) supported(anchors []vmath.Vec2) bool {
	for _, a := range anchors {
		if !s.terrain.IsSolid(physics.TileAt(a)) {
			return false
		}
	}
	return true
}

func (s *Scene) detached(owner any) {
	if s.OnDetach != nil {
		s.OnDetach(owner)
	}
}

// Enter settles every tapestry in the background, nearest to the viewer
// first, at most Simulation.SettleWorkers at a time
// The returned channel yields the first settle failure, or nil, then closes
// Cancelled passes (removed tapestries or a cancelled ctx) are not failures
func (s *Scene) Enter(ctx context.Context) <-chan error {
	s.enterCtx = ctx

	order := nearestFirst(s.viewerPos, s.tapestries)
	workers := max(s.cfg.Simulation.SettleWorkers, 1)

	result := make(chan error, 1)
	go func() {
		defer close(result)

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)
		for _, t := range order {
			g.Go(func() error {
				t.Settle(gctx)
				err := t.Wait()
				if errors.Is(err, cloth.ErrSettleCancelled) {
					log.Printf("scene: tapestry %d,%d settle cancelled", t.tileX, t.tileY)
					return nil
				}
				if err != nil {
					log.Printf("scene: tapestry %d,%d settle failed: %v", t.tileX, t.tileY, err)
				}
				return err
			})
		}
		result <- g.Wait()
	}()
	return result
}

// nearestFirst returns a copy of ts ordered by anchor distance from viewer
func nearestFirst(viewer vmath.Vec2, ts []*Tapestry) []*Tapestry {
	order := slices.Clone(ts)
	slices.SortStableFunc(order, func(a, b *Tapestry) int {
		return cmp.Compare(vmath.Distance2(viewer, a.Anchor()), vmath.Distance2(viewer, b.Anchor()))
	})
	return order
}

// Snapshot captures every owner's rebuild parameters
func (s *Scene) Snapshot() persist.Document {
	doc := persist.Document{Version: persist.Version}
	for _, l := range s.lanterns {
		doc.Lanterns = append(doc.Lanterns, l.record())
	}
	for _, o := range s.ornaments {
		doc.Ornaments = append(doc.Ornaments, o.record())
	}
	for _, p := range s.pillars {
		doc.Pillars = append(doc.Pillars, p.record())
	}
	for _, t := range s.tapestries {
		doc.Tapestries = append(doc.Tapestries, t.record())
	}
	return doc
}

// Restore replaces the scene contents with doc
// Records that fail to rebuild are skipped and reported together
func (s *Scene) Restore(doc persist.Document) error {
	s.Clear()

	var errs []error
	for _, r := range doc.Lanterns {
		l, err := s.AddLantern(r.Start, r.Length, r.Direction)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		l.sag = r.Sag
	}
	for _, r := range doc.Ornaments {
		o, err := newOrnament(s.ropes, s.cfg.Ornament, r.Start, r.End, r.Sag, r.MaxLength)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		o.windTime = r.WindTime
		s.ornaments = append(s.ornaments, o)
	}
	for _, r := range doc.Pillars {
		p, err := newPillar(s.ropes, s.cfg.Pillar, r.Start, r.End, r.BeadCount, r.Sag, r.MaxLength, r.ID)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		s.pillars = append(s.pillars, p)
	}
	for _, r := range doc.Tapestries {
		if _, err := s.AddTapestry(r.TileX, r.TileY); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
