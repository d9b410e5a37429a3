// Package config loads simulation tuning from TOML
// Defaults reproduce the shipped presets; a file only needs the keys it overrides
package config

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/BurntSushi/toml"
)

// Simulation holds world-level stepping parameters
type Simulation struct {
	// TickRate is fixed simulation ticks per second
	TickRate int `toml:"tick_rate"`
	// RopeDt is the integration step handed to every rope per tick
	RopeDt float64 `toml:"rope_dt"`
	// SettleWorkers bounds concurrent tapestry settling
	SettleWorkers int `toml:"settle_workers"`
	// ActiveRange skips tapestry updates farther than this from the viewer
	ActiveRange float64 `toml:"active_range"`
}

// RopePreset describes one class of rope owner
type RopePreset struct {
	Segments     int     `toml:"segments"`
	Iterations   int     `toml:"iterations"`
	Gravity      float64 `toml:"gravity"`
	ColliderArea float64 `toml:"collider_area"`
	Mass         float64 `toml:"mass"`
	Sag          float64 `toml:"sag"`
	Collide      bool    `toml:"collide"`
	Wind         bool    `toml:"wind"`
}

// Tapestry describes the cloth preset
type Tapestry struct {
	Width        int     `toml:"width"`
	Height       int     `toml:"height"`
	Spacing      float64 `toml:"spacing"`
	Mass         float64 `toml:"mass"`
	Stiffness    float64 `toml:"stiffness"`
	Iterations   int     `toml:"iterations"`
	PinDepth     float64 `toml:"pin_depth"`
	Dt           float64 `toml:"dt"`
	Gravity      float64 `toml:"gravity"`
	StepsPerTick int     `toml:"steps_per_tick"`
	SettleSteps  int     `toml:"settle_steps"`
	PushInner    float64 `toml:"push_inner"`
	PushOuter    float64 `toml:"push_outer"`
	PushScale    float64 `toml:"push_scale"`
	Substep      bool    `toml:"substep"`
}

// Wind drives the reference gust field
type Wind struct {
	Seed int64   `toml:"seed"`
	Base float64 `toml:"base"`
	Gust float64 `toml:"gust"`
	Rate float64 `toml:"rate"`
}

// Logging mirrors the command-line debug switch for file-driven setups
type Logging struct {
	Debug bool   `toml:"debug"`
	Dir   string `toml:"dir"`
}

// Config is the full tuning document
type Config struct {
	Simulation Simulation `toml:"simulation"`
	Lantern    RopePreset `toml:"lantern"`
	Ornament   RopePreset `toml:"ornament"`
	Pillar     RopePreset `toml:"pillar"`
	Tapestry   Tapestry   `toml:"tapestry"`
	Wind       Wind       `toml:"wind"`
	Logging    Logging    `toml:"logging"`
}

// Default returns the shipped presets
func Default() Config {
	return Config{
		Simulation: Simulation{
			TickRate:      60,
			RopeDt:        1,
			SettleWorkers: 2,
			ActiveRange:   3000,
		},
		Lantern: RopePreset{
			Segments:     24,
			Iterations:   12,
			Gravity:      0.6,
			ColliderArea: 6,
			Collide:      true,
			Wind:         true,
		},
		Ornament: RopePreset{
			Segments:     30,
			Iterations:   15,
			Gravity:      0.65,
			ColliderArea: 5,
			Sag:          0.3,
			Collide:      true,
		},
		Pillar: RopePreset{
			Segments:     30,
			Iterations:   12,
			Gravity:      0.5,
			ColliderArea: 5,
			Mass:         0.5,
			Sag:          0.2,
			Collide:      true,
			Wind:         true,
		},
		Tapestry: Tapestry{
			Width:        21,
			Height:       13,
			Spacing:      13,
			Mass:         80,
			Stiffness:    1,
			Iterations:   8,
			PinDepth:     130,
			Dt:           0.051,
			Gravity:      3,
			StepsPerTick: 8,
			SettleSteps:  1000,
			PushInner:    19,
			PushOuter:    36,
			PushScale:    0.75,
		},
		Wind: Wind{
			Seed: 1,
			Base: 0.4,
			Gust: 0.8,
			Rate: 0.25,
		},
		Logging: Logging{
			Dir: "logs",
		},
	}
}

// Load overlays the TOML file at path onto Default
// Unknown keys are logged and otherwise ignored
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: open: %w", err)
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Decode reads a TOML document from r onto Default and validates it
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return Config{}, fmt.Errorf("decode: %w", err)
	}
	for _, key := range md.Undecoded() {
		log.Printf("config: unknown key %q ignored", key.String())
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Write encodes cfg as TOML, used to emit a starting template
func Write(w io.Writer, cfg Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	return nil
}

// Validate reports every out-of-range field, joined
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("config: "+format, args...))
		}
	}

	check(c.Simulation.TickRate > 0, "simulation.tick_rate must be positive, got %d", c.Simulation.TickRate)
	check(c.Simulation.RopeDt > 0, "simulation.rope_dt must be positive, got %v", c.Simulation.RopeDt)
	check(c.Simulation.SettleWorkers > 0, "simulation.settle_workers must be positive, got %d", c.Simulation.SettleWorkers)
	check(c.Simulation.ActiveRange >= 0, "simulation.active_range must not be negative, got %v", c.Simulation.ActiveRange)

	for _, p := range []struct {
		name string
		r    RopePreset
	}{{"lantern", c.Lantern}, {"ornament", c.Ornament}, {"pillar", c.Pillar}} {
		check(p.r.Segments >= 1, "%s.segments must be at least 1, got %d", p.name, p.r.Segments)
		check(p.r.Iterations >= 1, "%s.iterations must be at least 1, got %d", p.name, p.r.Iterations)
		check(p.r.ColliderArea >= 0, "%s.collider_area must not be negative, got %v", p.name, p.r.ColliderArea)
		check(p.r.Mass >= 0, "%s.mass must not be negative, got %v", p.name, p.r.Mass)
		check(p.r.Sag >= 0, "%s.sag must not be negative, got %v", p.name, p.r.Sag)
	}

	t := c.Tapestry
	check(t.Width >= 1 && t.Height >= 1, "tapestry size must be at least 1x1, got %dx%d", t.Width, t.Height)
	check(t.Spacing > 0, "tapestry.spacing must be positive, got %v", t.Spacing)
	check(t.Mass > 0, "tapestry.mass must be positive, got %v", t.Mass)
	check(t.Stiffness > 0 && t.Stiffness <= 1, "tapestry.stiffness must be in (0, 1], got %v", t.Stiffness)
	check(t.Iterations >= 1, "tapestry.iterations must be at least 1, got %d", t.Iterations)
	check(t.Dt > 0, "tapestry.dt must be positive, got %v", t.Dt)
	check(t.StepsPerTick >= 1, "tapestry.steps_per_tick must be at least 1, got %d", t.StepsPerTick)
	check(t.SettleSteps >= 0, "tapestry.settle_steps must not be negative, got %d", t.SettleSteps)
	check(t.PushOuter > t.PushInner && t.PushInner >= 0, "tapestry push radii need 0 <= inner < outer, got %v..%v", t.PushInner, t.PushOuter)

	check(c.Wind.Gust >= 0, "wind.gust must not be negative, got %v", c.Wind.Gust)
	check(c.Wind.Rate > 0, "wind.rate must be positive, got %v", c.Wind.Rate)

	return errors.Join(errs...)
}
