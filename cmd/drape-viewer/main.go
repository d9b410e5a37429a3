// drape-viewer draws the shrine scene with ebiten
// The mouse is the viewer: move through the tapestry to push it, left click
// toggles a tile, S saves, L loads, Space pauses, Esc quits
package main

import (
	"context"
	"flag"
	"fmt"
	"image/color"
	"io"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/lixenwraith/drape/config"
	"github.com/lixenwraith/drape/curve"
	"github.com/lixenwraith/drape/persist"
	"github.com/lixenwraith/drape/physics"
	"github.com/lixenwraith/drape/scene"
	"github.com/lixenwraith/drape/terrain"
	"github.com/lixenwraith/drape/vmath"
)

const (
	screenWidth  = 960
	screenHeight = 640
	ropeSamples  = 64
)

var (
	configFlag = flag.String("config", "", "TOML tuning file (defaults when empty)")
	debugFlag  = flag.Bool("debug", false, "Log to stderr")
	sceneFlag  = flag.String("scene", "shrine", "Scene name for save/load")
	dataFlag   = flag.String("data", "scenes", "Directory for saved scenes")
)

var (
	colorTile  = color.RGBA{46, 40, 56, 255}
	colorRope  = color.RGBA{255, 28, 58, 255}
	colorLamp  = color.RGBA{255, 150, 40, 255}
	colorBead  = color.RGBA{230, 200, 120, 255}
	colorCloth = color.RGBA{120, 90, 200, 255}
)

type viewer struct {
	cfg    config.Config
	grid   *terrain.Grid
	scene  *scene.Scene
	store  *persist.Manager
	paused bool
	status string

	last    vmath.Vec2
	samples []vmath.Vec2
}

func main() {
	flag.Parse()
	if !*debugFlag {
		log.SetOutput(io.Discard)
	}

	cfg := config.Default()
	if *configFlag != "" {
		loaded, err := config.Load(*configFlag)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		cfg = loaded
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	v := newViewer(ctx, cfg)
	defer v.scene.Clear()

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("drape")
	ebiten.SetTPS(cfg.Simulation.TickRate)

	if err := ebiten.RunGame(v); err != nil {
		log.Printf("viewer: %v", err)
		os.Exit(1)
	}
}

func newViewer(ctx context.Context, cfg config.Config) *viewer {
	tw, th := screenWidth/int(physics.TileSize), screenHeight/int(physics.TileSize)
	g := terrain.NewGrid(tw, th)
	g.FillRect(0, 0, tw-1, 1, true)
	g.FillRect(0, th-2, tw-1, th-1, true)
	g.FillRect(tw/3, 2, tw/3, th-3, true)

	v := &viewer{
		cfg:   cfg,
		grid:  g,
		scene: scene.New(cfg, g),
		store: persist.NewManager(*dataFlag),
	}
	v.scene.OnDetach = func(owner any) { v.status = fmt.Sprintf("%T fell", owner) }

	if v.store.Exists(*sceneFlag) {
		v.load()
	} else {
		v.populate()
	}
	settled := v.scene.Enter(ctx)
	go func() {
		if err := <-settled; err != nil {
			log.Printf("settle: %v", err)
		}
	}()
	return v
}

func (v *viewer) populate() {
	tw, th := v.grid.Width(), v.grid.Height()
	for tx := 3; tx < tw/3-1; tx += 4 {
		anchor := terrain.TileOrigin(tx, 1).Add(vmath.V2(physics.TileSize/2, physics.TileSize-1))
		if _, err := v.scene.AddLantern(anchor, float64(80+tx*6), 1-2*(tx%2)); err != nil {
			log.Printf("lantern at %d: %v", tx, err)
		}
	}
	if _, err := v.scene.AddOrnament(terrain.TileCenter(tw/3+2, 1), terrain.TileCenter(tw-4, 1), 0.35); err != nil {
		log.Printf("ornament: %v", err)
	}
	if _, err := v.scene.AddPillar(terrain.TileCenter(tw/3, 4), terrain.TileCenter(tw/3, th-5), 5, 0.3, 11); err != nil {
		log.Printf("pillar: %v", err)
	}
	if _, err := v.scene.AddTapestry(tw*2/3, 1); err != nil {
		log.Printf("tapestry: %v", err)
	}
}

func (v *viewer) load() {
	doc, err := v.store.Load(*sceneFlag)
	if err != nil {
		v.status = "load failed"
		log.Printf("load: %v", err)
		return
	}
	if err := v.scene.Restore(doc); err != nil {
		log.Printf("restore: %v", err)
	}
	v.status = fmt.Sprintf("loaded %d objects", doc.Len())
}

// Update is called every tick by ebiten
func (v *viewer) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		v.paused = !v.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		if err := v.store.Save(*sceneFlag, v.scene.Snapshot()); err != nil {
			v.status = "save failed"
			log.Printf("save: %v", err)
		} else {
			v.status = "saved"
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyL) {
		v.load()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	mx, my := ebiten.CursorPosition()
	cursor := vmath.V2(float64(mx), float64(my))
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		tx, ty := terrain.WorldToTile(cursor)
		v.grid.SetSolid(tx, ty, !v.grid.IsSolid(tx, ty))
	}

	v.scene.SetViewer(cursor, cursor.Sub(v.last))
	v.last = cursor

	if !v.paused {
		v.scene.Tick()
	}
	return nil
}

func (v *viewer) strokeRope(screen *ebiten.Image, pts []vmath.Vec2) {
	v.samples = curve.AppendSample(v.samples[:0], pts, ropeSamples)
	for i := 1; i < len(v.samples); i++ {
		a, b := v.samples[i-1], v.samples[i]
		vector.StrokeLine(screen, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y), 2, colorRope, true)
	}
}

// Draw is called each frame by ebiten
func (v *viewer) Draw(screen *ebiten.Image) {
	for ty := range v.grid.Height() {
		for tx := range v.grid.Width() {
			if v.grid.IsSolid(tx, ty) {
				o := terrain.TileOrigin(tx, ty)
				vector.DrawFilledRect(screen, float32(o.X), float32(o.Y), physics.TileSize, physics.TileSize, colorTile, false)
			}
		}
	}

	for _, t := range v.scene.Tapestries() {
		c := t.Cloth()
		if c == nil {
			continue
		}
		for y := range c.Height() {
			row := c.Row(y)
			for i := 1; i < len(row); i++ {
				vector.StrokeLine(screen, float32(row[i-1].X), float32(row[i-1].Y), float32(row[i].X), float32(row[i].Y), 1, colorCloth, true)
			}
		}
		for x := range c.Width() {
			col := c.Column(x)
			for i := 1; i < len(col); i++ {
				vector.StrokeLine(screen, float32(col[i-1].X), float32(col[i-1].Y), float32(col[i].X), float32(col[i].Y), 1, colorCloth, true)
			}
		}
	}

	for _, l := range v.scene.Lanterns() {
		v.strokeRope(screen, l.Positions())
		lamp := l.Lamp()
		vector.DrawFilledCircle(screen, float32(lamp.X), float32(lamp.Y), 6, colorLamp, true)
	}
	for _, o := range v.scene.Ornaments() {
		v.strokeRope(screen, o.Positions())
		for _, d := range o.Decorations(5) {
			vector.DrawFilledCircle(screen, float32(d.Position.X), float32(d.Position.Y+8), 5, colorLamp, true)
		}
	}
	for _, p := range v.scene.Pillars() {
		v.strokeRope(screen, p.Positions())
		for _, b := range p.Beads() {
			vector.DrawFilledCircle(screen, float32(b.Position.X), float32(b.Position.Y), float32(2+b.Frame), colorBead, true)
		}
	}

	ebitenutil.DebugPrint(screen, fmt.Sprintf("TPS %.0f  ropes %d  wind %+.2f  %s",
		ebiten.ActualTPS(), v.scene.Ropes().Len(), v.scene.Wind().Scalar(), v.status))
}

// Layout returns the logical screen size
func (v *viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}
