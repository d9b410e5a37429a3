// drape-sandbox renders a small shrine of ropes and a tapestry in the terminal
// Arrows/hjkl move the viewer through the scene, x breaks the tile under the
// viewer, s saves, r reloads, q or Esc quits
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/debug"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/drape/config"
	"github.com/lixenwraith/drape/persist"
	"github.com/lixenwraith/drape/scene"
	"github.com/lixenwraith/drape/terrain"
	"github.com/lixenwraith/drape/vmath"
)

var (
	configFlag = flag.String("config", "", "TOML tuning file (defaults when empty)")
	debugFlag  = flag.Bool("debug", false, "Write logs to drape.log under logging.dir")
	sceneFlag  = flag.String("scene", "shrine", "Scene name for save/load")
	dataFlag   = flag.String("data", "scenes", "Directory for saved scenes")
	dumpFlag   = flag.Bool("dump-config", false, "Print the default config and exit")
)

// Viewer step per key press in world units
const viewerStep = 8.0

type sandbox struct {
	screen tcell.Screen
	cfg    config.Config
	grid   *terrain.Grid
	scene  *scene.Scene
	store  *persist.Manager
	audio  *cue

	ctx    context.Context
	cancel context.CancelFunc

	viewer   vmath.Vec2
	lastPos  vmath.Vec2
	status   string
	settling <-chan error
}

func main() {
	flag.Parse()

	if *dumpFlag {
		if err := config.Write(os.Stdout, config.Default()); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
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

	logFile := setupLogging(*debugFlag || cfg.Logging.Debug, cfg.Logging.Dir)
	if logFile != nil {
		defer logFile.Close()
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize screen: %v\n", err)
		os.Exit(1)
	}

	defer func() {
		if r := recover(); r != nil {
			screen.Fini()
			fmt.Fprintf(os.Stderr, "\nDRAPE-SANDBOX CRASHED: %v\nStack Trace:\n%s\n", r, debug.Stack())
			os.Exit(1)
		}
	}()

	sb := newSandbox(screen, cfg)
	defer sb.close()
	sb.run()
}

func newSandbox(screen tcell.Screen, cfg config.Config) *sandbox {
	ctx, cancel := context.WithCancel(context.Background())
	sb := &sandbox{
		screen: screen,
		cfg:    cfg,
		store:  persist.NewManager(*dataFlag),
		audio:  newCue(),
		ctx:    ctx,
		cancel: cancel,
	}

	w, h := screen.Size()
	sb.grid = buildTerrain(w, h)
	sb.scene = scene.New(cfg, sb.grid)
	sb.scene.OnBrush = func(*scene.Tapestry) { sb.audio.brush() }
	sb.scene.OnDetach = func(owner any) {
		log.Printf("rope detached: %T", owner)
		sb.status = "a rope fell"
	}

	sb.viewer = vmath.V2(float64(w)*cellWidth*0.5, float64(h)*cellHeight*0.6)
	sb.lastPos = sb.viewer
	sb.scene.SetViewer(sb.viewer, vmath.Vec2{})

	if sb.store.Exists(*sceneFlag) {
		sb.load()
	} else {
		populate(sb.scene, sb.grid)
		sb.status = "new scene, settling tapestries"
	}
	sb.settling = sb.scene.Enter(ctx)
	return sb
}

func (sb *sandbox) close() {
	sb.cancel()
	sb.scene.Clear()
	sb.audio.close()
	sb.screen.Fini()
}

func (sb *sandbox) save() {
	if err := sb.store.Save(*sceneFlag, sb.scene.Snapshot()); err != nil {
		log.Printf("save failed: %v", err)
		sb.status = "save failed"
		return
	}
	sb.status = "saved " + sb.store.FilePath(*sceneFlag)
}

func (sb *sandbox) load() {
	doc, err := sb.store.Load(*sceneFlag)
	if err != nil {
		log.Printf("load failed: %v", err)
		sb.status = "load failed"
		return
	}
	if err := sb.scene.Restore(doc); err != nil {
		log.Printf("restore: %v", err)
	}
	sb.status = fmt.Sprintf("loaded %d objects", doc.Len())
}

func (sb *sandbox) run() {
	tick := time.Second / time.Duration(sb.cfg.Simulation.TickRate)
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := sb.screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	for {
		select {
		case ev := <-events:
			if !sb.handleInput(ev) {
				return
			}

		case err, ok := <-sb.settling:
			if ok {
				if err != nil {
					sb.status = "settle failed: " + err.Error()
				} else {
					sb.status = "tapestries settled"
				}
			}
			sb.settling = nil

		case <-ticker.C:
			sb.scene.SetViewer(sb.viewer, sb.viewer.Sub(sb.lastPos))
			sb.lastPos = sb.viewer
			sb.scene.Tick()
			sb.draw()
		}
	}
}

func (sb *sandbox) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyLeft:
			sb.move(-viewerStep, 0)
		case tcell.KeyRight:
			sb.move(viewerStep, 0)
		case tcell.KeyUp:
			sb.move(0, -viewerStep)
		case tcell.KeyDown:
			sb.move(0, viewerStep)
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case 'h':
				sb.move(-viewerStep, 0)
			case 'l':
				sb.move(viewerStep, 0)
			case 'k':
				sb.move(0, -viewerStep)
			case 'j':
				sb.move(0, viewerStep)
			case 'x':
				tx, ty := terrain.WorldToTile(sb.viewer)
				sb.grid.SetSolid(tx, ty, !sb.grid.IsSolid(tx, ty))
			case 's':
				sb.save()
			case 'r':
				sb.load()
			}
		}

	case *tcell.EventResize:
		sb.screen.Sync()
	}
	return true
}

func (sb *sandbox) move(dx, dy float64) {
	sb.viewer = sb.viewer.Add(vmath.V2(dx, dy))
}
