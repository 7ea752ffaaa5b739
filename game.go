package main

import (
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/fpcontroller/prefabs"
	"github.com/sirupsen/logrus"
	"golang.design/x/clipboard"
	"gopkg.in/yaml.v3"
)

const (
	baseWidth  = 1280
	baseHeight = 720
)

// watchDirs are the prefab folders watched for edits when running from a
// checkout.
var watchDirs = []string{"prefabs", "prefabs/scenes", "prefabs/scripts"}

type GameOptions struct {
	Scene string
	Debug bool
	Watch bool
	Log   *logrus.Logger
}

type Game struct {
	log     *logrus.Logger
	session *session
	input   *ebitenInput
	hud     *HUD
	watcher *prefabs.Watcher

	debug     bool
	clipboard bool
}

func NewGame(opts GameOptions) (*Game, error) {
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	input := newEbitenInput()
	s, err := newSession(opts.Scene, input, log.WithField("scene", opts.Scene))
	if err != nil {
		return nil, fmt.Errorf("load scene %q: %w", opts.Scene, err)
	}

	g := &Game{
		log:     log,
		session: s,
		input:   input,
		hud:     NewHUD(),
		debug:   opts.Debug,
	}

	if opts.Watch {
		g.watcher = startWatcher(log)
	}

	if err := clipboard.Init(); err != nil {
		log.WithError(err).Warn("clipboard unavailable, pose snapshots are logged only")
	} else {
		g.clipboard = true
	}

	return g, nil
}

func startWatcher(log *logrus.Logger) *prefabs.Watcher {
	var dirs []string
	for _, dir := range watchDirs {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			dirs = append(dirs, dir)
		}
	}
	if len(dirs) == 0 {
		log.Debug("no prefab folders on disk, hot reload disabled")
		return nil
	}
	w, err := prefabs.NewWatcher(dirs...)
	if err != nil {
		log.WithError(err).Warn("hot reload disabled")
		return nil
	}
	log.WithField("dirs", dirs).Info("watching prefabs")
	return w
}

func (g *Game) Close() {
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
}

func (g *Game) Update() error {
	guardTick(g.log, g.session.sceneName, g.tick)
	return nil
}

func (g *Game) tick() {
	g.drainWatcher()

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		captured := ebiten.CursorMode() != ebiten.CursorModeCaptured
		if captured {
			ebiten.SetCursorMode(ebiten.CursorModeCaptured)
		} else {
			ebiten.SetCursorMode(ebiten.CursorModeVisible)
		}
		g.input.SetCaptured(captured)
	}

	g.session.step(float32(1 / float64(ebiten.TPS())))

	if in, _, _, ok := g.session.playerComponents(); ok {
		if in.DebugPressed {
			g.debug = !g.debug
		}
		if in.SnapshotPressed {
			g.snapshot()
		}
	}

	g.hud.Update(g.session.world, g.session.player)
}

func (g *Game) drainWatcher() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case path, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			g.session.fileChanged(path)
		case err, ok := <-g.watcher.Errors:
			if !ok {
				g.watcher = nil
				return
			}
			g.log.WithError(err).Warn("prefab watcher error")
		default:
			return
		}
	}
}

// snapshot copies the player pose as a spawn block to the clipboard.
func (g *Game) snapshot() {
	pose, ok := g.session.pose()
	if !ok {
		return
	}
	data, err := yaml.Marshal(struct {
		Spawn prefabs.SpawnSpec `yaml:"spawn"`
	}{Spawn: pose})
	if err != nil {
		g.log.WithError(err).Error("pose snapshot failed")
		return
	}
	if g.clipboard {
		clipboard.Write(clipboard.FmtText, data)
	}
	g.log.WithField("pose", string(data)).Info("pose snapshot")
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(skyColor)
	g.hud.Draw(screen, g.session.world, g.session.player, g.debug)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return baseWidth, baseHeight
}
