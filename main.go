package main

import (
	"flag"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/sirupsen/logrus"
)

func main() {
	debug := flag.Bool("debug", false, "enable debug logging and the debug overlay")
	sceneName := flag.String("scene", "sandbox", "scene name in prefabs/scenes (basename, .yaml optional)")
	watch := flag.Bool("watch", true, "reload the scene when prefab files change on disk")
	baseMonitor := flag.Bool("m", false, "use base monitor instead of primary (for multi-monitor setups)")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if *debug {
		log.SetLevel(logrus.DebugLevel)
	}

	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: dsn, AttachStacktrace: true}); err != nil {
			log.WithError(err).Warn("sentry disabled")
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	if os.Getenv("PPROF_ENABLED") != "" {
		// set configurations before calling `statsview.New()` method
		viewer.SetConfiguration(viewer.WithTheme(viewer.ThemeWesteros), viewer.WithAddr("localhost:8080"))

		mgr := statsview.New()
		go mgr.Start()
		defer mgr.Stop()
	}

	if *baseMonitor {
		ebiten.SetMonitor(ebiten.AppendMonitors(nil)[0])
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("fpcontroller")

	game, err := NewGame(GameOptions{
		Scene: *sceneName,
		Debug: *debug,
		Watch: *watch,
		Log:   log,
	})
	if err != nil {
		log.WithError(err).Fatal("failed to start")
	}
	defer game.Close()

	// Capture the cursor so mouse motion turns the view instead of leaving the window.
	ebiten.SetCursorMode(ebiten.CursorModeCaptured)

	if err := ebiten.RunGame(game); err != nil {
		log.WithError(err).Fatal("game stopped")
	}
}
