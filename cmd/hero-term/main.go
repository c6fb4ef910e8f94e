// Command hero-term runs the hero scene in a terminal, drawn with half-block cells.
//
// Move the mouse to steer the spotlight and scroll the wheel (or j/k) to flip the
// object. l holds the render device lost, r lets it come back, q quits.
package main

import (
	"flag"
	"io"
	"log"
	"os"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-hero/common"
	"github.com/Carmen-Shannon/oxy-hero/engine"
	"github.com/Carmen-Shannon/oxy-hero/engine/config"
	"github.com/Carmen-Shannon/oxy-hero/engine/hero"
	"github.com/Carmen-Shannon/oxy-hero/engine/loader"
	"github.com/Carmen-Shannon/oxy-hero/engine/renderer"
	"github.com/gdamore/tcell/v2"
)

// maxTerminalFPS caps redraws; terminals cannot keep up with a full-screen repaint at display rate.
const maxTerminalFPS = 30

func main() {
	var (
		configPath  = flag.String("config", "", "JSON tunables file")
		meshPath    = flag.String("mesh", loader.PlaceholderPath, "mesh to display (.glb or .gltf)")
		scrollLen   = flag.Float64("scroll-length", 400, "scrollable extent in wheel units")
		scrollStep  = flag.Float64("scroll-step", 10, "scroll per wheel notch")
		supersample = flag.Int("supersample", 2, "raster supersampling factor")
		logFile     = flag.String("log-file", "", "write logs to this file (the terminal is in use)")
		logLevel    = flag.String("log-level", "info", "debug, info, warn or error")
		logJSON     = flag.Bool("log-json", false, "log JSON records")
	)
	scratch := config.Default()
	scratch.RegisterFlags(flag.CommandLine)
	flag.Parse()

	var logOut io.Writer = io.Discard
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatalf("hero-term: %v", err)
		}
		defer f.Close()
		logOut = f
	}
	logger, err := common.NewLogger(logOut, *logLevel, *logJSON)
	if err != nil {
		log.Fatalf("hero-term: %v", err)
	}
	common.SetLogger(logger)

	cfg, err := config.Resolve(*configPath, flag.CommandLine, config.Changed(flag.CommandLine))
	if err != nil {
		log.Fatalf("hero-term: %v", err)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatalf("hero-term: %v", err)
	}
	if err := screen.Init(); err != nil {
		log.Fatalf("hero-term: %v", err)
	}
	screen.EnableMouse()
	screen.EnableFocus()
	screen.HideCursor()

	if err := run(screen, cfg, *meshPath, *scrollLen, *scrollStep, *supersample); err != nil {
		screen.Fini()
		log.Fatalf("hero-term: %v", err)
	}
	screen.Fini()
}

// run drives the engine headless, with a terminal renderer per mount, until the user quits.
func run(screen tcell.Screen, cfg config.Tunables, meshPath string, scrollLen, scrollStep float64, supersample int) error {
	held := &atomic.Bool{}
	eng := engine.NewEngine(
		engine.WithRenderFrameLimit(min(cfg.TargetFPS, maxTerminalFPS)),
		engine.WithScrollLength(scrollLen),
		engine.WithScrollStep(scrollStep),
		engine.WithStageOptions(
			hero.WithConfig(cfg),
			hero.WithMeshPath(meshPath),
		),
		engine.WithRendererFactory(func() (renderer.Renderer, error) {
			if held.Load() {
				return nil, errTermHeld
			}
			return newTermRenderer(screen, held, supersample), nil
		}),
	)

	h := &host{
		screen:       screen,
		input:        eng.Input(),
		ctl:          eng,
		held:         held,
		scrollStep:   scrollStep,
		scrollLength: scrollLen,
	}
	h.syncViewport()
	eng.SetFrameCallback(h.drawHUD)

	done := make(chan error, 1)
	go func() { done <- eng.Run() }()

	events := make(chan tcell.Event, 64)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	for {
		select {
		case err := <-done:
			return err
		case ev, ok := <-events:
			if !ok {
				eng.Quit()
				return <-done
			}
			if !h.handleEvent(ev) {
				return <-done
			}
		}
	}
}
