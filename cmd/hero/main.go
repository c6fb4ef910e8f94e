// Command hero opens a window and runs the hero scene on the GPU.
//
// Move the pointer to steer the spotlight, scroll to flip the object, press F9 to
// simulate a lost render device and Esc to quit.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/Carmen-Shannon/oxy-hero/common"
	"github.com/Carmen-Shannon/oxy-hero/engine"
	"github.com/Carmen-Shannon/oxy-hero/engine/config"
	"github.com/Carmen-Shannon/oxy-hero/engine/hero"
	"github.com/Carmen-Shannon/oxy-hero/engine/loader"
	"github.com/Carmen-Shannon/oxy-hero/engine/renderer"
	"github.com/Carmen-Shannon/oxy-hero/engine/window"
)

func main() {
	var (
		configPath = flag.String("config", "", "JSON tunables file")
		meshPath   = flag.String("mesh", loader.PlaceholderPath, "mesh to display (.glb or .gltf)")
		width      = flag.Int("width", 1280, "window width")
		height     = flag.Int("height", 720, "window height")
		scroll     = flag.Float64("scroll-length", 2400, "scrollable extent in pixels")
		uncapped   = flag.Bool("uncapped", false, "present without vsync")
		software   = flag.Bool("software", false, "force the software GPU adapter")
		msaa       = flag.Bool("msaa", true, "4x multisampling")
		profile    = flag.Bool("profile", false, "log frame statistics at debug level")
		logLevel   = flag.String("log-level", "info", "debug, info, warn or error")
		logJSON    = flag.Bool("log-json", false, "log JSON records")
	)
	scratch := config.Default()
	scratch.RegisterFlags(flag.CommandLine)
	flag.Parse()

	logger, err := common.NewLogger(os.Stderr, *logLevel, *logJSON)
	if err != nil {
		log.Fatalf("hero: %v", err)
	}
	common.SetLogger(logger)

	cfg, err := config.Resolve(*configPath, flag.CommandLine, config.Changed(flag.CommandLine))
	if err != nil {
		log.Fatalf("hero: %v", err)
	}

	w, err := window.NewWindow(
		window.WithTitle("Hero"),
		window.WithSize(*width, *height),
	)
	if err != nil {
		log.Fatalf("hero: %v", err)
	}
	defer w.Close()

	rendererOpts := []renderer.RendererBuilderOption{
		renderer.WithForceSoftwareRenderer(*software),
	}
	if *uncapped {
		rendererOpts = append(rendererOpts, renderer.WithPresentMode(renderer.PresentModeUncapped))
	}
	if !*msaa {
		rendererOpts = append(rendererOpts, renderer.WithMSAA(renderer.MSAAOff))
	}

	eng := engine.NewEngine(
		engine.WithWindow(w),
		engine.WithProfiling(*profile),
		engine.WithRenderFrameLimit(cfg.TargetFPS),
		engine.WithScrollLength(*scroll),
		engine.WithStageOptions(
			hero.WithConfig(cfg),
			hero.WithMeshPath(*meshPath),
		),
		engine.WithRendererFactory(func() (renderer.Renderer, error) {
			return renderer.NewRenderer(renderer.BackendTypeWGPU, w, rendererOpts...)
		}),
	)

	log.Printf("hero: %dx%d, mesh %s, %.0f fps cap", w.Width(), w.Height(), *meshPath, cfg.TargetFPS)
	if err := eng.Run(); err != nil {
		log.Fatalf("hero: %v", err)
	}
	log.Printf("hero: exited after %d reloads", eng.Remounts())
}
