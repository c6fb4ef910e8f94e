package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-hero/common"
	"github.com/Carmen-Shannon/oxy-hero/engine/config"
	"github.com/Carmen-Shannon/oxy-hero/engine/hero"
	"github.com/Carmen-Shannon/oxy-hero/engine/input"
	"github.com/Carmen-Shannon/oxy-hero/engine/loader"
	"github.com/Carmen-Shannon/oxy-hero/engine/preview"
)

// renderOptions configure one offline render.
type renderOptions struct {
	cfg         config.Tunables
	meshPath    string
	outDir      string
	width       int
	height      int
	supersample int
	toneMapping bool
	every       int
	workers     int
	script      script
}

// renderSequence mounts a fresh stage, drives it through the script at a fixed time step
// and writes every nth frame to outDir as frame_NNNN.webp. Rasterising and encoding run
// on a worker pool; the stage itself only ever ticks on the calling goroutine.
//
// Parameters:
//   - ctx: cancels the render between frames
//   - l: the mesh loader
//   - o: render options
//
// Returns:
//   - int: number of files written
//   - error: a mount or output directory error, cancellation, or the joined per-frame errors
func renderSequence(ctx context.Context, l loader.Loader, o renderOptions) (int, error) {
	if err := os.MkdirAll(o.outDir, 0o755); err != nil {
		return 0, fmt.Errorf("output directory: %w", err)
	}
	// A warm cache hands the mesh to the first tick.
	if o.meshPath != "" {
		if _, err := l.Load(o.meshPath); err != nil {
			common.Logger().Warn("rendering without a mesh", "path", o.meshPath, "error", err)
		}
	}

	state := input.NewState()
	state.SetViewport(float64(o.width), float64(o.height))
	st := hero.NewStage(
		hero.WithConfig(o.cfg),
		hero.WithInput(state),
		hero.WithLoader(l),
		hero.WithMeshPath(o.meshPath),
	)
	if err := st.Mount(); err != nil {
		return 0, err
	}
	defer st.Unmount()

	raster := preview.NewRasterizer(
		preview.WithSize(o.width, o.height),
		preview.WithSupersample(o.supersample),
		preview.WithToneMapping(o.toneMapping),
	)
	pool := worker.NewDynamicWorkerPool(o.workers, o.workers*2, time.Second)
	defer pool.Stop()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		errs    []error
		written int
	)
	every := max(o.every, 1)
	for i := range o.script.frames {
		if err := ctx.Err(); err != nil {
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
			break
		}
		o.script.apply(state, i)
		frame := st.Tick(o.script.dt)
		if i%every != 0 {
			continue
		}

		path := filepath.Join(o.outDir, fmt.Sprintf("frame_%04d.webp", i))
		wg.Add(1)
		pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				img, err := raster.Render(frame)
				if err == nil {
					err = preview.WriteWebP(path, img)
				}
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					errs = append(errs, fmt.Errorf("frame %d: %w", i, err))
					return nil, err
				}
				written++
				return path, nil
			},
		})
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	return written, errors.Join(errs...)
}
