package renderer

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/df07/go-sphere-tracer/pkg/core"
	"github.com/df07/go-sphere-tracer/pkg/log"
)

// WorkerPool renders scanlines in parallel. Each row is rendered by
// exactly one worker and written straight into the frame buffer, so the
// workers never share mutable state.
type WorkerPool struct {
	raytracer  *Raytracer
	frame      *FrameBuffer
	numWorkers int

	progressMu sync.Mutex
	done       int
}

// Worker handles individual scanline tasks
type Worker struct {
	ID    int
	pool  *WorkerPool
	stats WorkerStats
}

// NewWorkerPool creates a worker pool with the specified number of workers
func NewWorkerPool(rt *Raytracer, fb *FrameBuffer, numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = DefaultNumWorkers()
	}
	// More workers than rows would only idle
	numWorkers = min(numWorkers, fb.Height)

	return &WorkerPool{
		raytracer:  rt,
		frame:      fb,
		numWorkers: numWorkers,
	}
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

// Run renders every row and blocks until all workers exit.
// It returns per-worker statistics and the first error, if any.
func (wp *WorkerPool) Run(ctx context.Context) ([]WorkerStats, error) {
	taskQueue := make(chan int, wp.frame.Height)
	for j := 0; j < wp.frame.Height; j++ {
		taskQueue <- j
	}
	close(taskQueue)

	workers := make([]*Worker, wp.numWorkers)
	g, ctx := errgroup.WithContext(ctx)
	for i := range workers {
		worker := &Worker{ID: i, pool: wp, stats: WorkerStats{ID: i}}
		workers[i] = worker
		g.Go(func() error {
			return worker.run(ctx, taskQueue)
		})
	}
	err := g.Wait()

	stats := make([]WorkerStats, len(workers))
	for i, w := range workers {
		stats[i] = w.stats
	}
	return stats, err
}

// run is the main worker loop
func (w *Worker) run(ctx context.Context, tasks <-chan int) error {
	rt := w.pool.raytracer
	start := time.Now()
	defer func() { w.stats.Duration = time.Since(start) }()

	for j := range tasks {
		if err := ctx.Err(); err != nil {
			return err
		}

		w.pool.frame.Rows[j] = rt.RenderRow(j, core.NewRowRandom(rt.config.Seed, j))
		w.stats.Rows++
		w.stats.Samples += rt.config.Width * rt.config.SamplesPerPixel
		w.pool.rowDone(j)
	}
	return nil
}

func (wp *WorkerPool) rowDone(row int) {
	wp.progressMu.Lock()
	defer wp.progressMu.Unlock()

	wp.done++
	if log.Enabled(log.Debug) {
		logger.Debugf("row %d done (%d/%d)", row, wp.done, wp.frame.Height)
	}
	if onRow := wp.raytracer.config.OnRow; onRow != nil {
		onRow(row, wp.done, wp.frame.Height)
	}
}
