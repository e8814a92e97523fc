package renderer

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/df07/go-sphere-tracer/pkg/core"
	"github.com/df07/go-sphere-tracer/pkg/geometry"
	"github.com/df07/go-sphere-tracer/pkg/integrator"
	"github.com/df07/go-sphere-tracer/pkg/log"
	"github.com/df07/go-sphere-tracer/pkg/material"
)

var logger = log.New("renderer")

// Raytracer renders a world through a camera into a frame buffer.
// The world, camera and integrator are shared read-only by all workers.
type Raytracer struct {
	world      geometry.Shape
	camera     *geometry.Camera
	integrator integrator.Integrator
	config     Config
}

// NewRaytracer creates a raytracer that shades with a path tracer over materials
func NewRaytracer(world geometry.Shape, camera *geometry.Camera, materials *material.Table, config Config) (*Raytracer, error) {
	return NewRaytracerWithIntegrator(world, camera, integrator.NewPathTracer(materials, config.MaxDepth), config)
}

// NewRaytracerWithIntegrator creates a raytracer with a custom integrator
func NewRaytracerWithIntegrator(world geometry.Shape, camera *geometry.Camera, integ integrator.Integrator, config Config) (*Raytracer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.NumWorkers == 0 {
		config.NumWorkers = DefaultNumWorkers()
	}
	return &Raytracer{
		world:      world,
		camera:     camera,
		integrator: integ,
		config:     config,
	}, nil
}

// Config returns the effective configuration
func (rt *Raytracer) Config() Config {
	return rt.config
}

// Render renders every scanline on the worker pool.
// Cancelling ctx stops the render between rows and returns the context error.
func (rt *Raytracer) Render(ctx context.Context) (*FrameBuffer, RenderStats, error) {
	start := time.Now()
	fb := NewFrameBuffer(rt.config.Width, rt.config.Height)

	pool := NewWorkerPool(rt, fb, rt.config.NumWorkers)
	workers, err := pool.Run(ctx)

	stats := RenderStats{
		Width:    rt.config.Width,
		Height:   rt.config.Height,
		Duration: time.Since(start),
		Workers:  workers,
	}
	for _, w := range workers {
		stats.Rows += w.Rows
		stats.Samples += w.Samples
	}

	if err != nil {
		return nil, stats, fmt.Errorf("render aborted after %d of %d rows: %w", stats.Rows, rt.config.Height, err)
	}

	logger.Infof("rendered %dx%d at %d spp with %d workers in %s",
		rt.config.Width, rt.config.Height, rt.config.SamplesPerPixel, pool.GetNumWorkers(), stats.Duration)
	return fb, stats, nil
}

// RenderSequential renders every scanline on the calling goroutine.
// It produces exactly the same pixels as Render for the same seed.
func (rt *Raytracer) RenderSequential() (*FrameBuffer, RenderStats) {
	start := time.Now()
	fb := NewFrameBuffer(rt.config.Width, rt.config.Height)
	worker := WorkerStats{ID: 0}

	for j := 0; j < rt.config.Height; j++ {
		fb.Rows[j] = rt.RenderRow(j, core.NewRowRandom(rt.config.Seed, j))
		worker.Rows++
		worker.Samples += rt.config.Width * rt.config.SamplesPerPixel
		if rt.config.OnRow != nil {
			rt.config.OnRow(j, j+1, rt.config.Height)
		}
	}
	worker.Duration = time.Since(start)

	return fb, RenderStats{
		Width:    rt.config.Width,
		Height:   rt.config.Height,
		Rows:     worker.Rows,
		Samples:  worker.Samples,
		Duration: worker.Duration,
		Workers:  []WorkerStats{worker},
	}
}

// RenderRow renders scanline j (0 is the top of the image) using random
func (rt *Raytracer) RenderRow(j int, random *rand.Rand) []Pixel {
	width, height := rt.config.Width, rt.config.Height
	uDivisor := float64(max(width-1, 1))
	vDivisor := float64(max(height-1, 1))

	row := make([]Pixel, width)
	for i := 0; i < width; i++ {
		var sum core.Vec3
		for s := 0; s < rt.config.SamplesPerPixel; s++ {
			u := (float64(i) + random.Float64()) / uDivisor
			v := (float64(height-1-j) + random.Float64()) / vDivisor
			ray := rt.camera.GetRay(u, v, random)
			sum = sum.Add(rt.integrator.RayColor(ray, rt.world, random))
		}
		row[i] = toPixel(sum, rt.config.SamplesPerPixel)
	}
	return row
}

// Render is a convenience wrapper that builds a path-tracing Raytracer and renders it
func Render(ctx context.Context, world geometry.Shape, camera *geometry.Camera, materials *material.Table, config Config) (*FrameBuffer, RenderStats, error) {
	rt, err := NewRaytracer(world, camera, materials, config)
	if err != nil {
		return nil, RenderStats{}, err
	}
	return rt.Render(ctx)
}
