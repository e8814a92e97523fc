package renderer

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/df07/go-sphere-tracer/pkg/core"
	"github.com/df07/go-sphere-tracer/pkg/geometry"
	"github.com/df07/go-sphere-tracer/pkg/material"
)

// createTestScene builds a ground sphere, a glass sphere and a metal sphere
// viewed by a pinhole camera at the origin.
func createTestScene(t *testing.T, aspect float64) (geometry.Shape, *geometry.Camera, *material.Table) {
	t.Helper()

	materials := material.NewTable()
	ground := materials.MustAdd(material.NewLambertian(core.NewVec3(0.8, 0.8, 0.0)))
	glass := materials.MustAdd(material.NewDielectric(1.5))
	metal := materials.MustAdd(material.NewMetal(core.NewVec3(0.8, 0.6, 0.2), 0.1))

	world, err := geometry.NewBVH([]geometry.Shape{
		geometry.NewSphere(core.NewVec3(0, -100.5, -1), 100, ground),
		geometry.NewSphere(core.NewVec3(-1, 0, -1), 0.5, glass),
		geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, glass),
		geometry.NewSphere(core.NewVec3(1, 0, -1), 0.5, metal),
	})
	if err != nil {
		t.Fatalf("Failed to build BVH: %v", err)
	}

	camera, err := geometry.NewCamera(geometry.CameraConfig{
		Center:      core.NewVec3(0, 0, 0),
		LookAt:      core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        90,
		AspectRatio: aspect,
	})
	if err != nil {
		t.Fatalf("Failed to build camera: %v", err)
	}

	return world, camera, materials
}

func framesEqual(a, b *FrameBuffer) bool {
	if a.Width != b.Width || a.Height != b.Height {
		return false
	}
	for j := range a.Rows {
		for i := range a.Rows[j] {
			if a.Rows[j][i] != b.Rows[j][i] {
				return false
			}
		}
	}
	return true
}

func TestRender_DeterministicAcrossWorkerCounts(t *testing.T) {
	world, camera, materials := createTestScene(t, 2.0)
	config := Config{Width: 24, Height: 12, SamplesPerPixel: 4, MaxDepth: 10, Seed: 7}

	config.NumWorkers = 1
	rt, err := NewRaytracer(world, camera, materials, config)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	sequential, _ := rt.RenderSequential()

	for _, workers := range []int{1, 3, 8} {
		config.NumWorkers = workers
		fb, stats, err := Render(context.Background(), world, camera, materials, config)
		if err != nil {
			t.Fatalf("workers=%d: unexpected error: %v", workers, err)
		}
		if !framesEqual(fb, sequential) {
			t.Errorf("workers=%d: parallel render differs from sequential render", workers)
		}
		if stats.Rows != config.Height {
			t.Errorf("workers=%d: expected %d rows, got %d", workers, config.Height, stats.Rows)
		}
		if stats.Samples != config.Width*config.Height*config.SamplesPerPixel {
			t.Errorf("workers=%d: expected %d samples, got %d", workers,
				config.Width*config.Height*config.SamplesPerPixel, stats.Samples)
		}
	}

	// A different seed changes the image
	config.Seed = 8
	other, _, err := Render(context.Background(), world, camera, materials, config)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if framesEqual(other, sequential) {
		t.Error("Expected a different seed to produce a different image")
	}
}

func TestRender_SilhouetteAndGradient(t *testing.T) {
	// One diffuse sphere straight ahead, resting on a ground sphere
	materials := material.NewTable()
	diffuse := materials.MustAdd(material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5)))
	world := geometry.NewList(
		geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, diffuse),
		geometry.NewSphere(core.NewVec3(0, -100.5, -1), 100, diffuse),
	)
	camera, err := geometry.NewCamera(geometry.CameraConfig{
		LookAt:      core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        90,
		AspectRatio: 2.0,
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	config := Config{Width: 40, Height: 20, SamplesPerPixel: 16, MaxDepth: 10, NumWorkers: 4, Seed: 1}
	fb, _, err := Render(context.Background(), world, camera, materials, config)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// Every sky sample has a blue channel of exactly 1. Anything that hits a
	// surface with albedo 0.5 stays at or below gamma(0.5).
	isSky := func(i, j int) bool { return fb.At(i, j).B == 255 }
	isSurface := func(i, j int) bool { return fb.At(i, j).B <= 181 }

	// The sphere spans radius ~0.58 around the image center on the z=-1
	// plane, so the center cross is covered entirely
	for i := 16; i <= 22; i++ {
		if !isSurface(i, 10) {
			t.Errorf("Expected sphere at (%d, 10), got %v", i, fb.At(i, 10))
		}
	}
	for j := 7; j <= 13; j++ {
		if !isSurface(19, j) {
			t.Errorf("Expected sphere at (19, %d), got %v", j, fb.At(19, j))
		}
	}

	// Above the horizon and beyond the silhouette only sky remains
	for j := 0; j <= 3; j++ {
		if !isSky(19, j) {
			t.Errorf("Expected sky above the sphere at (19, %d), got %v", j, fb.At(19, j))
		}
	}
	for i := 0; i < fb.Width; i++ {
		if (i <= 11 || i >= 28) && !isSky(i, 9) {
			t.Errorf("Expected sky beside the sphere at (%d, 9), got %v", i, fb.At(i, 9))
		}
	}

	// Row 9 is above the horizon, so its surface pixels are the sphere alone
	left, right := -1, -1
	for i := 0; i < fb.Width; i++ {
		if !isSky(i, 9) {
			if left < 0 {
				left = i
			}
			right = i
		}
	}
	if left < 0 {
		t.Fatal("Expected the sphere to cross row 9")
	}
	if mid := float64(left+right) / 2; math.Abs(mid-float64(fb.Width-1)/2) > 1 {
		t.Errorf("Expected the silhouette centered, spans columns %d..%d", left, right)
	}

	// The top row is sky and the bottom row is ground, so the top is much
	// closer to the light blue horizon color
	lightBlue := core.NewVec3(181, 214, 255)
	distance := func(p Pixel) float64 {
		return core.NewVec3(float64(p.R), float64(p.G), float64(p.B)).Subtract(lightBlue).Length()
	}
	for i := 0; i < fb.Width; i += 13 {
		top, bottom := fb.At(i, 0), fb.At(i, fb.Height-1)
		if distance(top) >= distance(bottom) {
			t.Errorf("Expected top %v closer to light blue than bottom %v in column %d", top, bottom, i)
		}
	}
}

func TestRender_EmptyWorldIsGradient(t *testing.T) {
	camera, err := geometry.NewCamera(geometry.CameraConfig{
		LookAt:      core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        90,
		AspectRatio: 1.0,
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	config := Config{Width: 8, Height: 8, SamplesPerPixel: 2, MaxDepth: 5, NumWorkers: 2, Seed: 3}
	fb, _, err := Render(context.Background(), geometry.NewList(), camera, material.NewTable(), config)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// Red falls monotonically from the bottom row to the top row
	for j := 1; j < fb.Height; j++ {
		if fb.At(4, j-1).R > fb.At(4, j).R {
			t.Errorf("Row %d is redder than row %d: %v vs %v", j-1, j, fb.At(4, j-1), fb.At(4, j))
		}
	}
}

func TestRender_VarianceDecreasesWithSamples(t *testing.T) {
	world, camera, materials := createTestScene(t, 1.0)

	// Variance of a single-pixel image across seeds
	variance := func(spp int) float64 {
		var sum, sumSq float64
		const seeds = 30
		for seed := int64(1); seed <= seeds; seed++ {
			rt, err := NewRaytracer(world, camera, materials,
				Config{Width: 1, Height: 1, SamplesPerPixel: spp, MaxDepth: 10, NumWorkers: 1, Seed: seed})
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			fb, _ := rt.RenderSequential()
			p := fb.At(0, 0)
			v := float64(p.R) + float64(p.G) + float64(p.B)
			sum += v
			sumSq += v * v
		}
		mean := sum / seeds
		return sumSq/seeds - mean*mean
	}

	low := variance(1)
	high := variance(64)
	if !(high < low) {
		t.Errorf("Expected variance to fall with more samples: spp=1 %.2f, spp=64 %.2f", low, high)
	}
}

func TestRender_CancelledContext(t *testing.T) {
	world, camera, materials := createTestScene(t, 2.0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := Render(ctx, world, camera, materials,
		Config{Width: 16, Height: 8, SamplesPerPixel: 1, MaxDepth: 5, NumWorkers: 2, Seed: 1})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestRender_OnRowProgress(t *testing.T) {
	world, camera, materials := createTestScene(t, 2.0)

	calls := 0
	lastDone := 0
	seen := make(map[int]bool)
	config := Config{
		Width: 8, Height: 6, SamplesPerPixel: 1, MaxDepth: 5, NumWorkers: 3, Seed: 1,
		OnRow: func(row, done, total int) {
			calls++
			seen[row] = true
			if done != lastDone+1 || total != 6 {
				t.Errorf("Unexpected progress done=%d total=%d after %d", done, total, lastDone)
			}
			lastDone = done
		},
	}

	if _, _, err := Render(context.Background(), world, camera, materials, config); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if calls != 6 || len(seen) != 6 {
		t.Errorf("Expected one callback per row, got %d calls over %d rows", calls, len(seen))
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{"zero width", Config{Width: 0, Height: 10, SamplesPerPixel: 1}},
		{"negative height", Config{Width: 10, Height: -1, SamplesPerPixel: 1}},
		{"zero samples", Config{Width: 10, Height: 10}},
		{"zero depth", Config{Width: 10, Height: 10, SamplesPerPixel: 1}},
		{"negative depth", Config{Width: 10, Height: 10, SamplesPerPixel: 1, MaxDepth: -1}},
		{"negative workers", Config{Width: 10, Height: 10, SamplesPerPixel: 1, MaxDepth: 1, NumWorkers: -2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.config.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
		})
	}

	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("Expected default config to be valid, got %v", err)
	}
}

func TestConfig_Merge(t *testing.T) {
	merged := DefaultConfig().Merge(Config{Width: 64, Seed: 9})
	if merged.Width != 64 || merged.Seed != 9 {
		t.Errorf("Expected overrides to apply, got %+v", merged)
	}
	if merged.Height != DefaultConfig().Height || merged.MaxDepth != DefaultConfig().MaxDepth {
		t.Errorf("Expected zero fields to keep defaults, got %+v", merged)
	}
}

func TestQuantize(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected uint8
	}{
		{"black", 0, 0},
		{"negative", -1, 0},
		{"NaN", math.NaN(), 0},
		{"half", 0.5, 128},
		{"white", 1, 255},
		{"overexposed", 2, 255},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := quantize(tt.input); got != tt.expected {
				t.Errorf("Expected %d, got %d", tt.expected, got)
			}
		})
	}

	// Averaging divides by the sample count before the square-root gamma
	if p := toPixel(core.NewVec3(1, 2, 4), 4); p != (Pixel{R: 128, G: 181, B: 255}) {
		t.Errorf("Expected {128 181 255}, got %v", p)
	}
}
