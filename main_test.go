package main

import (
	"bytes"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/go-sphere-tracer/pkg/scene"
)

func TestCreateScene(t *testing.T) {
	tests := []struct {
		name        string
		sceneType   string
		seed        int64
		expectError bool
	}{
		{"default scene", "default", 0, false},
		{"glass scene", "glass", 0, false},
		{"simple scene", "simple", 0, false},
		{"spheregrid scene", "spheregrid", 0, false},
		{"random spheres", "random-spheres", 0, false},
		{"random spheres reseeded", "random-spheres", 99, false},

		{"unknown scene", "nonexistent", 0, true},
		{"missing glTF path", "scenes/nonexistent.gltf", 0, true},
		{"empty scene name", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc, err := createScene(tt.sceneType, tt.seed)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error for scene type '%s', but got none", tt.sceneType)
				}
				if sc != nil {
					t.Errorf("Expected nil scene for invalid scene type '%s'", tt.sceneType)
				}
				return
			}

			if err != nil {
				t.Fatalf("Unexpected error for scene type '%s': %v", tt.sceneType, err)
			}
			if len(sc.Shapes) == 0 {
				t.Errorf("Scene '%s' has no shapes", tt.sceneType)
			}
			if err := sc.Config.Validate(); err != nil {
				t.Errorf("Scene '%s' config invalid: %v", tt.sceneType, err)
			}
		})
	}
}

func TestCreateSceneUnknownIsSentinel(t *testing.T) {
	if _, err := createScene("cornell", 0); !errors.Is(err, scene.ErrUnknownScene) {
		t.Errorf("expected ErrUnknownScene, got %v", err)
	}
}

func TestRandomSpheresSeed(t *testing.T) {
	a, _ := createScene("random-spheres", 1)
	b, _ := createScene("random-spheres", 2)
	if a.Config.Seed != 1 || b.Config.Seed != 2 {
		t.Errorf("scene seeds = %d, %d", a.Config.Seed, b.Config.Seed)
	}
}

func TestOutputFormat(t *testing.T) {
	tests := []struct {
		format, out string
		want        string
		wantErr     bool
	}{
		{"", "render.png", "png", false},
		{"", "render.PPM", "ppm", false},
		{"", "-", "png", false},
		{"ppm", "render.png", "ppm", false},
		{"jpeg", "render.jpg", "", true},
	}

	for _, tt := range tests {
		got, err := outputFormat(tt.format, tt.out)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("outputFormat(%q, %q) = %q, %v; want %q, wantErr %v", tt.format, tt.out, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestProgressPrinter(t *testing.T) {
	var buf bytes.Buffer
	onRow := progressPrinter(&buf)
	for done := 1; done <= 20; done++ {
		onRow(done-1, done, 20)
	}

	out := buf.String()
	if !strings.Contains(out, "100%") {
		t.Errorf("progress output missing completion: %q", out)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Error("progress output should end with a newline")
	}
	if n := strings.Count(out, "\r"); n > 11 {
		t.Errorf("expected at most 11 progress updates, got %d", n)
	}
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()

	t.Run("png", func(t *testing.T) {
		out := filepath.Join(dir, "simple.png")
		args := []string{"sphere-tracer", "render", "--scene", "simple",
			"--width", "8", "--height", "6", "--spp", "1", "--depth", "3", "--workers", "2", "--stamp", "--out", out}
		if err := newApp().Run(args); err != nil {
			t.Fatalf("render command failed: %v", err)
		}

		file, err := os.Open(out)
		if err != nil {
			t.Fatalf("output not written: %v", err)
		}
		defer file.Close()
		img, err := png.Decode(file)
		if err != nil {
			t.Fatalf("output is not a PNG: %v", err)
		}
		if b := img.Bounds(); b.Dx() != 8 || b.Dy() != 6 {
			t.Errorf("image size = %dx%d, want 8x6", b.Dx(), b.Dy())
		}
	})

	t.Run("ppm", func(t *testing.T) {
		out := filepath.Join(dir, "simple.ppm")
		args := []string{"sphere-tracer", "render", "--scene", "simple",
			"--width", "4", "--height", "2", "--spp", "1", "--depth", "2", "--out", out}
		if err := newApp().Run(args); err != nil {
			t.Fatalf("render command failed: %v", err)
		}

		data, err := os.ReadFile(out)
		if err != nil {
			t.Fatalf("output not written: %v", err)
		}
		if !strings.HasPrefix(string(data), "P3\n4 2\n255\n") {
			t.Errorf("unexpected PPM header: %q", string(data[:min(len(data), 20)]))
		}
	})

	t.Run("bad format", func(t *testing.T) {
		args := []string{"sphere-tracer", "render", "--scene", "simple", "--format", "gif", "--out", filepath.Join(dir, "x.gif")}
		if err := newApp().Run(args); err == nil {
			t.Error("expected error for unsupported format")
		}
	})
}

func TestRenderCommandExplicitSeed(t *testing.T) {
	dir := t.TempDir()
	render := func(name string, extra ...string) string {
		t.Helper()
		out := filepath.Join(dir, name+".ppm")
		args := append([]string{"sphere-tracer", "render", "--scene", "simple",
			"--width", "8", "--height", "6", "--spp", "2", "--depth", "3", "--out", out}, extra...)
		if err := newApp().Run(args); err != nil {
			t.Fatalf("render command failed: %v", err)
		}
		data, err := os.ReadFile(out)
		if err != nil {
			t.Fatalf("output not written: %v", err)
		}
		return string(data)
	}

	// simple renders with seed 42 unless told otherwise
	sceneSeed := render("default")
	if render("seed42", "--seed", "42") != sceneSeed {
		t.Error("--seed 42 should match the scene's own seed")
	}
	if render("seed0", "--seed", "0") == sceneSeed {
		t.Error("--seed 0 should replace the scene's seed")
	}
}
