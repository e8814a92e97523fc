package renderer

import (
	"bytes"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func testFrame() *FrameBuffer {
	fb := NewFrameBuffer(2, 2)
	fb.Rows[0][0] = Pixel{255, 0, 0}
	fb.Rows[0][1] = Pixel{0, 255, 0}
	fb.Rows[1][0] = Pixel{0, 0, 255}
	fb.Rows[1][1] = Pixel{10, 20, 30}
	return fb
}

func TestFrameBuffer_WritePPM(t *testing.T) {
	var buf bytes.Buffer
	if err := testFrame().WritePPM(&buf); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	expected := "P3\n2 2\n255\n255 0 0\n0 255 0\n0 0 255\n10 20 30\n"
	if buf.String() != expected {
		t.Errorf("Expected PPM %q, got %q", expected, buf.String())
	}
}

func TestFrameBuffer_Image(t *testing.T) {
	img := testFrame().Image()
	if img.Bounds().Dx() != 2 || img.Bounds().Dy() != 2 {
		t.Fatalf("Expected 2x2 image, got %v", img.Bounds())
	}
	if got := img.RGBAAt(1, 1); got != (color.RGBA{10, 20, 30, 255}) {
		t.Errorf("Expected bottom-right {10 20 30 255}, got %v", got)
	}
	if got := img.RGBAAt(0, 1); got != (color.RGBA{0, 0, 255, 255}) {
		t.Errorf("Expected bottom-left blue, got %v", got)
	}
}

func TestSavePNGAndStamp(t *testing.T) {
	fb := NewFrameBuffer(64, 32)
	stamped := Stamp(fb.Image(), "test")
	if stamped.Bounds() != fb.Image().Bounds() {
		t.Errorf("Stamp changed image bounds: %v", stamped.Bounds())
	}

	path := filepath.Join(t.TempDir(), "out.png")
	if err := SavePNG(path, stamped); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Error("Expected PNG signature")
	}

	var buf bytes.Buffer
	if err := EncodePNG(&buf, fb.Image()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
		t.Error("Expected PNG signature from EncodePNG")
	}
}

func TestRenderStats_Table(t *testing.T) {
	stats := RenderStats{
		Width:    10,
		Height:   4,
		Rows:     4,
		Samples:  400,
		Duration: 2 * time.Second,
		Workers: []WorkerStats{
			{ID: 0, Rows: 3, Samples: 300, Duration: time.Second},
			{ID: 1, Rows: 1, Samples: 100, Duration: time.Second},
		},
	}

	table := stats.Table()
	for _, want := range []string{"Worker", "TOTAL", "75.0 %", "400"} {
		if !strings.Contains(table, want) {
			t.Errorf("Expected table to contain %q:\n%s", want, table)
		}
	}
	if stats.SamplesPerSecond() != 200 {
		t.Errorf("Expected 200 samples/s, got %f", stats.SamplesPerSecond())
	}
}
