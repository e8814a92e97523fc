package renderer

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"github.com/df07/go-sphere-tracer/pkg/core"
)

// Pixel is an 8-bit RGB color
type Pixel struct {
	R, G, B uint8
}

// FrameBuffer holds a rendered image as rows of pixels. Row 0 is the top.
type FrameBuffer struct {
	Width  int
	Height int
	Rows   [][]Pixel
}

// NewFrameBuffer allocates a black frame buffer
func NewFrameBuffer(width, height int) *FrameBuffer {
	rows := make([][]Pixel, height)
	for j := range rows {
		rows[j] = make([]Pixel, width)
	}
	return &FrameBuffer{Width: width, Height: height, Rows: rows}
}

// At returns the pixel at column x of row y
func (fb *FrameBuffer) At(x, y int) Pixel {
	return fb.Rows[y][x]
}

// WritePPM encodes the frame buffer as a plain-text (P3) PPM image
func (fb *FrameBuffer) WritePPM(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "P3\n%d %d\n255\n", fb.Width, fb.Height); err != nil {
		return err
	}
	for _, row := range fb.Rows {
		for _, p := range row {
			if _, err := fmt.Fprintf(bw, "%d %d %d\n", p.R, p.G, p.B); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// Image converts the frame buffer to an opaque RGBA image
func (fb *FrameBuffer) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for y, row := range fb.Rows {
		for x, p := range row {
			img.SetRGBA(x, y, color.RGBA{R: p.R, G: p.G, B: p.B, A: 255})
		}
	}
	return img
}

// toPixel averages an accumulated color over samples, applies gamma 2 and
// quantizes each channel to [0, 255].
func toPixel(sum core.Vec3, samples int) Pixel {
	color := sum.Multiply(1.0 / float64(samples)).Sqrt()
	return Pixel{
		R: quantize(color.X),
		G: quantize(color.Y),
		B: quantize(color.Z),
	}
}

// quantize maps a gamma-corrected channel value to 8 bits. NaN and
// non-positive values map to 0.
func quantize(c float64) uint8 {
	if !(c > 0) {
		return 0
	}
	return uint8(256 * math.Min(c, 0.999))
}
