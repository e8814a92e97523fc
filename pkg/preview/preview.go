// Package preview shows a rendered frame in the terminal using half-block
// cells, two image rows per terminal row.
package preview

import (
	"context"
	"fmt"
	"image"
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"

	"github.com/df07/go-sphere-tracer/pkg/renderer"
)

// CellSetter is the part of uv.Screen that Draw needs
type CellSetter interface {
	SetCell(x, y int, c *uv.Cell)
}

// Fit returns the terminal cell size of fb scaled to fit area with its
// aspect ratio kept. Each cell covers one column and two rows of pixels.
func Fit(fb *renderer.FrameBuffer, area uv.Rectangle) (cols, rows int, scale float64) {
	if fb.Width == 0 || fb.Height == 0 || area.Dx() <= 0 || area.Dy() <= 0 {
		return 0, 0, 0
	}
	scale = min(float64(area.Dx())/float64(fb.Width), float64(2*area.Dy())/float64(fb.Height))
	cols = max(1, int(float64(fb.Width)*scale))
	rows = max(1, (int(float64(fb.Height)*scale)+1)/2)
	return cols, rows, scale
}

// Draw paints fb into area with the upper-half-block glyph: the foreground
// is the top pixel and the background the one below it
func Draw(fb *renderer.FrameBuffer, scr CellSetter, area uv.Rectangle) {
	cols, rows, scale := Fit(fb, area)
	if scale == 0 {
		return
	}

	sample := func(x, y int) color.Color {
		fx := min(fb.Width-1, int(float64(x)/scale))
		fy := int(float64(y) / scale)
		if fy >= fb.Height {
			return nil
		}
		p := fb.At(fx, fy)
		return color.RGBA{R: p.R, G: p.G, B: p.B, A: 255}
	}

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			scr.SetCell(area.Min.X+col, area.Min.Y+row, &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: sample(col, 2*row),
					Bg: sample(col, 2*row+1),
				},
			})
		}
	}
}

// Show displays fb in the alternate screen until a key is pressed or ctx
// is done, redrawing when the terminal is resized
func Show(ctx context.Context, fb *renderer.FrameBuffer) error {
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	defer term.Shutdown(context.Background())

	term.EnterAltScreen()
	term.HideCursor()
	defer func() {
		term.ExitAltScreen()
		term.ShowCursor()
	}()

	draw := func() error {
		term.Erase()
		term.Resize(width, height)
		Draw(fb, term, image.Rect(0, 0, width, height))
		return term.Display()
	}
	if err := draw(); err != nil {
		return fmt.Errorf("display: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-term.Events():
			if !ok {
				return nil
			}
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				width, height = ev.Width, ev.Height
				if err := draw(); err != nil {
					return fmt.Errorf("display: %w", err)
				}
			case uv.KeyPressEvent:
				return nil
			}
		}
	}
}
