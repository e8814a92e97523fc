package renderer

import (
	"image"
	"io"

	"github.com/fogleman/gg"
)

// SavePNG writes img to path as a PNG file
func SavePNG(path string, img image.Image) error {
	return gg.SavePNG(path, img)
}

// EncodePNG writes img to w in PNG format
func EncodePNG(w io.Writer, img image.Image) error {
	return gg.NewContextForImage(img).EncodePNG(w)
}

// Stamp returns a copy of img with text drawn in a dark band along the bottom edge
func Stamp(img image.Image, text string) image.Image {
	dc := gg.NewContextForImage(img)
	width := float64(dc.Width())
	height := float64(dc.Height())

	_, textHeight := dc.MeasureString(text)
	band := textHeight + 8

	dc.SetRGBA(0, 0, 0, 0.6)
	dc.DrawRectangle(0, height-band, width, band)
	dc.Fill()

	dc.SetRGB(1, 1, 1)
	dc.DrawStringAnchored(text, 4, height-band/2, 0, 0.5)
	return dc.Image()
}
