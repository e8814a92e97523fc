package renderer

import (
	"bytes"
	"fmt"
	"time"

	"github.com/olekukonko/tablewriter"
)

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	Width    int
	Height   int
	Rows     int           // Rows completed
	Samples  int           // Camera rays traced
	Duration time.Duration // Wall-clock render time
	Workers  []WorkerStats
}

// WorkerStats tracks the share of the frame rendered by one worker
type WorkerStats struct {
	ID       int
	Rows     int
	Samples  int
	Duration time.Duration
}

// SamplesPerSecond returns the camera-ray throughput of the render
func (s RenderStats) SamplesPerSecond() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.Samples) / s.Duration.Seconds()
}

// Table builds a tabular representation of the per-worker statistics
func (s RenderStats) Table() string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Worker", "Rows", "% of frame", "Samples", "Render time"})
	for _, w := range s.Workers {
		table.Append([]string{
			fmt.Sprintf("%d", w.ID),
			fmt.Sprintf("%d", w.Rows),
			fmt.Sprintf("%02.1f %%", s.percentOfFrame(w.Rows)),
			fmt.Sprintf("%d", w.Samples),
			w.Duration.Round(time.Millisecond).String(),
		})
	}
	table.SetFooter([]string{
		"TOTAL",
		fmt.Sprintf("%d", s.Rows),
		fmt.Sprintf("%02.1f %%", s.percentOfFrame(s.Rows)),
		fmt.Sprintf("%d", s.Samples),
		s.Duration.Round(time.Millisecond).String(),
	})
	table.Render()
	return buf.String()
}

func (s RenderStats) percentOfFrame(rows int) float64 {
	if s.Height == 0 {
		return 0
	}
	return 100 * float64(rows) / float64(s.Height)
}
