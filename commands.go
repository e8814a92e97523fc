package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/df07/go-sphere-tracer/pkg/log"
	"github.com/df07/go-sphere-tracer/pkg/preview"
	"github.com/df07/go-sphere-tracer/pkg/renderer"
	"github.com/df07/go-sphere-tracer/pkg/scene"
	"github.com/df07/go-sphere-tracer/web/server"
)

var logger = log.New("sphere-tracer")

func setupLogging(ctx *cli.Context) {
	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
}

// createScene resolves a scene name, a gltf:<name> ID or a glTF file path.
// A non-zero seed reshuffles the random-spheres layout.
func createScene(name string, seed int64) (*scene.Scene, error) {
	switch ext := strings.ToLower(filepath.Ext(name)); {
	case ext == ".gltf" || ext == ".glb":
		return scene.NewGLTFScene(name)
	case name == "random-spheres" && seed != 0:
		return scene.NewRandomSpheresScene(seed), nil
	default:
		return scene.Create(name)
	}
}

// outputFormat picks the encoder from the explicit flag or the file name
func outputFormat(format, out string) (string, error) {
	if format == "" {
		format = "png"
		if strings.EqualFold(filepath.Ext(out), ".ppm") {
			format = "ppm"
		}
	}
	switch format {
	case "png", "ppm":
		return format, nil
	default:
		return "", fmt.Errorf("unsupported format %q, want png or ppm", format)
	}
}

// progressPrinter reports progress on w in ten percent steps
func progressPrinter(w io.Writer) func(row, done, total int) {
	last := -10
	return func(row, done, total int) {
		pct := done * 100 / total
		if pct/10 != last/10 || done == total {
			last = pct
			fmt.Fprintf(w, "\rrendering: %3d%%", pct)
			if done == total {
				fmt.Fprintln(w)
			}
		}
	}
}

func renderAction(ctx *cli.Context) error {
	setupLogging(ctx)
	if ctx.String("out") == "-" {
		// stdout carries the image
		log.SetSink(os.Stderr)
	}

	format, err := outputFormat(ctx.String("format"), ctx.String("out"))
	if err != nil {
		return err
	}

	sc, err := createScene(ctx.String("scene"), ctx.Int64("seed"))
	if err != nil {
		return err
	}

	// Merge treats seed 0 as unset, so an explicit seed goes on the scene
	if ctx.IsSet("seed") {
		sc.Config.Seed = ctx.Int64("seed")
	}

	overrides := renderer.Config{
		Width:           ctx.Int("width"),
		Height:          ctx.Int("height"),
		SamplesPerPixel: ctx.Int("spp"),
		MaxDepth:        ctx.Int("depth"),
		NumWorkers:      ctx.Int("workers"),
		OnRow:           progressPrinter(os.Stderr),
	}
	config := sc.Config.Merge(overrides)
	if err := config.Validate(); err != nil {
		return err
	}
	if err := renderer.CheckMemory(config); err != nil {
		return err
	}

	if host, err := renderer.GetHostInfo(); err == nil {
		logger.Infof("host: %s, %d logical cores, %d MiB free", host.CPUModel, host.LogicalCores, host.FreeMemory>>20)
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fb, stats, err := sc.Render(runCtx, overrides)
	if err != nil {
		return err
	}
	logger.Noticef("rendered %s %dx%d in %v (%.0f samples/s)",
		sc.Name, fb.Width, fb.Height, stats.Duration.Round(time.Millisecond), stats.SamplesPerSecond())

	if ctx.Bool("stats") {
		statsOut := io.Writer(os.Stdout)
		if ctx.String("out") == "-" {
			statsOut = os.Stderr
		}
		fmt.Fprint(statsOut, stats.Table())
	}

	if err := writeFrame(fb, ctx.String("out"), format, stampText(ctx, sc, config)); err != nil {
		return err
	}

	if ctx.Bool("preview") {
		return preview.Show(runCtx, fb)
	}
	return nil
}

func stampText(ctx *cli.Context, sc *scene.Scene, config renderer.Config) string {
	if !ctx.Bool("stamp") {
		return ""
	}
	return fmt.Sprintf("%s  %dx%d  %d spp  depth %d  seed %d",
		sc.Name, config.Width, config.Height, config.SamplesPerPixel, config.MaxDepth, config.Seed)
}

// writeFrame encodes fb to out. PPM output ignores the stamp.
func writeFrame(fb *renderer.FrameBuffer, out, format, stamp string) error {
	if format == "ppm" {
		if out == "-" {
			return fb.WritePPM(os.Stdout)
		}
		file, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer file.Close()
		if err := fb.WritePPM(file); err != nil {
			return err
		}
		return file.Close()
	}

	var img image.Image = fb.Image()
	if stamp != "" {
		img = renderer.Stamp(img, stamp)
	}
	if out == "-" {
		return renderer.EncodePNG(os.Stdout, img)
	}
	return renderer.SavePNG(out, img)
}

func scenesAction(ctx *cli.Context) error {
	setupLogging(ctx)

	response, err := scene.ListAllScenes()
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Name", "Group", "Description"})
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	for _, group := range response.Groups {
		for _, info := range group.Scenes {
			table.Append([]string{info.ID, info.DisplayName, group.Name, info.Description})
		}
	}
	table.Render()
	return nil
}

func serveAction(ctx *cli.Context) error {
	setupLogging(ctx)

	srv := server.NewServer(ctx.Int("port"))

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-runCtx.Done():
		logger.Notice("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return nil
	}
}
