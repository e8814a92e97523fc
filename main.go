package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli"

	"github.com/df07/go-sphere-tracer/pkg/scene"
)

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "sphere-tracer"
	app.Usage = "render sphere scenes using path tracing"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "render",
			Usage: "render a scene to an image file",
			Description: `
Render a built-in scene, a discovered glTF scene (gltf:<name>) or a .gltf/.glb
file. Zero-valued flags fall back to the scene's own settings.`,
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "scene, s",
					Value: "default",
					Usage: "one of " + strings.Join(scene.Names(), ", ") + ", gltf:<name> or a glTF file path",
				},
				cli.IntFlag{
					Name:  "width",
					Usage: "frame width",
				},
				cli.IntFlag{
					Name:  "height",
					Usage: "frame height",
				},
				cli.IntFlag{
					Name:  "spp",
					Usage: "samples per pixel",
				},
				cli.IntFlag{
					Name:  "depth",
					Usage: "maximum bounces per path",
				},
				cli.IntFlag{
					Name:   "workers",
					Usage:  "render goroutines (default: logical CPUs)",
					EnvVar: "RAYTRACER_WORKERS",
				},
				cli.Int64Flag{
					Name:   "seed",
					Usage:  "base random seed; 0 is a valid seed (default: the scene's)",
					EnvVar: "RAYTRACER_SEED",
				},
				cli.StringFlag{
					Name:  "out, o",
					Value: "render.png",
					Usage: "output file, - writes to stdout",
				},
				cli.StringFlag{
					Name:  "format, f",
					Usage: "png or ppm (default: from the output file extension)",
				},
				cli.BoolFlag{
					Name:  "stamp",
					Usage: "caption the image with scene and render settings",
				},
				cli.BoolFlag{
					Name:  "preview",
					Usage: "show the finished frame in the terminal",
				},
				cli.BoolFlag{
					Name:  "stats",
					Usage: "print per-worker statistics",
				},
			},
			Action: renderAction,
		},
		{
			Name:   "scenes",
			Usage:  "list built-in and discovered scenes",
			Action: scenesAction,
		},
		{
			Name:  "serve",
			Usage: "serve the render API over HTTP",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:   "port, p",
					Value:  8080,
					Usage:  "port to serve on",
					EnvVar: "RAYTRACER_PORT",
				},
			},
			Action: serveAction,
		},
	}
	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
