package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/urfave/cli"

	"github.com/df07/go-sphere-tracer/pkg/log"
	"github.com/df07/go-sphere-tracer/web/server"
)

var logger = log.New("web")

type shutdowner interface {
	Shutdown(ctx context.Context) error
}

// shutdown stops srv, giving active requests up to timeout to finish
func shutdown(srv shutdowner, timeout time.Duration) {
	logger.Notice("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warningf("shutdown: %v", err)
	}
}

func main() {
	app := cli.NewApp()
	app.Name = "sphere-tracer-web"
	app.Usage = "serve the sphere tracer render API"
	app.Flags = []cli.Flag{
		cli.IntFlag{
			Name:   "port, p",
			Value:  8080,
			Usage:  "port to serve on",
			EnvVar: "RAYTRACER_PORT",
		},
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
	}
	app.Action = func(ctx *cli.Context) error {
		if ctx.Bool("v") {
			log.SetLevel(log.Info)
		}

		webServer := server.NewServer(ctx.Int("port"))
		logger.Noticef("visit http://localhost:%d/api/scenes to list scenes", ctx.Int("port"))

		go func() {
			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt)
			<-sig
			shutdown(webServer, 5*time.Second)
		}()

		return webServer.Start()
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error starting server: %v\n", err)
		os.Exit(1)
	}
}
