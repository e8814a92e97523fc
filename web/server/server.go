package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/df07/go-sphere-tracer/pkg/log"
	"github.com/df07/go-sphere-tracer/pkg/scene"
)

var logger = log.New("server")

// Server handles web requests for the sphere tracer
type Server struct {
	port int
	echo *echo.Echo
}

// NewServer creates a new web server with all routes registered
func NewServer(port int) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet},
	}))
	e.Use(requestLogger)

	s := &Server{port: port, echo: e}

	e.GET("/api/health", s.handleHealth)
	e.GET("/api/scenes", s.handleScenes)
	e.GET("/api/scene-config", s.handleSceneConfig)
	e.GET("/api/render", s.handleRender)
	e.GET("/api/render/stream", s.handleRenderStream)
	e.GET("/api/inspect", s.handleInspect)

	return s
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves until the server is shut down
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	logger.Noticef("starting web server on http://localhost%s", addr)
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for active ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		logger.Infof("%s %s -> %d (%v)", c.Request().Method, c.Request().URL.Path,
			c.Response().Status, time.Since(start).Round(time.Millisecond))
		return err
	}
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists built-in and discovered scenes
func (s *Server) handleScenes(c echo.Context) error {
	response, err := scene.ListAllScenes()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, response)
}

// handleSceneConfig returns a scene's preferred render settings and the
// limits the render endpoints enforce
func (s *Server) handleSceneConfig(c echo.Context) error {
	sceneObj, err := createScene(c.QueryParam("scene"))
	if err != nil {
		return err
	}

	config := sceneObj.Config
	return c.JSON(http.StatusOK, map[string]interface{}{
		"scene": sceneObj.Name,
		"defaults": map[string]interface{}{
			"width":           config.Width,
			"height":          config.Height,
			"samplesPerPixel": config.SamplesPerPixel,
			"maxDepth":        config.MaxDepth,
			"seed":            config.Seed,
			"primitives":      sceneObj.GetPrimitiveCount(),
		},
		"limits": map[string]interface{}{
			"width":     map[string]int{"min": 1, "max": maxImageSize},
			"height":    map[string]int{"min": 1, "max": maxImageSize},
			"spp":       map[string]int{"min": 1, "max": maxSamples},
			"depth":     map[string]int{"min": 1, "max": maxDepth},
			"maxBudget": maxSampleBudget,
		},
	})
}

// createScene resolves a scene name, defaulting to the default scene
func createScene(name string) (*scene.Scene, error) {
	if name == "" {
		name = "default"
	}
	sceneObj, err := scene.Create(name)
	if errors.Is(err, scene.ErrUnknownScene) {
		return nil, echo.NewHTTPError(http.StatusNotFound, "Unknown scene: "+name)
	}
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return sceneObj, nil
}

// parseIntParam parses an optional integer parameter from the URL query.
// Absent parameters return defaultValue without range checks.
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	value := values.Get(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %s", key, value)
	}
	if parsed < min || parsed > max {
		return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
	}
	return parsed, nil
}
