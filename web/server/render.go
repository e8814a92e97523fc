package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/df07/go-sphere-tracer/pkg/renderer"
	"github.com/df07/go-sphere-tracer/pkg/scene"
)

// Request limits
const (
	maxImageSize = 2000
	maxSamples   = 10000
	maxDepth     = 1000

	// maxSampleBudget caps width*height*spp for a single request
	maxSampleBudget = 800 * 600 * 100
)

// RenderRequest represents a render request from the client. Zero fields
// fall back to the scene's own settings.
type RenderRequest struct {
	Scene           string `json:"scene"`
	Width           int    `json:"width"`
	Height          int    `json:"height"`
	SamplesPerPixel int    `json:"spp"`
	MaxDepth        int    `json:"depth"`
	Seed            *int64 `json:"seed,omitempty"` // nil keeps the scene's seed
	Format          string `json:"format"` // "png" or "ppm"
}

// ProgressUpdate is sent after each finished scanline while streaming
type ProgressUpdate struct {
	Row   int `json:"row"`
	Done  int `json:"done"`
	Total int `json:"total"`
}

// CompleteUpdate carries the finished image while streaming
type CompleteUpdate struct {
	ImageData string `json:"imageData"` // Base64 encoded PNG
	Stats     Stats  `json:"stats"`
}

// Stats represents render statistics
type Stats struct {
	Width            int     `json:"width"`
	Height           int     `json:"height"`
	TotalSamples     int     `json:"totalSamples"`
	Workers          int     `json:"workers"`
	ElapsedMs        int64   `json:"elapsedMs"`
	SamplesPerSecond float64 `json:"samplesPerSecond"`
}

func newStats(stats renderer.RenderStats) Stats {
	return Stats{
		Width:            stats.Width,
		Height:           stats.Height,
		TotalSamples:     stats.Samples,
		Workers:          len(stats.Workers),
		ElapsedMs:        stats.Duration.Milliseconds(),
		SamplesPerSecond: stats.SamplesPerSecond(),
	}
}

// parseRenderRequest parses and validates the query parameters
func parseRenderRequest(c echo.Context) (*RenderRequest, error) {
	values := c.QueryParams()
	req := &RenderRequest{Scene: values.Get("scene"), Format: values.Get("format")}

	var err error
	if req.Width, err = parseIntParam(values, "width", 0, 1, maxImageSize); err != nil {
		return nil, err
	}
	if req.Height, err = parseIntParam(values, "height", 0, 1, maxImageSize); err != nil {
		return nil, err
	}
	if req.SamplesPerPixel, err = parseIntParam(values, "spp", 0, 1, maxSamples); err != nil {
		return nil, err
	}
	if req.MaxDepth, err = parseIntParam(values, "depth", 0, 1, maxDepth); err != nil {
		return nil, err
	}
	if seed := values.Get("seed"); seed != "" {
		parsed, err := strconv.ParseInt(seed, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid seed: %s", seed)
		}
		req.Seed = &parsed
	}

	switch req.Format {
	case "":
		req.Format = "png"
	case "png", "ppm":
	default:
		return nil, fmt.Errorf("unsupported format %q, want png or ppm", req.Format)
	}

	return req, nil
}

// overrides converts the request to a render config for Scene.Render
func (req *RenderRequest) overrides() renderer.Config {
	return renderer.Config{
		Width:           req.Width,
		Height:          req.Height,
		SamplesPerPixel: req.SamplesPerPixel,
		MaxDepth:        req.MaxDepth,
	}
}

// setupRender parses the request, resolves the scene and checks the
// request's cost against the sample budget
func setupRender(c echo.Context) (*RenderRequest, *scene.Scene, error) {
	req, err := parseRenderRequest(c)
	if err != nil {
		return nil, nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid request: "+err.Error())
	}

	sceneObj, err := createScene(req.Scene)
	if err != nil {
		return nil, nil, err
	}
	// Merge treats seed 0 as unset, so an explicit seed goes on the scene
	if req.Seed != nil {
		sceneObj.Config.Seed = *req.Seed
	}

	config := sceneObj.Config.Merge(req.overrides())
	budget := int64(config.Width) * int64(config.Height) * int64(config.SamplesPerPixel)
	if budget > maxSampleBudget {
		return nil, nil, echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("Request too expensive: %d samples exceeds budget of %d", budget, maxSampleBudget))
	}

	return req, sceneObj, nil
}

// handleRender renders a scene and returns the encoded image
func (s *Server) handleRender(c echo.Context) error {
	req, sceneObj, err := setupRender(c)
	if err != nil {
		return err
	}

	fb, stats, err := sceneObj.Render(c.Request().Context(), req.overrides())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Render error: "+err.Error())
	}

	header := c.Response().Header()
	header.Set("X-Render-Duration", stats.Duration.Round(time.Millisecond).String())
	header.Set("X-Render-Samples", strconv.Itoa(stats.Samples))

	var buf bytes.Buffer
	if req.Format == "ppm" {
		if err := fb.WritePPM(&buf); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.Blob(http.StatusOK, "image/x-portable-pixmap", buf.Bytes())
	}

	if err := renderer.EncodePNG(&buf, fb.Image()); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}

// handleRenderStream renders a scene while streaming per-row progress as
// server-sent events, finishing with the image as a base64 PNG
func (s *Server) handleRenderStream(c echo.Context) error {
	req, sceneObj, err := setupRender(c)
	if err != nil {
		return err
	}

	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set(echo.HeaderCacheControl, "no-cache")
	w.Header().Set(echo.HeaderConnection, "keep-alive")
	w.WriteHeader(http.StatusOK)

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	progress := make(chan ProgressUpdate, 16)
	overrides := req.overrides()
	overrides.OnRow = func(row, done, total int) {
		select {
		case progress <- ProgressUpdate{Row: row, Done: done, Total: total}:
		case <-ctx.Done():
		}
	}

	type result struct {
		fb    *renderer.FrameBuffer
		stats renderer.RenderStats
		err   error
	}
	finished := make(chan result, 1)
	go func() {
		fb, stats, err := sceneObj.Render(ctx, overrides)
		finished <- result{fb, stats, err}
	}()

	for {
		select {
		case update := <-progress:
			if err := sendSSEEvent(w, "progress", update); err != nil {
				return nil
			}
		case res := <-finished:
			for drained := false; !drained; {
				select {
				case update := <-progress:
					if err := sendSSEEvent(w, "progress", update); err != nil {
						return nil
					}
				default:
					drained = true
				}
			}
			if res.err != nil {
				return sendSSEEvent(w, "error", map[string]string{"error": res.err.Error()})
			}
			var buf bytes.Buffer
			if err := renderer.EncodePNG(&buf, res.fb.Image()); err != nil {
				return sendSSEEvent(w, "error", map[string]string{"error": err.Error()})
			}
			return sendSSEEvent(w, "complete", CompleteUpdate{
				ImageData: base64.StdEncoding.EncodeToString(buf.Bytes()),
				Stats:     newStats(res.stats),
			})
		}
	}
}

// sendSSEEvent writes one event and flushes it to the client
func sendSSEEvent(w *echo.Response, event string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return err
	}
	w.Flush()
	return nil
}
