package scene

import (
	"context"
	"fmt"

	"github.com/df07/go-sphere-tracer/pkg/core"
	"github.com/df07/go-sphere-tracer/pkg/geometry"
	"github.com/df07/go-sphere-tracer/pkg/log"
	"github.com/df07/go-sphere-tracer/pkg/material"
	"github.com/df07/go-sphere-tracer/pkg/renderer"
)

var logger = log.New("scene")

// Scene contains all the elements needed for rendering
type Scene struct {
	Name         string
	CameraConfig geometry.CameraConfig
	Materials    *material.Table
	Shapes       []geometry.Shape // Objects in the scene
	Config       renderer.Config  // Preferred render settings
}

// New creates an empty scene with its own material table
func New(name string, cameraConfig geometry.CameraConfig, config renderer.Config) *Scene {
	return &Scene{
		Name:         name,
		CameraConfig: cameraConfig,
		Materials:    material.NewTable(),
		Shapes:       make([]geometry.Shape, 0),
		Config:       config,
	}
}

// AddMaterial registers a built-in material. Built-in scenes only use
// constant parameters, so an invalid one is a programming error.
func (s *Scene) AddMaterial(m material.Material) material.Handle {
	return s.Materials.MustAdd(m)
}

// AddSphere adds a sphere using an already registered material
func (s *Scene) AddSphere(center core.Vec3, radius float64, mat material.Handle) *geometry.Sphere {
	sphere := geometry.NewSphere(center, radius, mat)
	s.Shapes = append(s.Shapes, sphere)
	return sphere
}

// World builds the acceleration structure over the scene's shapes
func (s *Scene) World() (geometry.Shape, error) {
	bvh, err := geometry.NewBVH(s.Shapes)
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", s.Name, err)
	}
	return bvh, nil
}

// Camera builds the scene camera for an image of the given size. The
// aspect ratio always follows the image so pixels stay square.
func (s *Scene) Camera(width, height int) (*geometry.Camera, error) {
	config := s.CameraConfig
	if width > 0 && height > 0 {
		config.AspectRatio = float64(width) / float64(height)
	}
	camera, err := geometry.NewCamera(config)
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", s.Name, err)
	}
	return camera, nil
}

// GetPrimitiveCount returns the total number of primitive objects in the scene
func (s *Scene) GetPrimitiveCount() int {
	count := 0
	for _, shape := range s.Shapes {
		if list, ok := shape.(*geometry.List); ok {
			count += len(list.Shapes)
			continue
		}
		count++
	}
	return count
}

// Render renders the scene with its own settings, overridden by every
// non-zero field of overrides
func (s *Scene) Render(ctx context.Context, overrides renderer.Config) (*renderer.FrameBuffer, renderer.RenderStats, error) {
	config := s.Config.Merge(overrides)
	if err := config.Validate(); err != nil {
		return nil, renderer.RenderStats{}, err
	}

	world, err := s.World()
	if err != nil {
		return nil, renderer.RenderStats{}, err
	}
	camera, err := s.Camera(config.Width, config.Height)
	if err != nil {
		return nil, renderer.RenderStats{}, err
	}

	logger.Infof("rendering %s: %d primitives, %dx%d, %d spp, depth %d",
		s.Name, s.GetPrimitiveCount(), config.Width, config.Height, config.SamplesPerPixel, config.MaxDepth)

	return renderer.Render(ctx, world, camera, s.Materials, config)
}
