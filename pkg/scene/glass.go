package scene

import (
	"github.com/df07/go-sphere-tracer/pkg/core"
	"github.com/df07/go-sphere-tracer/pkg/geometry"
	"github.com/df07/go-sphere-tracer/pkg/material"
	"github.com/df07/go-sphere-tracer/pkg/renderer"
)

// classicCamera looks down -Z from the origin with a wide field of view
func classicCamera(cameraOverrides []geometry.CameraOverride) geometry.CameraConfig {
	config := geometry.CameraConfig{
		Center:      core.NewVec3(0, 0, 0),
		LookAt:      core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		AspectRatio: 16.0 / 9.0,
		VFov:        90.0,
	}
	if len(cameraOverrides) > 0 {
		config = geometry.MergeCameraConfig(config, cameraOverrides[0])
	}
	return config
}

// NewGlassScene creates two glass spheres and a polished metal sphere
// resting on a yellow ground sphere
func NewGlassScene(cameraOverrides ...geometry.CameraOverride) *Scene {
	s := New("glass", classicCamera(cameraOverrides), renderer.Config{
		Width:           400,
		Height:          225,
		SamplesPerPixel: 100,
		MaxDepth:        50,
		Seed:            42,
	})

	ground := s.AddMaterial(material.NewLambertian(core.NewVec3(0.8, 0.8, 0.0)))
	glass := s.AddMaterial(material.NewDielectric(1.5))
	metal := s.AddMaterial(material.NewMetal(core.NewVec3(0.7, 0.6, 0.5), 0.0))

	s.AddSphere(core.NewVec3(0, -100.5, -1), 100, ground)
	s.AddSphere(core.NewVec3(-1, 0, -1), 0.5, glass)
	s.AddSphere(core.NewVec3(0, 0, -1), 0.5, glass)
	s.AddSphere(core.NewVec3(1, 0, -1), 0.5, metal)

	return s
}

// NewSimpleScene creates a single diffuse sphere over a ground sphere
func NewSimpleScene(cameraOverrides ...geometry.CameraOverride) *Scene {
	s := New("simple", classicCamera(cameraOverrides), renderer.Config{
		Width:           400,
		Height:          225,
		SamplesPerPixel: 50,
		MaxDepth:        50,
		Seed:            42,
	})

	ground := s.AddMaterial(material.NewLambertian(core.NewVec3(0.8, 0.8, 0.0)))
	center := s.AddMaterial(material.NewLambertian(core.NewVec3(0.7, 0.3, 0.3)))

	s.AddSphere(core.NewVec3(0, -100.5, -1), 100, ground)
	s.AddSphere(core.NewVec3(0, 0, -1), 0.5, center)

	return s
}
