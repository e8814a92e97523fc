package scene

import (
	"math/rand"

	"github.com/df07/go-sphere-tracer/pkg/core"
	"github.com/df07/go-sphere-tracer/pkg/geometry"
	"github.com/df07/go-sphere-tracer/pkg/material"
	"github.com/df07/go-sphere-tracer/pkg/renderer"
)

// Fractions of small spheres per material; the rest are glass
const (
	diffuseFraction = 0.8
	metalFraction   = 0.15
)

// NewRandomSpheresScene creates the cover scene: a large ground sphere,
// a 22x22 field of small randomized spheres and three large feature
// spheres. The same seed always yields the same scene.
func NewRandomSpheresScene(seed int64, cameraOverrides ...geometry.CameraOverride) *Scene {
	defaultCameraConfig := geometry.CameraConfig{
		Center:        core.NewVec3(13, 2, 3),
		LookAt:        core.NewVec3(0, 0, 0),
		Up:            core.NewVec3(0, 1, 0),
		AspectRatio:   3.0 / 2.0,
		VFov:          20.0,
		Aperture:      0.1,
		FocusDistance: 10.0,
	}

	cameraConfig := defaultCameraConfig
	if len(cameraOverrides) > 0 {
		cameraConfig = geometry.MergeCameraConfig(defaultCameraConfig, cameraOverrides[0])
	}

	s := New("random-spheres", cameraConfig, renderer.Config{
		Width:           600,
		Height:          400,
		SamplesPerPixel: 100,
		MaxDepth:        50,
		Seed:            seed,
	})

	random := rand.New(rand.NewSource(seed))

	ground := s.AddMaterial(material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5)))
	s.AddSphere(core.NewVec3(0, -1000, 0), 1000, ground)

	glass := s.AddMaterial(material.NewDielectric(1.5))
	clearing := core.NewVec3(4, 0.2, 0)

	for a := -11; a < 11; a++ {
		for b := -11; b < 11; b++ {
			chooseMat := random.Float64()
			center := core.NewVec3(
				float64(a)+0.9*random.Float64(),
				0.2,
				float64(b)+0.9*random.Float64(),
			)

			// Keep the area around the metal feature sphere clear
			if center.Subtract(clearing).Length() <= 0.9 {
				continue
			}

			var mat material.Handle
			switch {
			case chooseMat < diffuseFraction:
				mat = s.AddMaterial(material.NewLambertian(core.RandomVec3(random)))
			case chooseMat < diffuseFraction+metalFraction:
				albedo := core.RandomVec3InRange(random, 0.5, 1.0)
				fuzz := core.RandomInRange(random, 0, 0.5)
				mat = s.AddMaterial(material.NewMetal(albedo, fuzz))
			default:
				mat = glass
			}
			s.AddSphere(center, 0.2, mat)
		}
	}

	s.AddSphere(core.NewVec3(0, 1, 0), 1.0, glass)
	s.AddSphere(core.NewVec3(-4, 1, 0), 1.0, s.AddMaterial(material.NewLambertian(core.NewVec3(0.4, 0.2, 0.1))))
	s.AddSphere(core.NewVec3(4, 1, 0), 1.0, s.AddMaterial(material.NewMetal(core.NewVec3(0.7, 0.6, 0.5), 0.0)))

	return s
}
