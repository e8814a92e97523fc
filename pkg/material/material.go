// Package material implements the surface scattering models.
//
// The set of models is closed: a Material is a tagged value whose Kind
// selects which fields are meaningful. Materials live in a Table and
// shapes refer to them by Handle, so many shapes can share one material.
package material

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/df07/go-sphere-tracer/pkg/core"
)

// ErrInvalidMaterial is returned when a material's parameters are out of range
var ErrInvalidMaterial = errors.New("invalid material")

// Kind identifies the scattering model of a Material
type Kind int

const (
	KindLambertian Kind = iota
	KindMetal
	KindDielectric
)

func (k Kind) String() string {
	switch k {
	case KindLambertian:
		return "lambertian"
	case KindMetal:
		return "metal"
	case KindDielectric:
		return "dielectric"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Material describes how light scatters off a surface.
//
// Albedo is used by Lambertian and Metal, Fuzz by Metal and
// RefractiveIndex by Dielectric.
type Material struct {
	Kind            Kind
	Albedo          core.Vec3
	Fuzz            float64
	RefractiveIndex float64
}

// Scatter computes the scattered ray and its attenuation.
// It returns false when the ray is absorbed.
func (m Material) Scatter(rayIn core.Ray, hit HitRecord, random *rand.Rand) (ScatterResult, bool) {
	switch m.Kind {
	case KindLambertian:
		return scatterLambertian(m, hit, random)
	case KindMetal:
		return scatterMetal(m, rayIn, hit, random)
	case KindDielectric:
		return scatterDielectric(m, rayIn, hit, random)
	default:
		return ScatterResult{}, false
	}
}

// Validate checks that the parameters are physically meaningful
func (m Material) Validate() error {
	switch m.Kind {
	case KindLambertian, KindMetal:
		if !inUnitRange(m.Albedo) {
			return fmt.Errorf("%w: %s albedo %v outside [0,1]", ErrInvalidMaterial, m.Kind, m.Albedo)
		}
		if m.Kind == KindMetal && (m.Fuzz < 0 || m.Fuzz > 1) {
			return fmt.Errorf("%w: metal fuzz %g outside [0,1]", ErrInvalidMaterial, m.Fuzz)
		}
	case KindDielectric:
		if !(m.RefractiveIndex > 0) {
			return fmt.Errorf("%w: refractive index %g must be positive", ErrInvalidMaterial, m.RefractiveIndex)
		}
	default:
		return fmt.Errorf("%w: unknown %s", ErrInvalidMaterial, m.Kind)
	}
	return nil
}

func inUnitRange(c core.Vec3) bool {
	return c.X >= 0 && c.X <= 1 && c.Y >= 0 && c.Y <= 1 && c.Z >= 0 && c.Z <= 1
}
