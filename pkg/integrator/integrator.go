// Package integrator estimates the radiance carried back along a camera ray.
package integrator

import (
	"math/rand"

	"github.com/df07/go-sphere-tracer/pkg/core"
	"github.com/df07/go-sphere-tracer/pkg/geometry"
)

// Integrator defines the interface for light transport algorithms.
// Implementations must be safe for concurrent use with distinct random generators.
type Integrator interface {
	RayColor(ray core.Ray, world geometry.Shape, random *rand.Rand) core.Vec3
}

var (
	skyWhite = core.NewVec3(1.0, 1.0, 1.0)
	skyBlue  = core.NewVec3(0.5, 0.7, 1.0)
)

// SkyGradient returns the background color seen along ray: white at the
// horizon and below, blending to light blue straight up.
func SkyGradient(ray core.Ray) core.Vec3 {
	unitDirection := ray.Direction.Normalize()
	t := 0.5 * (unitDirection.Y + 1.0)
	return skyWhite.Lerp(skyBlue, t)
}
