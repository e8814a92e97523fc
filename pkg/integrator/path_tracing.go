package integrator

import (
	"math"
	"math/rand"

	"github.com/df07/go-sphere-tracer/pkg/core"
	"github.com/df07/go-sphere-tracer/pkg/geometry"
	"github.com/df07/go-sphere-tracer/pkg/material"
)

// PathTracer implements unidirectional path tracing with a sky background
// as the only light source.
type PathTracer struct {
	Materials *material.Table
	MaxDepth  int // Bounce budget; each intersection test consumes one
}

// NewPathTracer creates a path tracer over the given material table
func NewPathTracer(materials *material.Table, maxDepth int) *PathTracer {
	return &PathTracer{Materials: materials, MaxDepth: maxDepth}
}

// RayColor computes the color for a single ray.
//
// The path is followed iteratively with a running throughput. A path that
// escapes returns throughput times the sky; a path that is absorbed or
// runs out of depth returns black.
func (pt *PathTracer) RayColor(ray core.Ray, world geometry.Shape, random *rand.Rand) core.Vec3 {
	throughput := core.NewVec3(1, 1, 1)
	var hit material.HitRecord

	for depth := pt.MaxDepth; depth > 0; depth-- {
		if !world.Hit(ray, core.ShadowEpsilon, math.Inf(1), &hit) {
			return throughput.MultiplyVec(SkyGradient(ray))
		}

		scatter, didScatter := pt.Materials.Get(hit.Material).Scatter(ray, hit, random)
		if !didScatter {
			return core.Vec3{}
		}

		throughput = throughput.MultiplyVec(scatter.Attenuation)
		ray = scatter.Scattered
	}

	return core.Vec3{}
}
