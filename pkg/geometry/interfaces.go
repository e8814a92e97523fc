package geometry

import (
	"github.com/df07/go-sphere-tracer/pkg/core"
	"github.com/df07/go-sphere-tracer/pkg/material"
)

// Shape interface for objects that can be hit by rays.
//
// Hit reports the closest intersection with t strictly inside (tMin, tMax)
// and fills hit only when it returns true. BoundingBox returns false for
// shapes without a finite bound.
type Shape interface {
	Hit(ray core.Ray, tMin, tMax float64, hit *material.HitRecord) bool
	BoundingBox() (core.AABB, bool)
}
