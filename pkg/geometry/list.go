package geometry

import (
	"github.com/df07/go-sphere-tracer/pkg/core"
	"github.com/df07/go-sphere-tracer/pkg/material"
)

// List is a flat aggregate that tests every shape it holds.
// It is the reference the BVH must agree with, and is fine for small scenes.
type List struct {
	Shapes []Shape
}

// NewList creates an aggregate over shapes
func NewList(shapes ...Shape) *List {
	return &List{Shapes: shapes}
}

// Hit returns the closest hit among all shapes
func (l *List) Hit(ray core.Ray, tMin, tMax float64, hit *material.HitRecord) bool {
	var temp material.HitRecord
	hitAnything := false
	closestSoFar := tMax

	for _, shape := range l.Shapes {
		if shape.Hit(ray, tMin, closestSoFar, &temp) {
			hitAnything = true
			closestSoFar = temp.T
			*hit = temp
		}
	}

	return hitAnything
}

// BoundingBox returns the union of the children's boxes.
// It returns false when the list is empty or any child is unbounded.
func (l *List) BoundingBox() (core.AABB, bool) {
	if len(l.Shapes) == 0 {
		return core.AABB{}, false
	}

	var box core.AABB
	for i, shape := range l.Shapes {
		childBox, ok := shape.BoundingBox()
		if !ok {
			return core.AABB{}, false
		}
		if i == 0 {
			box = childBox
		} else {
			box = box.Union(childBox)
		}
	}
	return box, true
}
