package geometry

import (
	"errors"
	"fmt"
	"sort"

	"github.com/df07/go-sphere-tracer/pkg/core"
	"github.com/df07/go-sphere-tracer/pkg/log"
	"github.com/df07/go-sphere-tracer/pkg/material"
)

var (
	// ErrEmptyBVH is returned when a BVH is built from no shapes
	ErrEmptyBVH = errors.New("bvh: no shapes")
	// ErrUnboundedShape is returned when a shape has no bounding box
	ErrUnboundedShape = errors.New("bvh: shape has no bounding box")
)

var logger = log.New("bvh")

// maxStackDepth bounds the traversal stack. Median splits keep the tree
// depth near log2(n), so this covers any scene that fits in memory.
const maxStackDepth = 64

// bvhNode is one entry of the node arena. Internal nodes store the
// indices of their child nodes; leaves store primitive indices, and a
// leaf over a single primitive stores it twice.
type bvhNode struct {
	box         core.AABB
	left, right int32
	leaf        bool
}

// BVH represents a Bounding Volume Hierarchy for fast ray-object intersection.
// It is read-only after construction and safe for concurrent Hit calls.
type BVH struct {
	nodes  []bvhNode
	shapes []Shape
	root   int32
}

// primitive caches a shape's box while building
type primitive struct {
	index int32
	box   core.AABB
}

// NewBVH constructs a BVH from a slice of shapes. The slice is copied;
// the caller may reuse it.
func NewBVH(shapes []Shape) (*BVH, error) {
	if len(shapes) == 0 {
		return nil, ErrEmptyBVH
	}

	bvh := &BVH{
		shapes: make([]Shape, len(shapes)),
		nodes:  make([]bvhNode, 0, 2*len(shapes)),
	}
	copy(bvh.shapes, shapes)

	prims := make([]primitive, len(shapes))
	for i, shape := range bvh.shapes {
		box, ok := shape.BoundingBox()
		if !ok {
			return nil, fmt.Errorf("shape %d: %w", i, ErrUnboundedShape)
		}
		prims[i] = primitive{index: int32(i), box: box}
	}

	bvh.root = bvh.build(prims, 0)

	stats := bvh.getStats()
	if stats.maxDepth >= maxStackDepth {
		return nil, fmt.Errorf("bvh: depth %d exceeds traversal limit %d", stats.maxDepth, maxStackDepth)
	}
	logger.Debugf("built BVH over %d shapes: %d nodes, %d leaves, max depth %d",
		len(shapes), stats.totalNodes, stats.leafNodes, stats.maxDepth)

	return bvh, nil
}

// build appends the subtree for prims to the arena and returns its index.
// The split axis cycles x, y, z with depth.
func (bvh *BVH) build(prims []primitive, depth int) int32 {
	axis := depth % 3
	less := func(a, b primitive) bool {
		return a.box.Min.Axis(axis) < b.box.Min.Axis(axis)
	}

	var node bvhNode
	switch len(prims) {
	case 1:
		node = bvhNode{
			box:   prims[0].box,
			left:  prims[0].index,
			right: prims[0].index,
			leaf:  true,
		}
	case 2:
		first, second := prims[0], prims[1]
		if less(second, first) {
			first, second = second, first
		}
		node = bvhNode{
			box:   first.box.Union(second.box),
			left:  first.index,
			right: second.index,
			leaf:  true,
		}
	default:
		sort.SliceStable(prims, func(i, j int) bool {
			return less(prims[i], prims[j])
		})
		mid := len(prims) / 2
		left := bvh.build(prims[:mid], depth+1)
		right := bvh.build(prims[mid:], depth+1)
		node = bvhNode{
			box:   bvh.nodes[left].box.Union(bvh.nodes[right].box),
			left:  left,
			right: right,
		}
	}

	bvh.nodes = append(bvh.nodes, node)
	return int32(len(bvh.nodes) - 1)
}

// Hit tests if a ray intersects any shape in the BVH and records the nearest hit
func (bvh *BVH) Hit(ray core.Ray, tMin, tMax float64, hit *material.HitRecord) bool {
	var stack [maxStackDepth]int32
	stack[0] = bvh.root
	sp := 1

	var temp material.HitRecord
	hitAnything := false
	closestSoFar := tMax

	for sp > 0 {
		sp--
		node := &bvh.nodes[stack[sp]]

		if !node.box.Hit(ray, tMin, closestSoFar) {
			continue
		}

		if node.leaf {
			if bvh.shapes[node.left].Hit(ray, tMin, closestSoFar, &temp) {
				hitAnything = true
				closestSoFar = temp.T
				*hit = temp
			}
			if node.right != node.left && bvh.shapes[node.right].Hit(ray, tMin, closestSoFar, &temp) {
				hitAnything = true
				closestSoFar = temp.T
				*hit = temp
			}
			continue
		}

		// Left is popped first; the narrowed bound then prunes the right subtree
		stack[sp] = node.right
		stack[sp+1] = node.left
		sp += 2
	}

	return hitAnything
}

// BoundingBox implements the Shape interface - returns the overall bounding box of the BVH
func (bvh *BVH) BoundingBox() (core.AABB, bool) {
	return bvh.nodes[bvh.root].box, true
}

// Len returns the number of shapes in the BVH
func (bvh *BVH) Len() int {
	return len(bvh.shapes)
}

// bvhStats contains statistics about the BVH structure
type bvhStats struct {
	totalNodes int
	leafNodes  int
	maxDepth   int
}

// getStats returns statistics about the BVH structure
func (bvh *BVH) getStats() bvhStats {
	stats := bvhStats{}
	bvh.collectStats(bvh.root, 0, &stats)
	return stats
}

// collectStats recursively collects statistics about the BVH
func (bvh *BVH) collectStats(index int32, depth int, stats *bvhStats) {
	stats.totalNodes++
	if depth > stats.maxDepth {
		stats.maxDepth = depth
	}

	node := bvh.nodes[index]
	if node.leaf {
		stats.leafNodes++
		return
	}
	bvh.collectStats(node.left, depth+1, stats)
	bvh.collectStats(node.right, depth+1, stats)
}
