package loaders

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"

	"github.com/df07/go-sphere-tracer/pkg/core"
	"github.com/df07/go-sphere-tracer/pkg/geometry"
	"github.com/df07/go-sphere-tracer/pkg/log"
	"github.com/df07/go-sphere-tracer/pkg/material"
)

var logger = log.New("loaders")

// ErrNoSpheres is returned when a glTF document yields no renderable nodes
var ErrNoSpheres = errors.New("gltf: document contains no mesh nodes")

// metallicThreshold splits glTF metallic factors between Lambertian and Metal
const metallicThreshold = 0.5

// glassIOR is used for materials with alpha blending
const glassIOR = 1.5

// SceneData holds the shapes, materials and optional camera read from a glTF file
type SceneData struct {
	Shapes    []geometry.Shape
	Materials *material.Table
	Camera    *geometry.CameraConfig // nil when the document has no camera node
}

// LoadGLTF reads a .gltf or .glb file and converts it to sphere scene data.
// Every node that references a mesh becomes a sphere at the node's world
// position, sized by its largest scale axis.
func LoadGLTF(path string) (*SceneData, error) {
	if err := validateFilePath(path); err != nil {
		return nil, err
	}

	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open glTF file %s: %w", path, err)
	}

	data, err := SceneFromDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return data, nil
}

// validateFilePath rejects paths that are empty, contain null bytes,
// climb out of the working directory or do not name a glTF file
func validateFilePath(path string) error {
	if path == "" {
		return fmt.Errorf("filename cannot be empty")
	}
	if strings.Contains(path, "\x00") {
		return fmt.Errorf("invalid file path: null bytes not allowed")
	}
	if len(path) > 512 {
		return fmt.Errorf("file path too long: maximum 512 characters allowed")
	}

	clean := filepath.Clean(path)
	if !filepath.IsAbs(clean) && (clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator))) {
		return fmt.Errorf("invalid file path: directory traversal not allowed")
	}

	switch strings.ToLower(filepath.Ext(clean)) {
	case ".gltf", ".glb":
		return nil
	default:
		return fmt.Errorf("invalid file type: only .gltf and .glb files are allowed")
	}
}

// SceneFromDocument converts an already decoded glTF document
func SceneFromDocument(doc *gltf.Document) (*SceneData, error) {
	c := &converter{
		doc:     doc,
		data:    &SceneData{Materials: material.NewTable()},
		handles: make(map[int]material.Handle),
	}

	for _, root := range rootNodes(doc) {
		if err := c.visit(root, identity(), 0); err != nil {
			return nil, err
		}
	}

	if len(c.data.Shapes) == 0 {
		return nil, ErrNoSpheres
	}

	logger.Debugf("loaded %d spheres and %d materials from glTF", len(c.data.Shapes), c.data.Materials.Len())
	return c.data, nil
}

// rootNodes returns the nodes of the document's active scene. Documents
// without scenes fall back to every node that is nobody's child.
func rootNodes(doc *gltf.Document) []int {
	if len(doc.Scenes) > 0 {
		index := 0
		if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
			index = *doc.Scene
		}
		return doc.Scenes[index].Nodes
	}

	isChild := make([]bool, len(doc.Nodes))
	for _, node := range doc.Nodes {
		for _, child := range node.Children {
			if child >= 0 && child < len(isChild) {
				isChild[child] = true
			}
		}
	}

	var roots []int
	for i := range doc.Nodes {
		if !isChild[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

type converter struct {
	doc     *gltf.Document
	data    *SceneData
	handles map[int]material.Handle // glTF material index -> table handle

	defaultHandle *material.Handle
}

// maxNodeDepth guards against cyclic node graphs in malformed files
const maxNodeDepth = 64

func (c *converter) visit(index int, parent affine, depth int) error {
	if index < 0 || index >= len(c.doc.Nodes) {
		return fmt.Errorf("gltf: node index %d out of range", index)
	}
	if depth >= maxNodeDepth {
		return fmt.Errorf("gltf: node hierarchy deeper than %d", maxNodeDepth)
	}

	node := c.doc.Nodes[index]
	world := parent.compose(localTransform(node))

	if node.Mesh != nil {
		if err := c.addSphere(node, world); err != nil {
			return err
		}
	}
	if node.Camera != nil && c.data.Camera == nil {
		c.setCamera(node, world)
	}

	for _, child := range node.Children {
		if err := c.visit(child, world, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (c *converter) addSphere(node *gltf.Node, world affine) error {
	radius := world.maxScale()
	if radius <= 0 || math.IsNaN(radius) {
		logger.Warningf("skipping node %q: zero scale", node.Name)
		return nil
	}

	handle, err := c.meshMaterial(*node.Mesh)
	if err != nil {
		return err
	}

	c.data.Shapes = append(c.data.Shapes, geometry.NewSphere(world.t, radius, handle))
	return nil
}

// meshMaterial resolves the material of the mesh's first primitive
func (c *converter) meshMaterial(meshIndex int) (material.Handle, error) {
	if meshIndex < 0 || meshIndex >= len(c.doc.Meshes) {
		return 0, fmt.Errorf("gltf: mesh index %d out of range", meshIndex)
	}

	mesh := c.doc.Meshes[meshIndex]
	if len(mesh.Primitives) == 0 || mesh.Primitives[0].Material == nil {
		return c.defaultMaterial()
	}

	index := *mesh.Primitives[0].Material
	if handle, ok := c.handles[index]; ok {
		return handle, nil
	}
	if index < 0 || index >= len(c.doc.Materials) {
		logger.Warningf("mesh %q references missing material %d, using default", mesh.Name, index)
		return c.defaultMaterial()
	}

	handle, err := c.data.Materials.Add(convertMaterial(c.doc.Materials[index]))
	if err != nil {
		return 0, fmt.Errorf("gltf material %d: %w", index, err)
	}
	c.handles[index] = handle
	return handle, nil
}

func (c *converter) defaultMaterial() (material.Handle, error) {
	if c.defaultHandle != nil {
		return *c.defaultHandle, nil
	}
	handle, err := c.data.Materials.Add(material.NewLambertian(core.NewVec3(0.8, 0.8, 0.8)))
	if err != nil {
		return 0, err
	}
	c.defaultHandle = &handle
	return handle, nil
}

// convertMaterial maps a glTF PBR material onto the closest sphere material.
// Blended materials become glass, metallic ones become fuzzed metal with the
// roughness as fuzz, and everything else is diffuse with the base color.
func convertMaterial(m *gltf.Material) material.Material {
	if m.AlphaMode == gltf.AlphaBlend {
		return material.NewDielectric(glassIOR)
	}

	albedo := core.NewVec3(1, 1, 1)
	metallic, roughness := 1.0, 1.0
	if pbr := m.PBRMetallicRoughness; pbr != nil {
		base := pbr.BaseColorFactorOrDefault()
		albedo = core.NewVec3(base[0], base[1], base[2]).Clamp(0, 1)
		metallic = pbr.MetallicFactorOrDefault()
		roughness = pbr.RoughnessFactorOrDefault()
	}

	if metallic >= metallicThreshold {
		return material.NewMetal(albedo, roughness)
	}
	return material.NewLambertian(albedo)
}

func (c *converter) setCamera(node *gltf.Node, world affine) {
	index := *node.Camera
	if index < 0 || index >= len(c.doc.Cameras) {
		logger.Warningf("node %q references missing camera %d", node.Name, index)
		return
	}

	cam := c.doc.Cameras[index]
	if cam.Perspective == nil {
		logger.Warningf("camera %q is not perspective, ignoring", cam.Name)
		return
	}

	// glTF cameras look down -Z with +Y up
	forward := world.z.Negate().Normalize()
	config := geometry.CameraConfig{
		Center: world.t,
		LookAt: world.t.Add(forward),
		Up:     world.y.Normalize(),
		VFov:   cam.Perspective.Yfov * 180 / math.Pi,
	}
	if cam.Perspective.AspectRatio != nil {
		config.AspectRatio = *cam.Perspective.AspectRatio
	}
	c.data.Camera = &config
}

// affine is a 3x4 transform stored as basis columns plus translation
type affine struct {
	x, y, z, t core.Vec3
}

func identity() affine {
	return affine{
		x: core.NewVec3(1, 0, 0),
		y: core.NewVec3(0, 1, 0),
		z: core.NewVec3(0, 0, 1),
	}
}

// localTransform reads a node's matrix, or its TRS properties when no
// matrix is given
func localTransform(node *gltf.Node) affine {
	if node.Matrix != [16]float64{} && node.Matrix != identityMatrix {
		m := node.Matrix // column-major
		return affine{
			x: core.NewVec3(m[0], m[1], m[2]),
			y: core.NewVec3(m[4], m[5], m[6]),
			z: core.NewVec3(m[8], m[9], m[10]),
			t: core.NewVec3(m[12], m[13], m[14]),
		}
	}

	t := node.TranslationOrDefault()
	r := node.RotationOrDefault()
	s := node.ScaleOrDefault()
	return affine{
		x: rotate(r, core.NewVec3(s[0], 0, 0)),
		y: rotate(r, core.NewVec3(0, s[1], 0)),
		z: rotate(r, core.NewVec3(0, 0, s[2])),
		t: core.NewVec3(t[0], t[1], t[2]),
	}
}

var identityMatrix = [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}

func (a affine) applyDir(v core.Vec3) core.Vec3 {
	return a.x.Multiply(v.X).Add(a.y.Multiply(v.Y)).Add(a.z.Multiply(v.Z))
}

func (a affine) compose(child affine) affine {
	return affine{
		x: a.applyDir(child.x),
		y: a.applyDir(child.y),
		z: a.applyDir(child.z),
		t: a.applyDir(child.t).Add(a.t),
	}
}

func (a affine) maxScale() float64 {
	return max(a.x.Length(), a.y.Length(), a.z.Length())
}

// rotate applies the unit quaternion q = (x, y, z, w) to v
func rotate(q [4]float64, v core.Vec3) core.Vec3 {
	u := core.NewVec3(q[0], q[1], q[2])
	w := q[3]
	// v' = v + 2w(u x v) + 2u x (u x v)
	uv := u.Cross(v)
	return v.Add(uv.Multiply(2 * w)).Add(u.Cross(uv).Multiply(2))
}
