package scene

import (
	"path/filepath"
	"strings"

	"github.com/df07/go-sphere-tracer/pkg/core"
	"github.com/df07/go-sphere-tracer/pkg/geometry"
	"github.com/df07/go-sphere-tracer/pkg/loaders"
	"github.com/df07/go-sphere-tracer/pkg/renderer"
)

// NewGLTFScene loads spheres from a glTF file. A camera in the file is
// used when present; otherwise the camera frames the scene's bounds.
func NewGLTFScene(path string, cameraOverrides ...geometry.CameraOverride) (*Scene, error) {
	data, err := loaders.LoadGLTF(path)
	if err != nil {
		return nil, err
	}

	cameraConfig := frameShapes(data.Shapes)
	if data.Camera != nil {
		framing := cameraConfig
		cameraConfig = *data.Camera
		if cameraConfig.AspectRatio <= 0 {
			cameraConfig.AspectRatio = framing.AspectRatio
		}
	}
	if len(cameraOverrides) > 0 {
		cameraConfig = geometry.MergeCameraConfig(cameraConfig, cameraOverrides[0])
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	s := New(name, cameraConfig, renderer.DefaultConfig())
	s.Materials = data.Materials
	s.Shapes = data.Shapes

	logger.Debugf("loaded glTF scene %s with %d spheres", name, len(s.Shapes))
	return s, nil
}

// frameShapes returns a camera looking at the center of the shapes' bounds
// from above and in front, far enough back to see all of them
func frameShapes(shapes []geometry.Shape) geometry.CameraConfig {
	box, ok := geometry.NewList(shapes...).BoundingBox()
	center := core.NewVec3(0, 0, 0)
	extent := 1.0
	if ok {
		center = box.Center()
		extent = max(box.Size().Length(), 1e-3)
	}

	return geometry.CameraConfig{
		Center:      center.Add(core.NewVec3(0, 0.5*extent, 1.5*extent)),
		LookAt:      center,
		Up:          core.NewVec3(0, 1, 0),
		VFov:        40,
		AspectRatio: 16.0 / 9.0,
	}
}
