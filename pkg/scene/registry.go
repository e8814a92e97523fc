package scene

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownScene is returned by Create for names it cannot resolve
var ErrUnknownScene = errors.New("unknown scene")

// DefaultSeed seeds the random-spheres layout when created by name
const DefaultSeed = 42

type builtin struct {
	info   SceneInfo
	create func() *Scene
}

var builtins = []builtin{
	{
		info: SceneInfo{
			ID:          "random-spheres",
			Name:        "Random Spheres",
			Description: "Ground sphere with a field of small random spheres and three large ones",
		},
		create: func() *Scene { return NewRandomSpheresScene(DefaultSeed) },
	},
	{
		info: SceneInfo{
			ID:          "glass",
			Name:        "Glass",
			Description: "Two glass spheres and a polished metal sphere",
		},
		create: func() *Scene { return NewGlassScene() },
	},
	{
		info: SceneInfo{
			ID:          "simple",
			Name:        "Simple",
			Description: "One diffuse sphere over a ground sphere",
		},
		create: func() *Scene { return NewSimpleScene() },
	},
	{
		info: SceneInfo{
			ID:          "spheregrid",
			Name:        "Sphere Grid",
			Description: "20x20 grid of rainbow-colored metallic spheres",
		},
		create: func() *Scene { return NewSphereGridScene(20) },
	},
	{
		info: SceneInfo{
			ID:          "default",
			Name:        "Default Scene",
			Description: "Mixed materials with a hollow glass sphere",
		},
		create: func() *Scene { return NewDefaultScene() },
	},
}

func init() {
	for i := range builtins {
		builtins[i].info.DisplayName = builtins[i].info.Name
		builtins[i].info.Group = builtinGroup
		builtins[i].info.Type = "builtin"
	}
}

// Names returns the IDs of the built-in scenes
func Names() []string {
	names := make([]string, len(builtins))
	for i, b := range builtins {
		names[i] = b.info.ID
	}
	return names
}

// Create builds a scene from a built-in ID or a discovered "gltf:<name>" ID
func Create(id string) (*Scene, error) {
	for _, b := range builtins {
		if b.info.ID == id {
			return b.create(), nil
		}
	}

	if strings.HasPrefix(id, gltfPrefix) {
		scenes, err := ListGLTFScenes()
		if err != nil {
			return nil, err
		}
		for _, info := range scenes {
			if info.ID == id {
				return NewGLTFScene(info.FilePath)
			}
		}
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownScene, id)
}
