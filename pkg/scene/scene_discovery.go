package scene

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/qmuntal/gltf"
)

// SceneInfo represents a discovered scene with its metadata
type SceneInfo struct {
	ID          string `json:"id"`          // Unique identifier
	Name        string `json:"name"`        // Scene name
	DisplayName string `json:"displayName"` // UI display name
	Description string `json:"description"` // Optional description
	Group       string `json:"group"`       // Grouping category
	Type        string `json:"type"`        // "builtin" or "gltf"
	FilePath    string `json:"filePath"`    // Path to glTF file (gltf type only)
}

// SceneGroup represents a group of related scenes
type SceneGroup struct {
	Name   string      `json:"name"`
	Scenes []SceneInfo `json:"scenes"`
}

// ScenesResponse represents the complete response for /api/scenes
type ScenesResponse struct {
	Groups []SceneGroup `json:"groups"`
}

const (
	builtinGroup = "Built-in Scenes"
	gltfGroup    = "glTF Scenes"
	gltfPrefix   = "gltf:"
)

// SceneDirs lists the directories searched for glTF scenes. The first
// one that exists wins.
var SceneDirs = []string{"scenes", "../scenes"}

// ListGLTFScenes scans the scene directory and returns discovered glTF scenes
func ListGLTFScenes() ([]SceneInfo, error) {
	var scenesDir string
	for _, path := range SceneDirs {
		if _, err := os.Stat(path); err == nil {
			scenesDir = path
			break
		}
	}

	scenes := []SceneInfo{}
	if scenesDir == "" {
		return scenes, nil
	}

	var files []string
	for _, ext := range []string{"*.gltf", "*.glb"} {
		matches, err := filepath.Glob(filepath.Join(scenesDir, ext))
		if err != nil {
			return nil, fmt.Errorf("failed to scan scenes directory: %w", err)
		}
		files = append(files, matches...)
	}

	for _, filePath := range files {
		info, err := ParseGLTFMetadata(filePath)
		if err != nil {
			logger.Warningf("failed to parse metadata for %s: %v", filePath, err)
			continue
		}
		scenes = append(scenes, info)
	}

	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].DisplayName < scenes[j].DisplayName
	})

	return scenes, nil
}

// ParseGLTFMetadata describes a glTF file. The name comes from the active
// glTF scene when it has one, otherwise from the file name.
func ParseGLTFMetadata(filePath string) (SceneInfo, error) {
	filename := filepath.Base(filePath)
	nameWithoutExt := strings.TrimSuffix(filename, filepath.Ext(filename))

	info := SceneInfo{
		ID:          gltfPrefix + nameWithoutExt,
		Name:        titleCase(nameWithoutExt),
		DisplayName: titleCase(nameWithoutExt),
		Group:       gltfGroup,
		Type:        "gltf",
		FilePath:    filePath,
	}

	doc, err := gltf.Open(filePath)
	if err != nil {
		return info, err
	}

	if len(doc.Scenes) > 0 {
		active := 0
		if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
			active = *doc.Scene
		}
		if name := strings.TrimSpace(doc.Scenes[active].Name); name != "" {
			info.Name = name
			info.DisplayName = name
		}
	}

	meshNodes := 0
	for _, node := range doc.Nodes {
		if node.Mesh != nil {
			meshNodes++
		}
	}
	info.Description = fmt.Sprintf("%d spheres from %s", meshNodes, filename)

	return info, nil
}

// ListAllScenes returns both built-in and glTF scenes, grouped by category
func ListAllScenes() (ScenesResponse, error) {
	var response ScenesResponse

	allScenes := make([]SceneInfo, 0, len(builtins))
	for _, b := range builtins {
		allScenes = append(allScenes, b.info)
	}

	gltfScenes, err := ListGLTFScenes()
	if err != nil {
		return response, fmt.Errorf("failed to list glTF scenes: %w", err)
	}
	allScenes = append(allScenes, gltfScenes...)

	groupMap := make(map[string][]SceneInfo)
	for _, scene := range allScenes {
		groupMap[scene.Group] = append(groupMap[scene.Group], scene)
	}

	// Built-in first, then alphabetical
	var groupNames []string
	for groupName := range groupMap {
		if groupName != builtinGroup {
			groupNames = append(groupNames, groupName)
		}
	}
	sort.Strings(groupNames)

	if group, exists := groupMap[builtinGroup]; exists {
		response.Groups = append(response.Groups, SceneGroup{Name: builtinGroup, Scenes: group})
	}
	for _, groupName := range groupNames {
		response.Groups = append(response.Groups, SceneGroup{Name: groupName, Scenes: groupMap[groupName]})
	}

	return response, nil
}

// titleCase converts a filename-style string to title case
// e.g., "random-spheres" -> "Random Spheres"
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	words := strings.Fields(s)
	for i, word := range words {
		first, size := utf8.DecodeRuneInString(word)
		words[i] = string(unicode.ToTitle(first)) + strings.ToLower(word[size:])
	}

	return strings.Join(words, " ")
}
