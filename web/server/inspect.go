package server

import (
	"fmt"
	"math"
	"math/rand"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/df07/go-sphere-tracer/pkg/core"
	"github.com/df07/go-sphere-tracer/pkg/geometry"
	"github.com/df07/go-sphere-tracer/pkg/material"
	"github.com/df07/go-sphere-tracer/pkg/scene"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	MaterialType string                 `json:"materialType,omitempty"`
	GeometryType string                 `json:"geometryType,omitempty"`
	Point        [3]float64             `json:"point"`
	Normal       [3]float64             `json:"normal"`
	Distance     float64                `json:"distance"`
	FrontFace    bool                   `json:"frontFace"`
	Properties   map[string]interface{} `json:"properties,omitempty"`
}

// InspectResult contains information about an object hit by an inspection ray
type InspectResult struct {
	Hit       bool
	HitRecord material.HitRecord
	Shape     geometry.Shape // The shape that was hit, nil if it could not be identified
}

func vecArray(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

func hexColor(v core.Vec3) string {
	c := v.Clamp(0, 1)
	return fmt.Sprintf("#%02x%02x%02x", int(c.X*255), int(c.Y*255), int(c.Z*255))
}

// extractMaterialInfo describes a material for the inspector
func extractMaterialInfo(mat material.Material) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	switch mat.Kind {
	case material.KindLambertian:
		properties["albedo"] = vecArray(mat.Albedo)
		properties["color"] = hexColor(mat.Albedo)
	case material.KindMetal:
		properties["albedo"] = vecArray(mat.Albedo)
		properties["color"] = hexColor(mat.Albedo)
		properties["fuzz"] = mat.Fuzz
	case material.KindDielectric:
		properties["refractiveIndex"] = mat.RefractiveIndex
		properties["color"] = "#ffffff" // Clear glass
	}

	return mat.Kind.String(), properties
}

// extractGeometryInfo describes a shape for the inspector
func extractGeometryInfo(shape geometry.Shape) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	switch geom := shape.(type) {
	case *geometry.Sphere:
		properties["center"] = vecArray(geom.Center)
		properties["radius"] = geom.Radius
		properties["hollow"] = geom.Radius < 0
		return "sphere", properties
	default:
		return "unknown", properties
	}
}

// inspectPixel casts a ray through the center of the given pixel and returns
// the first object hit
func inspectPixel(sceneObj *scene.Scene, width, height, pixelX, pixelY int) (InspectResult, error) {
	world, err := sceneObj.World()
	if err != nil {
		return InspectResult{}, err
	}
	camera, err := sceneObj.Camera(width, height)
	if err != nil {
		return InspectResult{}, err
	}

	// Same pixel mapping as the renderer, without jitter
	u := (float64(pixelX) + 0.5) / float64(max(width-1, 1))
	v := (float64(height-1-pixelY) + 0.5) / float64(max(height-1, 1))

	// A fixed seed keeps the lens sample repeatable
	ray := camera.GetRay(u, v, rand.New(rand.NewSource(0)))

	var hit material.HitRecord
	if !world.Hit(ray, core.ShadowEpsilon, math.Inf(1), &hit) {
		return InspectResult{Hit: false}, nil
	}

	// The BVH only returns the hit record, so find the shape it came from
	var temp material.HitRecord
	for _, shape := range sceneObj.Shapes {
		if shape.Hit(ray, core.ShadowEpsilon, hit.T+core.ShadowEpsilon, &temp) && temp.T == hit.T {
			return InspectResult{Hit: true, HitRecord: hit, Shape: shape}, nil
		}
	}

	return InspectResult{Hit: true, HitRecord: hit}, nil
}

// handleInspect handles ray casting inspection requests
func (s *Server) handleInspect(c echo.Context) error {
	values := c.QueryParams()

	width, err := parseIntParam(values, "width", 400, 1, maxImageSize)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	height, err := parseIntParam(values, "height", 225, 1, maxImageSize)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	pixelX, err := parseIntParam(values, "x", -1, 0, width-1)
	if err != nil || pixelX < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid x coordinate")
	}
	pixelY, err := parseIntParam(values, "y", -1, 0, height-1)
	if err != nil || pixelY < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid y coordinate")
	}

	sceneObj, err := createScene(c.QueryParam("scene"))
	if err != nil {
		return err
	}

	result, err := inspectPixel(sceneObj, width, height, pixelX, pixelY)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !result.Hit {
		return c.JSON(http.StatusOK, InspectResponse{Hit: false})
	}

	materialType, materialProps := extractMaterialInfo(sceneObj.Materials.Get(result.HitRecord.Material))
	geometryType, geometryProps := extractGeometryInfo(result.Shape)

	return c.JSON(http.StatusOK, InspectResponse{
		Hit:          true,
		MaterialType: materialType,
		GeometryType: geometryType,
		Point:        vecArray(result.HitRecord.Point),
		Normal:       vecArray(result.HitRecord.Normal),
		Distance:     result.HitRecord.T,
		FrontFace:    result.HitRecord.FrontFace,
		Properties: map[string]interface{}{
			"material": materialProps,
			"geometry": geometryProps,
		},
	})
}
