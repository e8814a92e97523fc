package geometry

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/df07/go-sphere-tracer/pkg/core"
)

// ErrInvalidCamera is returned for camera parameters that cannot form a view
var ErrInvalidCamera = errors.New("invalid camera")

// CameraConfig describes a thin-lens camera
type CameraConfig struct {
	Center        core.Vec3 // Look-from point
	LookAt        core.Vec3
	Up            core.Vec3
	VFov          float64 // Vertical field of view in degrees
	AspectRatio   float64 // Width / height
	Aperture      float64 // Lens diameter; 0 is a pinhole
	FocusDistance float64 // 0 focuses on LookAt
}

// Validate checks that the configuration describes a usable camera
func (c CameraConfig) Validate() error {
	if !(c.VFov > 0 && c.VFov < 180) {
		return fmt.Errorf("%w: vfov %g must be in (0, 180)", ErrInvalidCamera, c.VFov)
	}
	if !(c.AspectRatio > 0) {
		return fmt.Errorf("%w: aspect ratio %g must be positive", ErrInvalidCamera, c.AspectRatio)
	}
	if c.Aperture < 0 || c.FocusDistance < 0 {
		return fmt.Errorf("%w: aperture and focus distance must not be negative", ErrInvalidCamera)
	}
	forward := c.Center.Subtract(c.LookAt)
	if forward.NearZero() {
		return fmt.Errorf("%w: look-from equals look-at", ErrInvalidCamera)
	}
	if c.Up.Cross(forward).NearZero() {
		return fmt.Errorf("%w: up vector is parallel to the view direction", ErrInvalidCamera)
	}
	return nil
}

// Camera generates primary rays. It is immutable once built.
type Camera struct {
	origin          core.Vec3
	lowerLeftCorner core.Vec3
	horizontal      core.Vec3
	vertical        core.Vec3
	u, v, w         core.Vec3
	lensRadius      float64
}

// NewCamera creates a camera from config
func NewCamera(config CameraConfig) (*Camera, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	theta := config.VFov * math.Pi / 180
	viewportHeight := 2.0 * math.Tan(theta/2)
	viewportWidth := config.AspectRatio * viewportHeight

	focusDistance := config.FocusDistance
	if focusDistance == 0 {
		focusDistance = config.Center.Subtract(config.LookAt).Length()
	}

	// Orthonormal camera basis; w points backwards
	w := config.Center.Subtract(config.LookAt).Normalize()
	u := config.Up.Cross(w).Normalize()
	v := w.Cross(u)

	horizontal := u.Multiply(focusDistance * viewportWidth)
	vertical := v.Multiply(focusDistance * viewportHeight)
	lowerLeftCorner := config.Center.
		Subtract(horizontal.Multiply(0.5)).
		Subtract(vertical.Multiply(0.5)).
		Subtract(w.Multiply(focusDistance))

	return &Camera{
		origin:          config.Center,
		lowerLeftCorner: lowerLeftCorner,
		horizontal:      horizontal,
		vertical:        vertical,
		u:               u,
		v:               v,
		w:               w,
		lensRadius:      config.Aperture / 2,
	}, nil
}

// GetRay generates a ray for screen coordinates (s, t) where 0 <= s,t <= 1.
// (0, 0) is the bottom-left corner of the viewport.
func (c *Camera) GetRay(s, t float64, random *rand.Rand) core.Ray {
	origin := c.origin
	if c.lensRadius > 0 {
		rd := core.RandomInUnitDisk(random).Multiply(c.lensRadius)
		origin = origin.Add(c.u.Multiply(rd.X)).Add(c.v.Multiply(rd.Y))
	}

	direction := c.lowerLeftCorner.
		Add(c.horizontal.Multiply(s)).
		Add(c.vertical.Multiply(t)).
		Subtract(origin)

	return core.NewRay(origin, direction)
}

// CameraOverride changes selected fields of a CameraConfig. Nil fields
// keep the base value, so zero values such as a pinhole aperture or a
// look-at at the origin can be requested explicitly.
type CameraOverride struct {
	Center        *core.Vec3
	LookAt        *core.Vec3
	Up            *core.Vec3
	VFov          *float64
	AspectRatio   *float64
	Aperture      *float64
	FocusDistance *float64
}

// MergeCameraConfig returns base with every set field of override applied
func MergeCameraConfig(base CameraConfig, override CameraOverride) CameraConfig {
	if override.Center != nil {
		base.Center = *override.Center
	}
	if override.LookAt != nil {
		base.LookAt = *override.LookAt
	}
	if override.Up != nil {
		base.Up = *override.Up
	}
	if override.VFov != nil {
		base.VFov = *override.VFov
	}
	if override.AspectRatio != nil {
		base.AspectRatio = *override.AspectRatio
	}
	if override.Aperture != nil {
		base.Aperture = *override.Aperture
	}
	if override.FocusDistance != nil {
		base.FocusDistance = *override.FocusDistance
	}
	return base
}
