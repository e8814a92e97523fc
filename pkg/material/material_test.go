package material

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/df07/go-sphere-tracer/pkg/core"
)

func TestLambertian_Scatter(t *testing.T) {
	albedo := core.NewVec3(0.5, 0.6, 0.7)
	lambertian := NewLambertian(albedo)
	random := rand.New(rand.NewSource(42))
	hit := HitRecord{Point: core.NewVec3(1, 2, 3), Normal: core.NewVec3(0, 1, 0), FrontFace: true}

	for i := 0; i < 1000; i++ {
		result, ok := lambertian.Scatter(core.NewRay(core.NewVec3(1, 5, 3), core.NewVec3(0, -1, 0)), hit, random)
		if !ok {
			t.Fatal("Lambertian should always scatter")
		}
		if !result.Attenuation.Equals(albedo) {
			t.Fatalf("Expected attenuation %v, got %v", albedo, result.Attenuation)
		}
		// normal + unit vector never points below the surface
		if result.Scattered.Direction.Dot(hit.Normal) < 0 {
			t.Fatalf("Scattered direction %v points below the surface", result.Scattered.Direction)
		}
		if result.Scattered.Direction.NearZero() {
			t.Fatal("Scattered direction must not be degenerate")
		}
	}
}

func TestScatter_EnergyBounds(t *testing.T) {
	// No material may amplify light: attenuation stays within [0,1]
	materials := []Material{
		NewLambertian(core.NewVec3(0.9, 0.1, 0.5)),
		NewMetal(core.NewVec3(1, 1, 1), 0.3),
		NewDielectric(1.5),
	}
	random := rand.New(rand.NewSource(7))

	for _, m := range materials {
		t.Run(m.Kind.String(), func(t *testing.T) {
			for i := 0; i < 500; i++ {
				normal := core.RandomUnitVector(random)
				hit := HitRecord{Point: core.NewVec3(0, 0, 0), Normal: normal, FrontFace: random.Float64() < 0.5}
				dir := core.RandomUnitVector(random)
				if dir.Dot(normal) > 0 {
					dir = dir.Negate()
				}
				result, ok := m.Scatter(core.NewRay(normal, dir), hit, random)
				if !ok {
					continue
				}
				a := result.Attenuation
				if a.X < 0 || a.X > 1 || a.Y < 0 || a.Y > 1 || a.Z < 0 || a.Z > 1 {
					t.Fatalf("Attenuation %v outside [0,1]", a)
				}
			}
		})
	}
}

func TestMaterial_Validate(t *testing.T) {
	tests := []struct {
		name    string
		m       Material
		wantErr bool
	}{
		{"Valid lambertian", NewLambertian(core.NewVec3(0.5, 0.5, 0.5)), false},
		{"Albedo above one", NewLambertian(core.NewVec3(1.2, 0.5, 0.5)), true},
		{"Negative albedo", NewMetal(core.NewVec3(0.5, -0.1, 0.5), 0), true},
		{"Valid glass", NewDielectric(1.5), false},
		{"Zero ior", NewDielectric(0), true},
		{"Unknown kind", Material{Kind: Kind(42)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.m.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidMaterial) {
					t.Errorf("Expected ErrInvalidMaterial, got %v", err)
				}
			} else if err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}

func TestTable(t *testing.T) {
	table := NewTable()

	ground, err := table.Add(NewLambertian(core.NewVec3(0.5, 0.5, 0.5)))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	glass := table.MustAdd(NewDielectric(1.5))

	if ground == glass {
		t.Error("Expected distinct handles")
	}
	if table.Len() != 2 {
		t.Errorf("Expected 2 materials, got %d", table.Len())
	}
	if table.Get(glass).Kind != KindDielectric {
		t.Errorf("Expected dielectric, got %v", table.Get(glass).Kind)
	}

	if _, err := table.Add(NewDielectric(-1)); !errors.Is(err, ErrInvalidMaterial) {
		t.Errorf("Expected ErrInvalidMaterial, got %v", err)
	}
	if table.Len() != 2 {
		t.Errorf("Invalid material must not be stored, got %d entries", table.Len())
	}
}
