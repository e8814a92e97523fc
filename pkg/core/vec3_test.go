package core

import (
	"math"
	"testing"
)

const tolerance = 1e-9

func vecClose(a, b Vec3) bool {
	return a.Subtract(b).Length() <= tolerance
}

func TestVec3_Arithmetic(t *testing.T) {
	a := NewVec3(1, 2, 3)
	b := NewVec3(-4, 0.5, 2)

	tests := []struct {
		name     string
		result   Vec3
		expected Vec3
	}{
		{"Add", a.Add(b), NewVec3(-3, 2.5, 5)},
		{"Subtract", a.Subtract(b), NewVec3(5, 1.5, 1)},
		{"Multiply", a.Multiply(2), NewVec3(2, 4, 6)},
		{"Divide", a.Divide(2), NewVec3(0.5, 1, 1.5)},
		{"MultiplyVec", a.MultiplyVec(b), NewVec3(-4, 1, 6)},
		{"Negate", a.Negate(), NewVec3(-1, -2, -3)},
		{"Cross", NewVec3(1, 0, 0).Cross(NewVec3(0, 1, 0)), NewVec3(0, 0, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !vecClose(tt.result, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, tt.result)
			}
		})
	}
}

func TestVec3_AlgebraLaws(t *testing.T) {
	vectors := []Vec3{
		NewVec3(1, 2, 3),
		NewVec3(-0.5, 4, 0),
		NewVec3(7, -3, 2.25),
		NewVec3(0, 0, 1),
	}

	for _, a := range vectors {
		for _, b := range vectors {
			if !vecClose(a.Add(b), b.Add(a)) {
				t.Errorf("Add not commutative for %v, %v", a, b)
			}
			if math.Abs(a.Dot(b)-b.Dot(a)) > tolerance {
				t.Errorf("Dot not symmetric for %v, %v", a, b)
			}
			cross := a.Cross(b)
			if math.Abs(cross.Dot(a)) > 1e-9 || math.Abs(cross.Dot(b)) > 1e-9 {
				t.Errorf("Cross %v not orthogonal to inputs %v, %v", cross, a, b)
			}
			if !vecClose(a.Subtract(b), a.Add(b.Negate())) {
				t.Errorf("Subtract != Add(Negate) for %v, %v", a, b)
			}
		}
		if math.Abs(a.Normalize().Length()-1) > tolerance {
			t.Errorf("Normalize(%v) has length %f", a, a.Normalize().Length())
		}
		if math.Abs(a.Dot(a)-a.LengthSquared()) > tolerance {
			t.Errorf("Dot(a, a) != LengthSquared for %v", a)
		}
	}
}

func TestVec3_NearZero(t *testing.T) {
	if !NewVec3(1e-9, -1e-9, 0).NearZero() {
		t.Error("Expected tiny vector to be near zero")
	}
	if NewVec3(0, 1e-7, 0).NearZero() {
		t.Error("Expected vector with 1e-7 component not to be near zero")
	}
}

func TestVec3_Clamp(t *testing.T) {
	result := NewVec3(-1, 0.5, 2).Clamp(0, 0.999)
	expected := NewVec3(0, 0.5, 0.999)
	if !result.Equals(expected) {
		t.Errorf("Expected %v, got %v", expected, result)
	}
}

func TestRay_At(t *testing.T) {
	ray := NewRay(NewVec3(1, 1, 1), NewVec3(0, 2, 0))
	if got := ray.At(1.5); !vecClose(got, NewVec3(1, 4, 1)) {
		t.Errorf("Expected (1,4,1), got %v", got)
	}
	if got := ray.At(0); !got.Equals(ray.Origin) {
		t.Errorf("Expected origin at t=0, got %v", got)
	}
}
