package core

import (
	"math"
	"math/rand"
)

// ShadowEpsilon is the minimum hit distance used when tracing secondary rays.
// It keeps a scattered ray from re-hitting the surface it just left.
const ShadowEpsilon = 0.001

// RandomVec3 returns a vector with components uniform in [0, 1)
func RandomVec3(random *rand.Rand) Vec3 {
	return NewVec3(random.Float64(), random.Float64(), random.Float64())
}

// RandomVec3InRange returns a vector with components uniform in [lo, hi)
func RandomVec3InRange(random *rand.Rand, lo, hi float64) Vec3 {
	return NewVec3(
		RandomInRange(random, lo, hi),
		RandomInRange(random, lo, hi),
		RandomInRange(random, lo, hi),
	)
}

// RandomInRange returns a float64 uniform in [lo, hi)
func RandomInRange(random *rand.Rand, lo, hi float64) float64 {
	return lo + (hi-lo)*random.Float64()
}

// RandomUnitVector returns a uniformly distributed direction on the unit sphere
func RandomUnitVector(random *rand.Rand) Vec3 {
	a := 2.0 * math.Pi * random.Float64()
	z := RandomInRange(random, -1, 1)
	r := math.Sqrt(1.0 - z*z)
	return NewVec3(r*math.Cos(a), r*math.Sin(a), z)
}

// RandomInUnitSphere returns a point uniformly distributed inside the unit sphere
func RandomInUnitSphere(random *rand.Rand) Vec3 {
	for {
		p := RandomVec3InRange(random, -1, 1)
		if p.LengthSquared() < 1 {
			return p
		}
	}
}

// RandomInUnitDisk returns a point uniformly distributed inside the unit disk on z = 0
func RandomInUnitDisk(random *rand.Rand) Vec3 {
	for {
		p := NewVec3(RandomInRange(random, -1, 1), RandomInRange(random, -1, 1), 0)
		if p.LengthSquared() < 1 {
			return p
		}
	}
}

// RowSeed derives the seed for one scanline from the render seed.
// Each row gets its own stream, so the image does not depend on which
// worker renders which row. The mix is the SplitMix64 finalizer.
func RowSeed(seed int64, row int) int64 {
	z := uint64(seed) + uint64(row+1)*0x9E3779B97F4A7C15
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	z ^= z >> 31
	return int64(z)
}

// NewRowRandom returns the random generator for one scanline
func NewRowRandom(seed int64, row int) *rand.Rand {
	return rand.New(rand.NewSource(RowSeed(seed, row)))
}
