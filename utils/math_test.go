package utils_test

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"

	"github.com/robograph/urdf_browser/utils"
)

func TestRPYToQuatIdentity(t *testing.T) {
	q := utils.RPYToQuat(mgl32.Vec3{0, 0, 0})
	assert.Equal(t, mgl32.QuatIdent(), q)
}

func TestRPYToQuatDeterministic(t *testing.T) {
	rpy := mgl32.Vec3{0.3, -1.2, 2.7}
	assert.Equal(t, utils.RPYToQuat(rpy), utils.RPYToQuat(rpy))
}

// composition must equal the matrix product Rz(yaw)*Ry(pitch)*Rx(roll)
func TestRPYToQuatCompositionOrder(t *testing.T) {
	cases := []mgl32.Vec3{
		{math.Pi / 2, 0, 0},
		{0, math.Pi / 2, 0},
		{0, 0, math.Pi / 2},
		{0.5, 0.25, -0.75},
		{-2.1, 1.3, 0.4},
		{math.Pi, -math.Pi / 3, math.Pi / 6},
	}

	for _, rpy := range cases {
		want := mgl32.HomogRotate3DZ(rpy[2]).
			Mul4(mgl32.HomogRotate3DY(rpy[1])).
			Mul4(mgl32.HomogRotate3DX(rpy[0]))
		got := utils.RPYToQuat(rpy).Mat4()

		for i := 0; i < 16; i++ {
			assert.InDeltaf(t, want[i], got[i], 1e-5, "rpy %v mat element %d", rpy, i)
		}
	}
}

func TestQuatToRPYRoundTrip(t *testing.T) {
	rpy := mgl32.Vec3{0.3, 0.6, -1.1}
	back := utils.QuatToRPY(utils.RPYToQuat(rpy))
	for i := 0; i < 3; i++ {
		assert.InDelta(t, rpy[i], back[i], 1e-5)
	}
}

func TestParseTriple(t *testing.T) {
	zero := mgl32.Vec3{}
	ones := mgl32.Vec3{1, 1, 1}

	assert.Equal(t, mgl32.Vec3{1, 2.5, -3}, utils.ParseTriple("1 2.5 -3", zero))
	assert.Equal(t, zero, utils.ParseTriple("", zero))
	assert.Equal(t, ones, utils.ParseTriple("", ones))
	// a bad token poisons only its own component
	assert.Equal(t, mgl32.Vec3{1, 0, 3}, utils.ParseTriple("1 oops 3", zero))
	// tabs and repeated spaces
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, utils.ParseTriple(" 1\t2   3 ", zero))
	// extra tokens ignored
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, utils.ParseTriple("1 2 3 4 5", zero))
}

func TestRandomNamesUnique(t *testing.T) {
	var rng utils.RandomNameGenerator
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		name := rng.RandomName("visual")
		assert.False(t, seen[name], "duplicate generated name %q", name)
		seen[name] = true
	}
}
