package mesh_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robograph/urdf_browser/mesh"
)

func TestDecodeObj(t *testing.T) {
	obj := `# quad, fan-triangulated into two triangles
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vn 0 0 1
f 1//1 2//1 3//1 4//1
`
	m, err := mesh.Decode("quad.obj", []byte(obj))
	require.NoError(t, err)

	assert.Equal(t, 2, m.TriangleCount())
	require.Len(t, m.Positions, 6)
	assert.Equal(t, [3]float32{0, 0, 0}, m.Positions[0])
	assert.Equal(t, [3]float32{1, 1, 0}, m.Positions[2])
	assert.Equal(t, [3]float32{0, 0, 1}, m.Normals[0])
}

func TestDecodeObjNegativeIndices(t *testing.T) {
	obj := `v 0 0 0
v 1 0 0
v 0 1 0
f -3 -2 -1
`
	m, err := mesh.Decode("tri.obj", []byte(obj))
	require.NoError(t, err)
	assert.Equal(t, 1, m.TriangleCount())
	assert.Equal(t, [3]float32{0, 1, 0}, m.Positions[2])
}

func TestDecodeObjBadIndex(t *testing.T) {
	_, err := mesh.Decode("bad.obj", []byte("v 0 0 0\nf 1 2 3\n"))
	assert.Error(t, err)
}

func TestDecodeObjEmpty(t *testing.T) {
	_, err := mesh.Decode("empty.obj", []byte("# nothing\n"))
	assert.Error(t, err)
}
