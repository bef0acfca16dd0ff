package mesh

import (
	"fmt"
	"path"
	"strings"
)

// Mesh is decoded triangle geometry. Cached meshes act as templates:
// every consumer works on its own Clone, the template itself is never
// attached to a scene.
type Mesh struct {
	Name      string
	Positions [][3]float32
	Normals   [][3]float32
	Indices   []uint32
}

func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

func (m *Mesh) Clone() *Mesh {
	c := &Mesh{
		Name:      m.Name,
		Positions: make([][3]float32, len(m.Positions)),
		Indices:   make([]uint32, len(m.Indices)),
	}
	copy(c.Positions, m.Positions)
	copy(c.Indices, m.Indices)
	if m.Normals != nil {
		c.Normals = make([][3]float32, len(m.Normals))
		copy(c.Normals, m.Normals)
	}
	return c
}

// Decoder turns raw fetched bytes into a Mesh. name is the resolved
// location, for labeling and error messages.
type Decoder func(name string, data []byte) (*Mesh, error)

var gDecoders map[string]Decoder = make(map[string]Decoder, 0)

func SetDecoder(ext string, d Decoder) {
	gDecoders[strings.ToLower(ext)] = d
}

// Decode dispatches on the location's file extension.
func Decode(location string, data []byte) (*Mesh, error) {
	ext := strings.ToLower(path.Ext(location))
	if d, found := gDecoders[ext]; found {
		return d(location, data)
	}
	return nil, fmt.Errorf("[mesh] Cannot find decoder for '%s' extension", ext)
}
