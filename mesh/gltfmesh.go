package mesh

import (
	"bytes"
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// glTF 2.0, both .gltf (json) and .glb containers. Every triangle
// primitive of every mesh in the document is flattened into one Mesh;
// node hierarchy inside the asset is ignored, placement comes from the
// owning visual.
func decodeGltf(name string, data []byte) (*Mesh, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(bytes.NewReader(data)).Decode(doc); err != nil {
		return nil, fmt.Errorf("Gltf '%s': %v", name, err)
	}

	m := &Mesh{Name: name}

	for _, gm := range doc.Meshes {
		for _, prim := range gm.Primitives {
			posAccessor, found := prim.Attributes["POSITION"]
			if !found {
				continue
			}

			positions, err := modeler.ReadPosition(doc, doc.Accessors[posAccessor], nil)
			if err != nil {
				return nil, fmt.Errorf("Gltf '%s' mesh %q: positions: %v", name, gm.Name, err)
			}

			var normals [][3]float32
			if normAccessor, found := prim.Attributes["NORMAL"]; found {
				normals, err = modeler.ReadNormal(doc, doc.Accessors[normAccessor], nil)
				if err != nil {
					return nil, fmt.Errorf("Gltf '%s' mesh %q: normals: %v", name, gm.Name, err)
				}
			}

			var indices []uint32
			if prim.Indices != nil {
				indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
				if err != nil {
					return nil, fmt.Errorf("Gltf '%s' mesh %q: indices: %v", name, gm.Name, err)
				}
			} else {
				indices = make([]uint32, len(positions))
				for i := range indices {
					indices[i] = uint32(i)
				}
			}

			vertexBase := uint32(len(m.Positions))
			m.Positions = append(m.Positions, positions...)
			if normals != nil {
				if m.Normals == nil {
					m.Normals = make([][3]float32, vertexBase)
				}
				m.Normals = append(m.Normals, normals...)
			} else if m.Normals != nil {
				m.Normals = append(m.Normals, make([][3]float32, len(positions))...)
			}
			for _, idx := range indices {
				m.Indices = append(m.Indices, vertexBase+idx)
			}
		}
	}

	if len(m.Positions) == 0 {
		return nil, fmt.Errorf("Gltf '%s': no triangle primitives", name)
	}

	return m, nil
}

func init() {
	SetDecoder(".gltf", decodeGltf)
	SetDecoder(".glb", decodeGltf)
}
