package export

import (
	"io"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/robograph/urdf_browser/kinematics"
)

// GLTF flattens the assembled kinematic tree into a glTF document:
// one glTF node per tree node with its local TRS, mesh nodes carrying a
// triangle primitive. Joint metadata has no glTF equivalent and is
// dropped here; it stays on the tree for api consumers.
func GLTF(t *kinematics.Tree) (*gltf.Document, error) {
	doc := gltf.NewDocument()
	doc.Scenes[0].Name = t.Name

	nodeIndex := make(map[kinematics.NodeId]uint32, len(t.Nodes))

	for _, n := range t.Nodes {
		if !t.Reachable(n.Id) {
			continue // orphans are reported as warnings, not exported
		}

		gn := &gltf.Node{
			Name:        n.Name,
			Translation: n.Translation,
			Rotation:    n.Rotation.V.Vec4(n.Rotation.W),
			Scale:       n.Scale,
		}

		if n.Mesh != nil {
			positionAccessor := modeler.WritePosition(doc, n.Mesh.Positions)
			attributes := map[string]uint32{
				"POSITION": positionAccessor,
			}
			if n.Mesh.Normals != nil {
				attributes["NORMAL"] = modeler.WriteNormal(doc, n.Mesh.Normals)
			}
			indicesAccessor := modeler.WriteIndices(doc, n.Mesh.Indices)

			doc.Meshes = append(doc.Meshes, &gltf.Mesh{
				Name: n.Name,
				Primitives: []*gltf.Primitive{
					{
						Indices:    &indicesAccessor,
						Attributes: attributes,
					},
				},
			})
			gn.Mesh = gltf.Index(uint32(len(doc.Meshes) - 1))
		}

		nodeIndex[n.Id] = uint32(len(doc.Nodes))
		doc.Nodes = append(doc.Nodes, gn)
	}

	for _, n := range t.Nodes {
		gi, exported := nodeIndex[n.Id]
		if !exported {
			continue
		}
		for _, child := range n.Children {
			if ci, ok := nodeIndex[child]; ok {
				doc.Nodes[gi].Children = append(doc.Nodes[gi].Children, ci)
			}
		}
	}

	if ri, ok := nodeIndex[t.Root]; ok {
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, ri)
	}

	return doc, nil
}

// WriteBinary encodes the tree as a .glb stream.
func WriteBinary(w io.Writer, t *kinematics.Tree) error {
	doc, err := GLTF(t)
	if err != nil {
		return err
	}

	encoder := gltf.NewEncoder(w)
	encoder.AsBinary = true
	return encoder.Encode(doc)
}
