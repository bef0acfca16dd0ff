package mesh

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

// Minimal COLLADA (.dae) geometry reader: library_geometries only,
// triangles primitive. Scenes, materials and controllers in the file
// are ignored.

type colladaRoot struct {
	Geometries []colladaGeometry `xml:"library_geometries>geometry"`
}

type colladaGeometry struct {
	ID   string      `xml:"id,attr"`
	Name string      `xml:"name,attr"`
	Mesh colladaMesh `xml:"mesh"`
}

type colladaMesh struct {
	Sources   []colladaSource    `xml:"source"`
	Vertices  colladaVertices    `xml:"vertices"`
	Triangles []colladaTriangles `xml:"triangles"`
}

type colladaSource struct {
	ID     string `xml:"id,attr"`
	Floats string `xml:"float_array"`
}

type colladaVertices struct {
	ID     string         `xml:"id,attr"`
	Inputs []colladaInput `xml:"input"`
}

type colladaTriangles struct {
	Count  int            `xml:"count,attr"`
	Inputs []colladaInput `xml:"input"`
	P      string         `xml:"p"`
}

type colladaInput struct {
	Semantic string `xml:"semantic,attr"`
	Source   string `xml:"source,attr"`
	Offset   int    `xml:"offset,attr"`
}

func colladaFloats(raw string) ([][3]float32, error) {
	fields := strings.Fields(raw)
	if len(fields)%3 != 0 {
		return nil, fmt.Errorf("float_array length %d not divisible by 3", len(fields))
	}
	out := make([][3]float32, len(fields)/3)
	for i, field := range fields {
		f, err := strconv.ParseFloat(field, 32)
		if err != nil {
			return nil, fmt.Errorf("bad float %q in float_array", field)
		}
		out[i/3][i%3] = float32(f)
	}
	return out, nil
}

func stripRef(s string) string {
	return strings.TrimPrefix(s, "#")
}

func decodeCollada(name string, data []byte) (*Mesh, error) {
	var root colladaRoot
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("Dae '%s': %v", name, err)
	}
	if len(root.Geometries) == 0 {
		return nil, fmt.Errorf("Dae '%s': no geometries", name)
	}

	m := &Mesh{Name: name}

	for _, geom := range root.Geometries {
		sources := make(map[string][][3]float32)
		for _, src := range geom.Mesh.Sources {
			floats, err := colladaFloats(src.Floats)
			if err != nil {
				return nil, fmt.Errorf("Dae '%s' geometry %q: %v", name, geom.ID, err)
			}
			sources[src.ID] = floats
		}

		// <vertices> aliases its POSITION input's source
		var positionSource string
		for _, input := range geom.Mesh.Vertices.Inputs {
			if input.Semantic == "POSITION" {
				positionSource = stripRef(input.Source)
			}
		}

		for _, tris := range geom.Mesh.Triangles {
			stride := 1
			vertexOffset, normalOffset := 0, -1
			var normalSource string
			for _, input := range tris.Inputs {
				if input.Offset+1 > stride {
					stride = input.Offset + 1
				}
				switch input.Semantic {
				case "VERTEX":
					vertexOffset = input.Offset
				case "NORMAL":
					normalOffset = input.Offset
					normalSource = stripRef(input.Source)
				}
			}

			positions, found := sources[positionSource]
			if !found {
				return nil, fmt.Errorf("Dae '%s' geometry %q: missing position source %q", name, geom.ID, positionSource)
			}
			var normals [][3]float32
			if normalOffset >= 0 {
				normals = sources[normalSource]
			}

			indices := strings.Fields(tris.P)
			if stride == 0 || len(indices)%stride != 0 {
				return nil, fmt.Errorf("Dae '%s' geometry %q: index list length %d vs stride %d", name, geom.ID, len(indices), stride)
			}

			for corner := 0; corner*stride < len(indices); corner++ {
				base := corner * stride

				pi, err := strconv.Atoi(indices[base+vertexOffset])
				if err != nil || pi < 0 || pi >= len(positions) {
					return nil, fmt.Errorf("Dae '%s' geometry %q: bad vertex index %q", name, geom.ID, indices[base+vertexOffset])
				}

				m.Indices = append(m.Indices, uint32(len(m.Positions)))
				m.Positions = append(m.Positions, positions[pi])

				if normals != nil {
					ni, err := strconv.Atoi(indices[base+normalOffset])
					if err != nil || ni < 0 || ni >= len(normals) {
						return nil, fmt.Errorf("Dae '%s' geometry %q: bad normal index %q", name, geom.ID, indices[base+normalOffset])
					}
					if m.Normals == nil {
						m.Normals = make([][3]float32, len(m.Positions)-1)
					}
					m.Normals = append(m.Normals, normals[ni])
				} else if m.Normals != nil {
					m.Normals = append(m.Normals, [3]float32{})
				}
			}
		}
	}

	if len(m.Positions) == 0 {
		return nil, fmt.Errorf("Dae '%s': no triangle data", name)
	}

	return m, nil
}

func init() {
	SetDecoder(".dae", decodeCollada)
}
