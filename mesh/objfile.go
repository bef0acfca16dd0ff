package mesh

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// Wavefront OBJ, triangles only via fan triangulation. Vertices are
// re-emitted per face corner so positions and normals share one index
// stream.
func decodeObj(name string, data []byte) (*Mesh, error) {
	var positions, normals [][3]float32

	m := &Mesh{Name: name}

	parseVec := func(fields []string) ([3]float32, error) {
		var v [3]float32
		if len(fields) < 3 {
			return v, fmt.Errorf("Obj '%s': expected 3 components, got %d", name, len(fields))
		}
		for i := 0; i < 3; i++ {
			f, err := strconv.ParseFloat(fields[i], 32)
			if err != nil {
				return v, fmt.Errorf("Obj '%s': bad float %q", name, fields[i])
			}
			v[i] = float32(f)
		}
		return v, nil
	}

	// index spec is v, v/vt, v/vt/vn or v//vn; 1-based, negatives count
	// from the end
	resolveIndex := func(raw string, count int) (int, bool) {
		idx, err := strconv.Atoi(raw)
		if err != nil || idx == 0 {
			return 0, false
		}
		if idx < 0 {
			idx = count + idx
		} else {
			idx--
		}
		return idx, idx >= 0 && idx < count
	}

	emitCorner := func(spec string) error {
		parts := strings.Split(spec, "/")
		pi, ok := resolveIndex(parts[0], len(positions))
		if !ok {
			return fmt.Errorf("Obj '%s': bad vertex reference %q", name, spec)
		}

		m.Indices = append(m.Indices, uint32(len(m.Positions)))
		m.Positions = append(m.Positions, positions[pi])

		if len(parts) >= 3 && parts[2] != "" {
			if ni, ok := resolveIndex(parts[2], len(normals)); ok {
				m.Normals = append(m.Normals, normals[ni])
			} else {
				m.Normals = append(m.Normals, [3]float32{})
			}
		} else if m.Normals != nil {
			m.Normals = append(m.Normals, [3]float32{})
		}
		return nil
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		switch fields[0] {
		case "v":
			v, err := parseVec(fields[1:])
			if err != nil {
				return nil, err
			}
			positions = append(positions, v)
		case "vn":
			v, err := parseVec(fields[1:])
			if err != nil {
				return nil, err
			}
			if normals == nil {
				normals = make([][3]float32, 0, 64)
			}
			normals = append(normals, v)
			if m.Normals == nil {
				m.Normals = make([][3]float32, 0, 64)
			}
		case "f":
			corners := fields[1:]
			if len(corners) < 3 {
				return nil, fmt.Errorf("Obj '%s': face with %d corners", name, len(corners))
			}
			for i := 2; i < len(corners); i++ {
				for _, spec := range []string{corners[0], corners[i-1], corners[i]} {
					if err := emitCorner(spec); err != nil {
						return nil, err
					}
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("Obj '%s': scan error: %v", name, err)
	}
	if len(m.Positions) == 0 {
		return nil, fmt.Errorf("Obj '%s': no geometry", name)
	}

	return m, nil
}

func init() {
	SetDecoder(".obj", decodeObj)
}
