package mesh

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const STL_BINARY_HEADER_SIZE = 84
const STL_BINARY_FACET_SIZE = 50

// looks like ascii when it opens with "solid" and a facet keyword shows
// up early; some binary exporters still write "solid" into the comment
// header, hence the second check
func stlIsAscii(data []byte) bool {
	if !bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte("solid")) {
		return false
	}
	probe := data
	if len(probe) > 1024 {
		probe = probe[:1024]
	}
	return bytes.Contains(probe, []byte("facet"))
}

func decodeStlBinary(name string, data []byte) (*Mesh, error) {
	if len(data) < STL_BINARY_HEADER_SIZE {
		return nil, fmt.Errorf("Stl '%s' too short: %d bytes", name, len(data))
	}

	count := binary.LittleEndian.Uint32(data[80:84])
	need := STL_BINARY_HEADER_SIZE + int(count)*STL_BINARY_FACET_SIZE
	if len(data) < need {
		return nil, fmt.Errorf("Stl '%s' truncated: want %d bytes, have %d", name, need, len(data))
	}

	m := &Mesh{
		Name:      name,
		Positions: make([][3]float32, 0, count*3),
		Normals:   make([][3]float32, 0, count*3),
		Indices:   make([]uint32, 0, count*3),
	}

	readVec := func(off int) [3]float32 {
		return [3]float32{
			math.Float32frombits(binary.LittleEndian.Uint32(data[off : off+4])),
			math.Float32frombits(binary.LittleEndian.Uint32(data[off+4 : off+8])),
			math.Float32frombits(binary.LittleEndian.Uint32(data[off+8 : off+12])),
		}
	}

	for i := 0; i < int(count); i++ {
		off := STL_BINARY_HEADER_SIZE + i*STL_BINARY_FACET_SIZE
		normal := readVec(off)
		for v := 0; v < 3; v++ {
			m.Indices = append(m.Indices, uint32(len(m.Positions)))
			m.Positions = append(m.Positions, readVec(off+12+v*12))
			m.Normals = append(m.Normals, normal)
		}
	}

	return m, nil
}

func decodeStlAscii(name string, data []byte) (*Mesh, error) {
	m := &Mesh{Name: name}

	var normal [3]float32
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "facet":
			if len(fields) >= 5 && fields[1] == "normal" {
				for i := 0; i < 3; i++ {
					f, _ := strconv.ParseFloat(fields[2+i], 32)
					normal[i] = float32(f)
				}
			}
		case "vertex":
			if len(fields) < 4 {
				return nil, fmt.Errorf("Stl '%s': bad vertex line %q", name, scanner.Text())
			}
			var p [3]float32
			for i := 0; i < 3; i++ {
				f, err := strconv.ParseFloat(fields[1+i], 32)
				if err != nil {
					return nil, fmt.Errorf("Stl '%s': bad vertex component %q", name, fields[1+i])
				}
				p[i] = float32(f)
			}
			m.Indices = append(m.Indices, uint32(len(m.Positions)))
			m.Positions = append(m.Positions, p)
			m.Normals = append(m.Normals, normal)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("Stl '%s': scan error: %v", name, err)
	}
	if len(m.Positions) == 0 {
		return nil, fmt.Errorf("Stl '%s': no vertices", name)
	}

	return m, nil
}

func init() {
	SetDecoder(".stl", func(name string, data []byte) (*Mesh, error) {
		if stlIsAscii(data) {
			return decodeStlAscii(name, data)
		}
		return decodeStlBinary(name, data)
	})
}
