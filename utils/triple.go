package utils

import (
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// ParseTriple parses a whitespace-separated "x y z" string.
// Components that fail to parse fall back to the matching component of
// def instead of poisoning the whole vector.
func ParseTriple(s string, def mgl32.Vec3) mgl32.Vec3 {
	v := def
	for i, field := range strings.Fields(s) {
		if i >= 3 {
			break
		}
		if f, err := strconv.ParseFloat(field, 32); err == nil {
			v[i] = float32(f)
		} else {
			v[i] = def[i]
		}
	}
	return v
}

// ParseFloatDefault parses a single float attribute, 0 on failure.
func ParseFloatDefault(s string) float32 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 32)
	if err != nil {
		return 0
	}
	return float32(f)
}
