package urdf

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Origin is a parent-relative pose: translation plus fixed-axis
// roll/pitch/yaw in radians. Zero value means identity.
type Origin struct {
	XYZ mgl32.Vec3
	RPY mgl32.Vec3
}

// Visual is one renderable geometry reference owned by a link.
// Mesh holds the raw reference string exactly as written in the
// document; resolution rules live in the meshcache package.
type Visual struct {
	Name   string
	Origin Origin
	Mesh   string
	Scale  mgl32.Vec3
}

type Limits struct {
	Lower    float32
	Upper    float32
	Effort   float32
	Velocity float32
}

// Joint connects a parent link to a child link. Type is preserved
// verbatim even when unrecognized. Axis (0,0,0) means unspecified and
// must not be normalized.
type Joint struct {
	Name   string
	Type   string
	Parent string
	Child  string
	Origin Origin
	Axis   mgl32.Vec3
	Limits *Limits
}

type Link struct {
	Name    string
	Visuals []Visual
}

// Document is the flat intermediate model: links and joints in document
// order. Notes records entities the parser had to skip; they are
// advisory, the parse itself still succeeded.
type Document struct {
	Name   string
	Links  []Link
	Joints []Joint
	Notes  []string
}

// Link returns the named link or nil.
func (d *Document) Link(name string) *Link {
	for i := range d.Links {
		if d.Links[i].Name == name {
			return &d.Links[i]
		}
	}
	return nil
}
