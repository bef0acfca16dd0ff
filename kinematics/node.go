package kinematics

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/robograph/urdf_browser/mesh"
	"github.com/robograph/urdf_browser/urdf"
)

type NodeId int

const NODE_INVALID NodeId = -1

type NodeKind int

const (
	NODE_ROOT NodeKind = iota
	NODE_LINK
	NODE_JOINT
	NODE_VISUAL
	NODE_MESH
)

func (k NodeKind) String() string {
	switch k {
	case NODE_ROOT:
		return "root"
	case NODE_LINK:
		return "link"
	case NODE_JOINT:
		return "joint"
	case NODE_VISUAL:
		return "visual"
	case NODE_MESH:
		return "mesh"
	default:
		return "unknown"
	}
}

func (k NodeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// JointMeta is carried as opaque metadata for downstream animation;
// assembly itself never interprets it into motion.
type JointMeta struct {
	Type   string       `json:"type"`
	Axis   mgl32.Vec3   `json:"axis"`
	Limits *urdf.Limits `json:"limits,omitempty"`
}

// Node is one entry of the tree arena. Children are owned exclusively:
// a node has at most one parent, links are parented by at most one
// joint, so the structure is acyclic by construction.
type Node struct {
	Id       NodeId   `json:"id"`
	Name     string   `json:"name"`
	Kind     NodeKind `json:"kind"`
	Parent   NodeId   `json:"parent"`
	Children []NodeId `json:"children,omitempty"`

	Translation mgl32.Vec3 `json:"translation"`
	Rotation    mgl32.Quat `json:"rotation"`
	Scale       mgl32.Vec3 `json:"scale"`

	Joint *JointMeta `json:"joint,omitempty"`

	Mesh     *mesh.Mesh `json:"-"`
	MeshName string     `json:"mesh,omitempty"`
}

// Tree is the assembled kinematic hierarchy, rooted at a synthetic
// robot-root node with id 0.
type Tree struct {
	Name  string  `json:"name"`
	Nodes []*Node `json:"nodes"`
	Root  NodeId  `json:"root"`
}

func newTree(name string) *Tree {
	t := &Tree{Name: name, Nodes: make([]*Node, 0, 16)}
	root := t.addNode(NODE_ROOT, "RobotRoot")
	t.Root = root.Id
	return t
}

func (t *Tree) addNode(kind NodeKind, name string) *Node {
	n := &Node{
		Id:       NodeId(len(t.Nodes)),
		Name:     name,
		Kind:     kind,
		Parent:   NODE_INVALID,
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
	t.Nodes = append(t.Nodes, n)
	return n
}

func (t *Tree) setParent(child, parent NodeId) {
	c := t.Node(child)
	c.Parent = parent
	p := t.Node(parent)
	p.Children = append(p.Children, child)
}

func (t *Tree) Node(id NodeId) *Node {
	if id == NODE_INVALID {
		return nil
	}
	return t.Nodes[id]
}

// isAncestor reports whether a is on the parent chain of `of`, the node
// itself included.
func (t *Tree) isAncestor(a, of NodeId) bool {
	for cur := of; cur != NODE_INVALID; cur = t.Node(cur).Parent {
		if cur == a {
			return true
		}
	}
	return false
}

// Reachable reports whether id can be walked up to the root node.
func (t *Tree) Reachable(id NodeId) bool {
	for id != NODE_INVALID {
		if id == t.Root {
			return true
		}
		id = t.Node(id).Parent
	}
	return false
}

// WorldPose composes local poses from the root down to id. Scale is a
// leaf concern of visual nodes and is not propagated.
func (t *Tree) WorldPose(id NodeId) (pos mgl32.Vec3, rot mgl32.Quat) {
	chain := make([]NodeId, 0, 8)
	for cur := id; cur != NODE_INVALID; cur = t.Node(cur).Parent {
		chain = append(chain, cur)
	}

	rot = mgl32.QuatIdent()
	for i := len(chain) - 1; i >= 0; i-- {
		n := t.Node(chain[i])
		pos = pos.Add(rot.Rotate(n.Translation))
		rot = rot.Mul(n.Rotation)
	}
	return pos, rot
}

// FindByName returns the first node of the given kind with this name,
// NODE_INVALID if absent.
func (t *Tree) FindByName(kind NodeKind, name string) NodeId {
	for _, n := range t.Nodes {
		if n.Kind == kind && n.Name == name {
			return n.Id
		}
	}
	return NODE_INVALID
}
