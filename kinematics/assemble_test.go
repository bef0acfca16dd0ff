package kinematics_test

import (
	"context"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robograph/urdf_browser/kinematics"
	"github.com/robograph/urdf_browser/mesh"
	"github.com/robograph/urdf_browser/meshcache"
	"github.com/robograph/urdf_browser/urdf"
	"github.com/robograph/urdf_browser/vfs"
)

func init() {
	mesh.SetDecoder(".tri", func(name string, data []byte) (*mesh.Mesh, error) {
		return &mesh.Mesh{
			Name:      name,
			Positions: [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
			Indices:   []uint32{0, 1, 2},
		}, nil
	})
}

func okFetcher() vfs.Fetcher {
	return vfs.FetcherFunc(func(ctx context.Context, location string) ([]byte, error) {
		return []byte("tri"), nil
	})
}

func assemble(t *testing.T, doc *urdf.Document, fetcher vfs.Fetcher) (*kinematics.Tree, []kinematics.Warning) {
	t.Helper()
	cache := meshcache.NewCache(fetcher)
	tree, warnings, err := kinematics.Assemble(context.Background(), doc, cache, kinematics.Options{
		MeshBase: "/assets",
	})
	require.NoError(t, err)
	return tree, warnings
}

func kindsOfChildren(tree *kinematics.Tree, id kinematics.NodeId, kind kinematics.NodeKind) []kinematics.NodeId {
	out := []kinematics.NodeId{}
	for _, c := range tree.Node(id).Children {
		if tree.Node(c).Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// fixed joint base->arm at (1,0,0): arm sits exactly one unit along x
// from base
func TestFixedJointOffset(t *testing.T) {
	doc := &urdf.Document{
		Name:  "two_links",
		Links: []urdf.Link{{Name: "base"}, {Name: "arm"}},
		Joints: []urdf.Joint{{
			Name: "base_to_arm", Type: "fixed",
			Parent: "base", Child: "arm",
			Origin: urdf.Origin{XYZ: mgl32.Vec3{1, 0, 0}},
		}},
	}

	tree, warnings := assemble(t, doc, okFetcher())
	assert.Empty(t, warnings)

	baseId := tree.FindByName(kinematics.NODE_LINK, "base")
	armId := tree.FindByName(kinematics.NODE_LINK, "arm")
	require.NotEqual(t, kinematics.NODE_INVALID, baseId)
	require.NotEqual(t, kinematics.NODE_INVALID, armId)

	basePos, _ := tree.WorldPose(baseId)
	armPos, _ := tree.WorldPose(armId)
	assert.Equal(t, mgl32.Vec3{0, 0, 0}, basePos)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, armPos.Sub(basePos))

	// base is the only root link, arm hangs off the joint
	assert.Equal(t, tree.Root, tree.Node(baseId).Parent)
	jointId := tree.FindByName(kinematics.NODE_JOINT, "base_to_arm")
	assert.Equal(t, jointId, tree.Node(armId).Parent)
	assert.Equal(t, "fixed", tree.Node(jointId).Joint.Type)
}

func TestJointRotationComposes(t *testing.T) {
	// yaw the joint 90 degrees, then translate the child's own visual-less
	// frame via a second joint along x: the grandchild ends up on y
	doc := &urdf.Document{
		Links: []urdf.Link{{Name: "a"}, {Name: "b"}, {Name: "c"}},
		Joints: []urdf.Joint{
			{
				Name: "a_b", Type: "revolute", Parent: "a", Child: "b",
				Origin: urdf.Origin{RPY: mgl32.Vec3{0, 0, mgl32.DegToRad(90)}},
				Axis:   mgl32.Vec3{0, 0, 1},
			},
			{
				Name: "b_c", Type: "fixed", Parent: "b", Child: "c",
				Origin: urdf.Origin{XYZ: mgl32.Vec3{1, 0, 0}},
			},
		},
	}

	tree, warnings := assemble(t, doc, okFetcher())
	assert.Empty(t, warnings)

	cPos, _ := tree.WorldPose(tree.FindByName(kinematics.NODE_LINK, "c"))
	assert.InDelta(t, 0, cPos.X(), 1e-5)
	assert.InDelta(t, 1, cPos.Y(), 1e-5)
	assert.InDelta(t, 0, cPos.Z(), 1e-5)
}

// two links, no joints: both are root links under the robot root
func TestTwoIndependentRoots(t *testing.T) {
	doc := &urdf.Document{
		Links: []urdf.Link{{Name: "left"}, {Name: "right"}},
	}

	tree, warnings := assemble(t, doc, okFetcher())
	assert.Empty(t, warnings)

	roots := kindsOfChildren(tree, tree.Root, kinematics.NODE_LINK)
	require.Len(t, roots, 2)
	assert.Equal(t, "left", tree.Node(roots[0]).Name)
	assert.Equal(t, "right", tree.Node(roots[1]).Name)
}

// a joint with a missing parent link is skipped, but its child is still
// claimed: not a root, just orphaned, with a warning telling why
func TestDanglingJointOrphansChild(t *testing.T) {
	doc := &urdf.Document{
		Links: []urdf.Link{{Name: "base"}, {Name: "lost"}},
		Joints: []urdf.Joint{{
			Name: "ghost", Type: "fixed", Parent: "no_such_link", Child: "lost",
		}},
	}

	tree, warnings := assemble(t, doc, okFetcher())

	require.Len(t, warnings, 1)
	assert.Equal(t, kinematics.WARN_DANGLING_JOINT_REFERENCE, warnings[0].Kind)
	assert.Equal(t, "ghost", warnings[0].Subject)

	lostId := tree.FindByName(kinematics.NODE_LINK, "lost")
	assert.Equal(t, kinematics.NODE_INVALID, tree.Node(lostId).Parent)
	assert.False(t, tree.Reachable(lostId))

	roots := kindsOfChildren(tree, tree.Root, kinematics.NODE_LINK)
	require.Len(t, roots, 1)
	assert.Equal(t, "base", tree.Node(roots[0]).Name)
}

// a link cannot have two parents: first joint wins, second is reported
func TestDuplicateParentKeepsFirst(t *testing.T) {
	doc := &urdf.Document{
		Links: []urdf.Link{{Name: "a"}, {Name: "b"}, {Name: "c"}},
		Joints: []urdf.Joint{
			{Name: "j1", Type: "fixed", Parent: "a", Child: "c"},
			{Name: "j2", Type: "fixed", Parent: "b", Child: "c"},
		},
	}

	tree, warnings := assemble(t, doc, okFetcher())

	require.Len(t, warnings, 1)
	assert.Equal(t, kinematics.WARN_DUPLICATE_PARENT, warnings[0].Kind)
	assert.Equal(t, "c", warnings[0].Subject)

	cId := tree.FindByName(kinematics.NODE_LINK, "c")
	j1Id := tree.FindByName(kinematics.NODE_JOINT, "j1")
	assert.Equal(t, j1Id, tree.Node(cId).Parent)
	assert.Equal(t, kinematics.NODE_INVALID, tree.FindByName(kinematics.NODE_JOINT, "j2"))
}

// a two-joint loop a->b, b->a must not close the parent chain into a
// cycle: the second joint is skipped and the loop becomes an orphan
// subtree instead of an endless walk
func TestJointCycleSkipped(t *testing.T) {
	doc := &urdf.Document{
		Links: []urdf.Link{{Name: "a"}, {Name: "b"}},
		Joints: []urdf.Joint{
			{Name: "j1", Type: "fixed", Parent: "a", Child: "b"},
			{Name: "j2", Type: "fixed", Parent: "b", Child: "a"},
		},
	}

	tree, warnings := assemble(t, doc, okFetcher())

	require.Len(t, warnings, 1)
	assert.Equal(t, kinematics.WARN_JOINT_CYCLE, warnings[0].Kind)
	assert.Equal(t, "j2", warnings[0].Subject)
	assert.Equal(t, kinematics.NODE_INVALID, tree.FindByName(kinematics.NODE_JOINT, "j2"))

	// both links were claimed as children, so the whole loop is an
	// orphan; what matters is that parent walks terminate
	aId := tree.FindByName(kinematics.NODE_LINK, "a")
	bId := tree.FindByName(kinematics.NODE_LINK, "b")
	assert.False(t, tree.Reachable(aId))
	assert.False(t, tree.Reachable(bId))
	bPos, _ := tree.WorldPose(bId)
	assert.Equal(t, mgl32.Vec3{0, 0, 0}, bPos)
}

func TestSelfJointSkipped(t *testing.T) {
	doc := &urdf.Document{
		Links: []urdf.Link{{Name: "a"}},
		Joints: []urdf.Joint{
			{Name: "loop", Type: "fixed", Parent: "a", Child: "a"},
		},
	}

	tree, warnings := assemble(t, doc, okFetcher())

	require.Len(t, warnings, 1)
	assert.Equal(t, kinematics.WARN_JOINT_CYCLE, warnings[0].Kind)
	assert.Equal(t, "loop", warnings[0].Subject)

	aId := tree.FindByName(kinematics.NODE_LINK, "a")
	assert.Equal(t, kinematics.NODE_INVALID, tree.Node(aId).Parent)
	assert.False(t, tree.Reachable(aId))
}

// a repeated link name keeps the first definition, visuals included,
// and the repeat is reported like every other skipped entity
func TestDuplicateLinkNameWarns(t *testing.T) {
	doc := &urdf.Document{
		Links: []urdf.Link{
			{Name: "base", Visuals: []urdf.Visual{{Name: "kept", Mesh: "a.tri", Scale: mgl32.Vec3{1, 1, 1}}}},
			{Name: "base", Visuals: []urdf.Visual{{Name: "shadowed", Mesh: "b.tri", Scale: mgl32.Vec3{1, 1, 1}}}},
		},
	}

	tree, warnings := assemble(t, doc, okFetcher())

	require.Len(t, warnings, 1)
	assert.Equal(t, kinematics.WARN_DUPLICATE_LINK, warnings[0].Kind)
	assert.Equal(t, "base", warnings[0].Subject)

	baseId := tree.FindByName(kinematics.NODE_LINK, "base")
	visuals := kindsOfChildren(tree, baseId, kinematics.NODE_VISUAL)
	require.Len(t, visuals, 1)
	assert.Equal(t, "kept", tree.Node(visuals[0]).Name)
}

func TestVisualAttachmentAndScale(t *testing.T) {
	doc := &urdf.Document{
		Links: []urdf.Link{{
			Name: "base",
			Visuals: []urdf.Visual{
				{Name: "first", Mesh: "a.tri", Scale: mgl32.Vec3{2, 2, 2},
					Origin: urdf.Origin{XYZ: mgl32.Vec3{0, 0, 0.5}}},
				{Name: "second", Mesh: "b.tri", Scale: mgl32.Vec3{1, 1, 1}},
			},
		}},
	}

	tree, warnings := assemble(t, doc, okFetcher())
	assert.Empty(t, warnings)

	baseId := tree.FindByName(kinematics.NODE_LINK, "base")
	visuals := kindsOfChildren(tree, baseId, kinematics.NODE_VISUAL)
	require.Len(t, visuals, 2)

	// sibling order is document order, not load-completion order
	first := tree.Node(visuals[0])
	assert.Equal(t, "first", first.Name)
	assert.Equal(t, "second", tree.Node(visuals[1]).Name)

	assert.Equal(t, mgl32.Vec3{2, 2, 2}, first.Scale)
	assert.Equal(t, mgl32.Vec3{0, 0, 0.5}, first.Translation)

	meshes := kindsOfChildren(tree, first.Id, kinematics.NODE_MESH)
	require.Len(t, meshes, 1)
	mn := tree.Node(meshes[0])
	require.NotNil(t, mn.Mesh)
	assert.Equal(t, "/assets/a.tri", mn.MeshName)

	// instances are independent even for shared geometry
	otherMesh := tree.Node(kindsOfChildren(tree, tree.Node(visuals[1]).Id, kinematics.NODE_MESH)[0])
	require.NotSame(t, mn.Mesh, otherMesh.Mesh)
}

// the visual origin rpy lands on the visual node, not on the link
func TestVisualOriginRotation(t *testing.T) {
	doc := &urdf.Document{
		Links: []urdf.Link{{
			Name: "base",
			Visuals: []urdf.Visual{{
				Name: "tilted", Mesh: "a.tri", Scale: mgl32.Vec3{1, 1, 1},
				Origin: urdf.Origin{
					XYZ: mgl32.Vec3{0, 0, 0.5},
					RPY: mgl32.Vec3{0, 0, mgl32.DegToRad(90)},
				},
			}},
		}},
	}

	tree, warnings := assemble(t, doc, okFetcher())
	assert.Empty(t, warnings)

	baseId := tree.FindByName(kinematics.NODE_LINK, "base")
	visuals := kindsOfChildren(tree, baseId, kinematics.NODE_VISUAL)
	require.Len(t, visuals, 1)

	meshes := kindsOfChildren(tree, visuals[0], kinematics.NODE_MESH)
	require.Len(t, meshes, 1)
	pos, rot := tree.WorldPose(meshes[0])
	assert.Equal(t, mgl32.Vec3{0, 0, 0.5}, pos)

	// a yawed visual carries the x axis onto y
	x := rot.Rotate(mgl32.Vec3{1, 0, 0})
	assert.InDelta(t, 0, x.X(), 1e-5)
	assert.InDelta(t, 1, x.Y(), 1e-5)
	assert.InDelta(t, 0, x.Z(), 1e-5)

	assert.Equal(t, mgl32.QuatIdent(), tree.Node(baseId).Rotation)
}

// a failed mesh fetch leaves the link in place with zero visuals and a
// warning, nothing else is dropped
func TestMeshLoadFailureIsolated(t *testing.T) {
	fetcher := vfs.FetcherFunc(func(ctx context.Context, location string) ([]byte, error) {
		if location == "/assets/broken.tri" {
			return nil, errors.Errorf("404")
		}
		return []byte("tri"), nil
	})

	doc := &urdf.Document{
		Links: []urdf.Link{
			{Name: "base", Visuals: []urdf.Visual{{Name: "v", Mesh: "broken.tri", Scale: mgl32.Vec3{1, 1, 1}}}},
			{Name: "other", Visuals: []urdf.Visual{{Name: "w", Mesh: "fine.tri", Scale: mgl32.Vec3{1, 1, 1}}}},
		},
	}

	tree, warnings := assemble(t, doc, fetcher)

	require.Len(t, warnings, 1)
	assert.Equal(t, kinematics.WARN_MESH_LOAD_FAILED, warnings[0].Kind)
	assert.Equal(t, "base", warnings[0].Subject)

	baseId := tree.FindByName(kinematics.NODE_LINK, "base")
	require.NotEqual(t, kinematics.NODE_INVALID, baseId)
	assert.True(t, tree.Reachable(baseId))
	assert.Empty(t, kindsOfChildren(tree, baseId, kinematics.NODE_VISUAL))

	otherId := tree.FindByName(kinematics.NODE_LINK, "other")
	assert.Len(t, kindsOfChildren(tree, otherId, kinematics.NODE_VISUAL), 1)
}

func TestUnresolvedPackageWarning(t *testing.T) {
	doc := &urdf.Document{
		Links: []urdf.Link{{Name: "base", Visuals: []urdf.Visual{
			{Mesh: "package://missing/m.tri", Scale: mgl32.Vec3{1, 1, 1}},
		}}},
	}

	tree, warnings := assemble(t, doc, okFetcher())

	require.Len(t, warnings, 1)
	assert.Equal(t, kinematics.WARN_UNRESOLVED_PACKAGE, warnings[0].Kind)

	baseId := tree.FindByName(kinematics.NODE_LINK, "base")
	assert.Empty(t, kindsOfChildren(tree, baseId, kinematics.NODE_VISUAL))
}

// unnamed visuals still get stable generated names
func TestUnnamedVisualGetsName(t *testing.T) {
	doc := &urdf.Document{
		Links: []urdf.Link{{Name: "base", Visuals: []urdf.Visual{
			{Mesh: "a.tri", Scale: mgl32.Vec3{1, 1, 1}},
		}}},
	}

	tree, warnings := assemble(t, doc, okFetcher())
	assert.Empty(t, warnings)

	visuals := kindsOfChildren(tree, tree.FindByName(kinematics.NODE_LINK, "base"), kinematics.NODE_VISUAL)
	require.Len(t, visuals, 1)
	assert.NotEmpty(t, tree.Node(visuals[0]).Name)
}

func TestRootReorientation(t *testing.T) {
	doc := &urdf.Document{Links: []urdf.Link{{Name: "base"}}}

	cache := meshcache.NewCache(okFetcher())
	tree, _, err := kinematics.Assemble(context.Background(), doc, cache, kinematics.Options{
		RootRPY: mgl32.Vec3{mgl32.DegToRad(-90), 0, 0},
	})
	require.NoError(t, err)

	// correction lands on the robot root, links stay identity
	assert.NotEqual(t, mgl32.QuatIdent(), tree.Node(tree.Root).Rotation)
	baseId := tree.FindByName(kinematics.NODE_LINK, "base")
	assert.Equal(t, mgl32.QuatIdent(), tree.Node(baseId).Rotation)
}

func TestParserNotesBecomeWarnings(t *testing.T) {
	doc := &urdf.Document{
		Name:  "r",
		Notes: []string{"skipped visual #0 of link \"a\": no mesh filename"},
		Links: []urdf.Link{{Name: "a"}},
	}

	_, warnings := assemble(t, doc, okFetcher())
	require.Len(t, warnings, 1)
	assert.Equal(t, kinematics.WARN_PARSER_NOTE, warnings[0].Kind)
}
