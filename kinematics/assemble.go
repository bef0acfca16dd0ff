package kinematics

import (
	"context"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/sync/errgroup"

	"github.com/robograph/urdf_browser/mesh"
	"github.com/robograph/urdf_browser/meshcache"
	"github.com/robograph/urdf_browser/urdf"
	"github.com/robograph/urdf_browser/utils"
)

type Options struct {
	// MeshBase is the base location relative mesh references resolve
	// against, typically the directory holding the document.
	MeshBase string
	// Packages maps package identifiers to base directories/urls for
	// package:// references.
	Packages map[string]string
	// RootRPY is an optional static reorientation of the whole robot,
	// for up-axis conventions. It lands on the robot-root node only,
	// individual links are never corrected.
	RootRPY mgl32.Vec3
	// MaxParallelLoads bounds concurrent mesh fetches, 0 means a
	// sensible default.
	MaxParallelLoads int
}

type visualTask struct {
	linkName string
	linkNode NodeId
	visual   *urdf.Visual

	instance *mesh.Mesh
	location string
	failure  *Warning
}

// Assemble builds the kinematic tree from the flat document model.
// Tree construction (links, joints, roots) is synchronous; mesh loads
// fan out afterwards and are joined before return, so visuals always
// attach under a stable link node and in document order. The only
// returned error is ctx cancellation; every recoverable condition
// becomes a Warning instead.
func Assemble(ctx context.Context, doc *urdf.Document, cache *meshcache.Cache, opts Options) (*Tree, []Warning, error) {
	t := newTree(doc.Name)
	warnings := make([]Warning, 0)

	for _, note := range doc.Notes {
		warnings = append(warnings, warn(WARN_PARSER_NOTE, doc.Name, "%s", note))
	}

	if opts.RootRPY != (mgl32.Vec3{}) {
		t.Node(t.Root).Rotation = utils.RPYToQuat(opts.RootRPY)
	}

	linkNodes := make(map[string]NodeId, len(doc.Links))
	for i := range doc.Links {
		link := &doc.Links[i]
		if _, exists := linkNodes[link.Name]; exists {
			warnings = append(warnings, warn(WARN_DUPLICATE_LINK, link.Name,
				"duplicate link name, keeping first"))
			continue
		}
		linkNodes[link.Name] = t.addNode(NODE_LINK, link.Name).Id
	}

	// root-ness is decided by the full joint list, not only by joints
	// that end up assembled: a dangling joint still claims its child
	childClaimed := make(map[string]struct{}, len(doc.Joints))
	for i := range doc.Joints {
		childClaimed[doc.Joints[i].Child] = struct{}{}
	}

	parentedBy := make(map[string]string, len(doc.Joints))
	for i := range doc.Joints {
		joint := &doc.Joints[i]

		parentNode, parentFound := linkNodes[joint.Parent]
		childNode, childFound := linkNodes[joint.Child]
		if !parentFound || !childFound {
			warnings = append(warnings, warn(WARN_DANGLING_JOINT_REFERENCE, joint.Name,
				"joint references missing link (parent %q found=%t, child %q found=%t)",
				joint.Parent, parentFound, joint.Child, childFound))
			continue
		}

		if prev, claimed := parentedBy[joint.Child]; claimed {
			warnings = append(warnings, warn(WARN_DUPLICATE_PARENT, joint.Child,
				"link already parented by joint %q, skipping joint %q", prev, joint.Name))
			continue
		}

		// a joint may not hang its parent's own ancestor (or itself)
		// underneath it: a cyclic document would close the parent chain
		// into a loop and every walk up the tree would never terminate
		if t.isAncestor(childNode, parentNode) {
			warnings = append(warnings, warn(WARN_JOINT_CYCLE, joint.Name,
				"child %q is an ancestor of parent %q, skipping cyclic joint", joint.Child, joint.Parent))
			continue
		}

		n := t.addNode(NODE_JOINT, joint.Name)
		n.Translation = joint.Origin.XYZ
		n.Rotation = utils.RPYToQuat(joint.Origin.RPY)
		n.Joint = &JointMeta{
			Type:   joint.Type,
			Axis:   joint.Axis,
			Limits: joint.Limits,
		}

		t.setParent(n.Id, parentNode)
		t.setParent(childNode, n.Id)
		parentedBy[joint.Child] = joint.Name
	}

	for i := range doc.Links {
		link := &doc.Links[i]
		if _, claimed := childClaimed[link.Name]; claimed {
			continue
		}
		if id, found := linkNodes[link.Name]; found && t.Node(id).Parent == NODE_INVALID {
			t.setParent(id, t.Root)
		}
	}

	tasks := make([]*visualTask, 0)
	seenLinks := make(map[string]struct{}, len(doc.Links))
	for i := range doc.Links {
		link := &doc.Links[i]
		if _, dup := seenLinks[link.Name]; dup {
			continue // duplicate link name, visuals belong to the first
		}
		seenLinks[link.Name] = struct{}{}
		id, found := linkNodes[link.Name]
		if !found {
			continue
		}
		for iVisual := range link.Visuals {
			tasks = append(tasks, &visualTask{
				linkName: link.Name,
				linkNode: id,
				visual:   &link.Visuals[iVisual],
			})
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	if opts.MaxParallelLoads > 0 {
		g.SetLimit(opts.MaxParallelLoads)
	} else {
		g.SetLimit(8)
	}
	for _, task := range tasks {
		task := task
		g.Go(func() error {
			task.run(gctx, cache, &opts)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return t, warnings, err
	}

	// attachment strictly in document order, never in load-completion
	// order
	var names utils.RandomNameGenerator
	for _, task := range tasks {
		if task.failure != nil {
			warnings = append(warnings, *task.failure)
			continue
		}

		name := task.visual.Name
		if name == "" {
			name = names.RandomName(task.linkName)
		}

		vn := t.addNode(NODE_VISUAL, name)
		vn.Translation = task.visual.Origin.XYZ
		vn.Rotation = utils.RPYToQuat(task.visual.Origin.RPY)
		vn.Scale = task.visual.Scale
		t.setParent(vn.Id, task.linkNode)

		mn := t.addNode(NODE_MESH, task.instance.Name)
		mn.Mesh = task.instance
		mn.MeshName = task.location
		t.setParent(mn.Id, vn.Id)
	}

	return t, warnings, nil
}

func (task *visualTask) run(ctx context.Context, cache *meshcache.Cache, opts *Options) {
	location, err := meshcache.ResolvePath(task.visual.Mesh, opts.MeshBase, opts.Packages)
	if err != nil {
		w := warn(WARN_UNRESOLVED_PACKAGE, task.linkName, "%v", err)
		task.failure = &w
		return
	}
	task.location = location

	instance, err := cache.Load(ctx, location)
	if err != nil {
		w := warn(WARN_MESH_LOAD_FAILED, task.linkName, "%v", err)
		task.failure = &w
		return
	}
	task.instance = instance
}
