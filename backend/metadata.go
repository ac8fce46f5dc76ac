package backend

// Label names a TBAA (Type-Based Alias Analysis) leaf node. spec.md
// §4.3 calls for human-readable labels such as "memory base_ptr 3" or
// "global 2"; the label string itself doubles as the node's identity,
// matching the teacher's convention of using readable aliasing names
// wherever a backend wants a stable, debuggable identity (see e.g.
// ssa.Builder.AnnotateValue, used purely for human-facing debugging).
type Label string

// RootLabel is the single root every TBAA leaf descends from. All
// distinct Labels are children of this root and therefore pairwise
// NoAlias with each other, never with the root itself.
const RootLabel Label = "wasmer_tbaa_root"

// MDNode is a metadata node in the backend's TBAA tree.
type MDNode struct {
	Label  Label
	Parent *MDNode
}

// IsRoot reports whether this node is the tree's root.
func (n *MDNode) IsRoot() bool { return n.Parent == nil }

// TBAARegistry is the module-scoped name -> node mapping described in
// spec.md §9 ("the backend's metadata store is a module-scoped mapping
// name -> node"). Node creation is idempotent and keyed by Label; the
// registry (and its root) lives for the whole compilation module.
type TBAARegistry struct {
	root  *MDNode
	nodes map[Label]*MDNode
}

// NewTBAARegistry creates a registry with a freshly allocated root
// node, named RootLabel.
func NewTBAARegistry() *TBAARegistry {
	root := &MDNode{Label: RootLabel}
	return &TBAARegistry{
		root:  root,
		nodes: map[Label]*MDNode{RootLabel: root},
	}
}

// Root returns the tree's root node.
func (r *TBAARegistry) Root() *MDNode { return r.root }

// Node returns the node for label, registering it as a child of Root
// on first use. A second call with the same label returns the exact
// same node, which is what makes two distinct labels compare NoAlias:
// distinct identities under a shared root (spec.md §8 invariant 5).
func (r *TBAARegistry) Node(label Label) *MDNode {
	if n, ok := r.nodes[label]; ok {
		return n
	}
	n := &MDNode{Label: label, Parent: r.root}
	r.nodes[label] = n
	return n
}

// Tag is the (base type, access type, offset) triple attached to a
// load/store, per spec.md §4.3: "the access tag is the triple (label,
// label, 0), which satisfies the backend's rule that for scalar types
// the base and access type must match and the offset must be zero."
type Tag struct {
	Base   *MDNode
	Access *MDNode
	Offset int64
}

// ScalarTag builds the canonical scalar access tag for label: base and
// access type are the same node, offset zero.
func (r *TBAARegistry) ScalarTag(label Label) Tag {
	n := r.Node(label)
	return Tag{Base: n, Access: n, Offset: 0}
}
