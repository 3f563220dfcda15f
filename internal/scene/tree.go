package scene

import (
	"fmt"
	"sort"
)

// ID is the symbolic identifier of a scene element, such as "head/0/path/2/1".
type ID string

// Kind is the element type a node renders as.
type Kind string

const (
	KindGroup Kind = "g"
	KindText  Kind = "text"
	KindRect  Kind = "rect"
	KindPath  Kind = "path"
)

// Attrs holds declared attribute values keyed by attribute name. The special
// key TextKey carries a text node's content.
type Attrs map[string]string

// TextKey is the attribute key holding a text node's content.
const TextKey = "#text"

// Clone returns a copy of the attribute set.
func (a Attrs) Clone() Attrs {
	out := make(Attrs, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Node is one declared element of the retained scene.
type Node struct {
	ID     ID    `json:"id"`
	Kind   Kind  `json:"kind"`
	Parent ID    `json:"parent,omitempty"`
	Base   Attrs `json:"base"`
}

// Tree is the retained-mode scene description. Only the Scene Renderer
// declares nodes; everything else reads ids and writes snapshots.
type Tree struct {
	nodes    map[ID]*Node
	order    []ID
	children map[ID][]ID
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{
		nodes:    make(map[ID]*Node),
		children: make(map[ID][]ID),
	}
}

// Declare adds a node under parent (empty for a root node). The base
// attributes form the node's rest state.
func (t *Tree) Declare(parent, id ID, kind Kind, base Attrs) error {
	if id == "" {
		return fmt.Errorf("declaring node: empty id")
	}
	if _, exists := t.nodes[id]; exists {
		return fmt.Errorf("declaring node %q: already declared", id)
	}
	if parent != "" {
		if _, ok := t.nodes[parent]; !ok {
			return fmt.Errorf("declaring node %q: unknown parent %q", id, parent)
		}
	}
	if base == nil {
		base = Attrs{}
	}
	t.nodes[id] = &Node{ID: id, Kind: kind, Parent: parent, Base: base.Clone()}
	t.order = append(t.order, id)
	t.children[parent] = append(t.children[parent], id)
	return nil
}

// Has reports whether id is declared.
func (t *Tree) Has(id ID) bool {
	_, ok := t.nodes[id]
	return ok
}

// Node returns a copy of the declared node.
func (t *Tree) Node(id ID) (Node, bool) {
	n, ok := t.nodes[id]
	if !ok {
		return Node{}, false
	}
	cp := *n
	cp.Base = n.Base.Clone()
	return cp, true
}

// Len returns the number of declared nodes.
func (t *Tree) Len() int { return len(t.order) }

// IDs returns every node id in declaration order. Parents always precede
// their children.
func (t *Tree) IDs() []ID {
	out := make([]ID, len(t.order))
	copy(out, t.order)
	return out
}

// Children returns the direct children of id in declaration order. The empty
// id lists root nodes.
func (t *Tree) Children(id ID) []ID {
	kids := t.children[id]
	out := make([]ID, len(kids))
	copy(out, kids)
	return out
}

// Base returns a fresh snapshot holding every node's rest state.
func (t *Tree) Base() *Snapshot {
	s := newSnapshot(len(t.order))
	for _, id := range t.order {
		s.attrs[id] = t.nodes[id].Base.Clone()
	}
	return s
}

// Clear drops every node.
func (t *Tree) Clear() {
	t.nodes = make(map[ID]*Node)
	t.children = make(map[ID][]ID)
	t.order = nil
}

// CreatePatches returns the patch set that builds the tree from nothing and
// applies snap, in declaration order.
func (t *Tree) CreatePatches(snap *Snapshot) []Patch {
	patches := make([]Patch, 0, len(t.order)*4)
	for _, id := range t.order {
		n := t.nodes[id]
		patches = append(patches, Patch{Op: OpCreate, ID: id, Kind: n.Kind, Parent: n.Parent})
		attrs := snap.attrs[id]
		for _, k := range sortedKeys(attrs) {
			patches = append(patches, Patch{Op: OpSet, ID: id, Key: k, Value: attrs[k]})
		}
	}
	return patches
}

// DeletePatches returns the patch set removing every node, children first.
func (t *Tree) DeletePatches() []Patch {
	patches := make([]Patch, 0, len(t.order))
	for i := len(t.order) - 1; i >= 0; i-- {
		patches = append(patches, Patch{Op: OpDelete, ID: t.order[i]})
	}
	return patches
}

func sortedKeys(a Attrs) []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
