package scene

import (
	"fmt"
	"sort"

	"github.com/ziadkadry99/attnviz/internal/model"
)

// Key addresses one visual embedding element by owning token and generation.
type Key struct {
	Owner      int `json:"owner"`
	Generation int `json:"generation"`
}

// ColorStageAttr is the data attribute carrying an element's color stage.
const ColorStageAttr = "data-color-stage"

// Arena tracks the embedding bars of a scene across their clone/merge
// lifecycle. Every generation is declared once at mount; stage transitions
// are expressed as Spawn/Retire/Merge on a snapshot instead of creating or
// dropping nodes.
type Arena struct {
	tree *Tree
	ids  map[Key]ID
}

// NewArena returns an arena declaring its elements into tree.
func NewArena(tree *Tree) *Arena {
	return &Arena{tree: tree, ids: make(map[Key]ID)}
}

// VectorID is the node id of the element at key.
func VectorID(key Key) ID {
	return ID(fmt.Sprintf("vec/%d/%d", key.Owner, key.Generation))
}

// Declare adds the element for key under parent. It starts hidden.
func (a *Arena) Declare(parent ID, key Key, base Attrs) (ID, error) {
	if _, ok := a.ids[key]; ok {
		return "", fmt.Errorf("arena: element %+v already declared", key)
	}
	id := VectorID(key)
	attrs := base.Clone()
	if attrs == nil {
		attrs = Attrs{}
	}
	attrs[AttrVisibility] = "hidden"
	attrs["data-owner"] = fmt.Sprint(key.Owner)
	attrs["data-generation"] = fmt.Sprint(key.Generation)
	if _, ok := attrs[ColorStageAttr]; !ok {
		attrs[ColorStageAttr] = string(model.ColorBase)
	}
	if err := a.tree.Declare(parent, id, KindRect, attrs); err != nil {
		return "", err
	}
	a.ids[key] = id
	return id, nil
}

// Lookup returns the node id for key.
func (a *Arena) Lookup(key Key) (ID, bool) {
	id, ok := a.ids[key]
	return id, ok
}

// Generation returns the ids of every element of generation gen, by owner.
func (a *Arena) Generation(gen int) []ID {
	var keys []Key
	for k := range a.ids {
		if k.Generation == gen {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Owner < keys[j].Owner })
	out := make([]ID, len(keys))
	for i, k := range keys {
		out[i] = a.ids[k]
	}
	return out
}

// Spawn makes the element at key visible in s.
func (a *Arena) Spawn(s *Snapshot, key Key) {
	if id, ok := a.ids[key]; ok {
		s.Show(id)
	}
}

// Retire hides the element at key in s.
func (a *Arena) Retire(s *Snapshot, key Key) {
	if id, ok := a.ids[key]; ok {
		s.Hide(id)
	}
}

// Merge retires the from generations of owner and spawns generation into.
func (a *Arena) Merge(s *Snapshot, owner int, from []int, into int) {
	for _, g := range from {
		a.Retire(s, Key{Owner: owner, Generation: g})
	}
	a.Spawn(s, Key{Owner: owner, Generation: into})
}

// SetColorStage records the color stage of key and recolors its fill.
func (a *Arena) SetColorStage(s *Snapshot, key Key, stage model.ColorStage) {
	id, ok := a.ids[key]
	if !ok {
		return
	}
	s.Set(id, ColorStageAttr, string(stage))
	s.Set(id, "fill", stage.Fill())
}

// Vector reads the element at key back out of a snapshot.
func (a *Arena) Vector(s *Snapshot, key Key) (model.EmbeddingVector, bool) {
	id, ok := a.ids[key]
	if !ok || !s.Has(id) {
		return model.EmbeddingVector{}, false
	}
	stage, _ := s.Get(id, ColorStageAttr)
	return model.EmbeddingVector{
		Owner:      key.Owner,
		Generation: key.Generation,
		Width:      s.Float(id, "width"),
		Height:     s.Float(id, "height"),
		ColorStage: model.ColorStage(stage),
	}, true
}

// Len returns the number of declared elements.
func (a *Arena) Len() int { return len(a.ids) }
