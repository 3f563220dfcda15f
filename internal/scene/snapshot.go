package scene

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/ziadkadry99/attnviz/internal/geometry"
)

// Attribute names shared by the stage keyframes and the renderers.
const (
	AttrClass      = "class"
	AttrVisibility = "visibility"
	AttrOpacity    = "opacity"
)

// Snapshot is the full declared attribute state of a scene at one instant.
// Writes to ids that were never declared are ignored, so stages may target
// elements that do not exist yet without failing.
type Snapshot struct {
	attrs map[ID]Attrs
}

func newSnapshot(size int) *Snapshot {
	return &Snapshot{attrs: make(map[ID]Attrs, size)}
}

// Has reports whether id is part of the snapshot.
func (s *Snapshot) Has(id ID) bool {
	_, ok := s.attrs[id]
	return ok
}

// Len returns the number of nodes in the snapshot.
func (s *Snapshot) Len() int { return len(s.attrs) }

// Get returns attribute key of id.
func (s *Snapshot) Get(id ID, key string) (string, bool) {
	a, ok := s.attrs[id]
	if !ok {
		return "", false
	}
	v, ok := a[key]
	return v, ok
}

// Float returns attribute key of id parsed as a number, or 0.
func (s *Snapshot) Float(id ID, key string) float64 {
	v, ok := s.Get(id, key)
	if !ok {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}

// Set writes attribute key of id.
func (s *Snapshot) Set(id ID, key, value string) {
	if a, ok := s.attrs[id]; ok {
		a[key] = value
	}
}

// SetFloat writes a numeric attribute using the shared coordinate format.
func (s *Snapshot) SetFloat(id ID, key string, v float64) {
	s.Set(id, key, geometry.Format(v))
}

// Unset removes attribute key of id.
func (s *Snapshot) Unset(id ID, key string) {
	if a, ok := s.attrs[id]; ok {
		delete(a, key)
	}
}

// SetRect writes x, y, width and height of a rect node.
func (s *Snapshot) SetRect(id ID, r geometry.Rect) {
	s.SetFloat(id, "x", r.X)
	s.SetFloat(id, "y", r.Y)
	s.SetFloat(id, "width", r.W)
	s.SetFloat(id, "height", r.H)
}

// Rect reads back x, y, width and height.
func (s *Snapshot) Rect(id ID) geometry.Rect {
	return geometry.Rect{
		X: s.Float(id, "x"),
		Y: s.Float(id, "y"),
		W: s.Float(id, "width"),
		H: s.Float(id, "height"),
	}
}

// SetText replaces a text node's content.
func (s *Snapshot) SetText(id ID, text string) {
	s.Set(id, TextKey, text)
}

// SetOpacity writes the opacity clamped to [0,1].
func (s *Snapshot) SetOpacity(id ID, v float64) {
	s.SetFloat(id, AttrOpacity, geometry.Clamp(v, 0, 1))
}

// Show makes id visible.
func (s *Snapshot) Show(id ID) { s.Set(id, AttrVisibility, "visible") }

// Hide makes id invisible.
func (s *Snapshot) Hide(id ID) { s.Set(id, AttrVisibility, "hidden") }

// Visible reports whether id is declared and not hidden.
func (s *Snapshot) Visible(id ID) bool {
	if !s.Has(id) {
		return false
	}
	v, _ := s.Get(id, AttrVisibility)
	return v != "hidden"
}

// Classes returns the class list of id.
func (s *Snapshot) Classes(id ID) []string {
	v, _ := s.Get(id, AttrClass)
	return strings.Fields(v)
}

// HasClass reports whether id carries class.
func (s *Snapshot) HasClass(id ID, class string) bool {
	for _, c := range s.Classes(id) {
		if c == class {
			return true
		}
	}
	return false
}

// AddClass adds class to id. Class lists are kept sorted so equal sets
// compare equal.
func (s *Snapshot) AddClass(id ID, class string) {
	if !s.Has(id) || s.HasClass(id, class) {
		return
	}
	s.setClasses(id, append(s.Classes(id), class))
}

// RemoveClass removes class from id.
func (s *Snapshot) RemoveClass(id ID, class string) {
	if !s.Has(id) {
		return
	}
	cur := s.Classes(id)
	kept := cur[:0]
	for _, c := range cur {
		if c != class {
			kept = append(kept, c)
		}
	}
	s.setClasses(id, kept)
}

func (s *Snapshot) setClasses(id ID, classes []string) {
	if len(classes) == 0 {
		s.Unset(id, AttrClass)
		return
	}
	sort.Strings(classes)
	s.Set(id, AttrClass, strings.Join(classes, " "))
}

// Attrs returns a copy of the attributes of id.
func (s *Snapshot) Attrs(id ID) Attrs {
	a, ok := s.attrs[id]
	if !ok {
		return nil
	}
	return a.Clone()
}

// IDs returns every node id in sorted order.
func (s *Snapshot) IDs() []ID {
	ids := make([]ID, 0, len(s.attrs))
	for id := range s.attrs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Clone returns a deep copy.
func (s *Snapshot) Clone() *Snapshot {
	out := newSnapshot(len(s.attrs))
	for id, a := range s.attrs {
		out.attrs[id] = a.Clone()
	}
	return out
}

// Equal reports whether both snapshots hold identical attributes.
func (s *Snapshot) Equal(o *Snapshot) bool {
	if s == nil || o == nil {
		return s == o
	}
	return len(Diff(s, o)) == 0 && len(s.attrs) == len(o.attrs)
}

// MarshalJSON encodes the snapshot as an object of id -> attributes.
func (s *Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.attrs)
}
