package stages

import "github.com/ziadkadry99/attnviz/internal/scene"

// Stage state classes toggled on rail items.
const (
	ClassActive   = "stage-active"
	ClassInactive = "stage-inactive"
)

// MarkActive records stage id as the active stage on the scene root and
// toggles the rail item classes to match. An empty id leaves every item
// inactive.
func MarkActive(s *scene.Snapshot, id string) {
	s.Set(RootID, "data-stage", id)
	for _, st := range catalog {
		item := RailItemID(st.ID)
		if st.ID == id {
			s.RemoveClass(item, ClassInactive)
			s.AddClass(item, ClassActive)
			continue
		}
		s.RemoveClass(item, ClassActive)
		s.AddClass(item, ClassInactive)
	}
}
