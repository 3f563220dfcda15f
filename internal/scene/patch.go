package scene

// Op is a patch operation applied by the host renderer.
type Op string

const (
	OpCreate Op = "create"
	OpDelete Op = "delete"
	OpSet    Op = "set"
	OpRemove Op = "remove"
)

// Patch is one reconciliation step from a previous snapshot to the next.
type Patch struct {
	Op     Op     `json:"op"`
	ID     ID     `json:"id"`
	Kind   Kind   `json:"kind,omitempty"`
	Parent ID     `json:"parent,omitempty"`
	Key    string `json:"key,omitempty"`
	Value  string `json:"value,omitempty"`
}

// Diff returns the attribute patches turning prev into next. Nodes only in
// next get all their attributes set; nodes only in prev are left to the
// tree's create/delete patches. Output order is deterministic.
func Diff(prev, next *Snapshot) []Patch {
	var patches []Patch
	for _, id := range next.IDs() {
		na := next.attrs[id]
		pa := prev.attrs[id]
		for _, k := range sortedKeys(na) {
			if pv, ok := pa[k]; !ok || pv != na[k] {
				patches = append(patches, Patch{Op: OpSet, ID: id, Key: k, Value: na[k]})
			}
		}
		for _, k := range sortedKeys(pa) {
			if _, ok := na[k]; !ok {
				patches = append(patches, Patch{Op: OpRemove, ID: id, Key: k})
			}
		}
	}
	return patches
}
