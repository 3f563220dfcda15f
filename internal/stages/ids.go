package stages

import (
	"fmt"

	"github.com/ziadkadry99/attnviz/internal/scene"
)

// Group ids of the scene, in paint order.
const (
	RootID       scene.ID = "scene"
	IntroID      scene.ID = "intro"
	TokensID     scene.ID = "tokens"
	EmbeddingID  scene.ID = "embedding"
	PositionalID scene.ID = "positional"
	HeadsID      scene.ID = "heads"
	OutputID     scene.ID = "output"
	RailID       scene.ID = "rail"
)

// Projection names, in the order they are drawn beside a clone.
var projections = []string{"q", "k", "v"}

// projectionColors are the fills of the q, k and v rects.
var projectionColors = []string{"#e15759", "#76b7b2", "#edc948"}

// Node ids of the scene. Each helper returns the symbolic id of one element,
// e.g. QueryID(0, 2) is the query label of token 2 in head 0.
func IntroCharID(k int) scene.ID       { return scene.ID(fmt.Sprintf("intro/char/%d", k)) }
func TokenTextID(i int) scene.ID       { return scene.ID(fmt.Sprintf("token/%d", i)) }
func WaveID(i int) scene.ID            { return scene.ID(fmt.Sprintf("pe/wave/%d", i)) }
func HeadID(h int) scene.ID            { return scene.ID(fmt.Sprintf("head/%d", h)) }
func PanelID(h int) scene.ID           { return scene.ID(fmt.Sprintf("head/%d/panel", h)) }
func HeadLabelID(h int) scene.ID       { return scene.ID(fmt.Sprintf("head/%d/label", h)) }
func QueryID(h, i int) scene.ID        { return scene.ID(fmt.Sprintf("head/%d/query/%d", h, i)) }
func KeyLabelID(h, j int) scene.ID     { return scene.ID(fmt.Sprintf("head/%d/key/%d", h, j)) }
func PathID(h, i, j int) scene.ID      { return scene.ID(fmt.Sprintf("head/%d/path/%d/%d", h, i, j)) }
func ChartID(h, j int) scene.ID        { return scene.ID(fmt.Sprintf("head/%d/chart/%d", h, j)) }
func ChartLabelID(h int) scene.ID      { return scene.ID(fmt.Sprintf("head/%d/chart/label", h)) }
func HeadOutID(h, i int) scene.ID      { return scene.ID(fmt.Sprintf("head/%d/out/%d", h, i)) }
func RailItemID(stage string) scene.ID { return scene.ID("rail/" + stage) }

// ProjectionID is the id of projection k (0=q, 1=k, 2=v) of token i in head h.
func ProjectionID(h, i, k int) scene.ID {
	return scene.ID(fmt.Sprintf("head/%d/%s/%d", h, projections[k], i))
}

// BaseKey is the arena key of token i's base embedding bar.
func BaseKey(i int) scene.Key          { return scene.Key{Owner: i, Generation: 0} }

// CloneKey is the arena key of token i's clone owned by head h.
func CloneKey(h, i int) scene.Key      { return scene.Key{Owner: i, Generation: h + 1} }

// MergedKey is the arena key of token i's concatenated bar for a model with
// the given number of heads.
func MergedKey(heads, i int) scene.Key { return scene.Key{Owner: i, Generation: heads + 1} }
