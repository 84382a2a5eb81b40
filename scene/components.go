// Package scene manages the timeline content nodes placed along the
// spiral backbone and routes application events (new content, reactions,
// comments) into spark emissions.
package scene

// NodeKind classifies a content node on the timeline.
type NodeKind uint8

const (
	NodePost NodeKind = iota
	NodeComment
	NodeMedia
)

// Position is a node's world position on the spiral.
type Position struct {
	X, Y, Z float32
}

// NodeMeta holds the timeline identity of a node.
type NodeMeta struct {
	Index     int   // sequence index along the spiral
	Timestamp int64 // unix seconds
	Kind      NodeKind
}

// Halo holds a node's glow state.
type Halo struct {
	Importance float32 // [0,1], scales halo size and spark importance
	Selected   bool
}
