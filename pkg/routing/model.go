package routing

import "encoding/json"

// Kind is the semantic type of a routing node. It drives classification,
// materialization and expansion.
type Kind string

const (
	KindIngress       Kind = "ingress"
	KindUser          Kind = "user"
	KindAutoAttendant Kind = "auto_attendant"
	KindCallQueue     Kind = "call_queue"
	KindVoicemail     Kind = "voicemail"
	KindOffnet        Kind = "offnet"
	KindHangup        Kind = "hangup"
	KindOther         Kind = "other"
	KindDirectory     Kind = "directory"
	KindConference    Kind = "conference"
	KindDevice        Kind = "device"
)

// Kinds lists every node kind in display order.
var Kinds = []Kind{
	KindIngress, KindUser, KindAutoAttendant, KindCallQueue, KindVoicemail,
	KindOffnet, KindHangup, KindOther, KindDirectory, KindConference, KindDevice,
}

// Node is a materialized routing destination.
type Node struct {
	ID     string
	Label  string
	Type   Kind
	Color  string
	Link   string // portal deep link, empty when the kind has none
	Parent string // visual grouping only

	Details map[string]string
}

// Edge is a routing step from one node to another. Timeframe, Priority and
// TimeRangeData are set only on edges produced by answer rules.
type Edge struct {
	ID     string
	Source string
	Target string
	Label  string

	Timeframe     string
	Priority      *int
	TimeRangeData json.RawMessage
}

// Element is exactly one of a node or an edge.
type Element struct {
	Node *Node
	Edge *Edge
}

// ID returns the element id. Edges without an explicit id fall back to
// "<source>_<target>".
func (e Element) ID() string {
	switch {
	case e.Node != nil:
		return e.Node.ID
	case e.Edge != nil:
		if e.Edge.ID != "" {
			return e.Edge.ID
		}
		return e.Edge.Source + "_" + e.Edge.Target
	}
	return ""
}

// IsNode reports whether the element is a node.
func (e Element) IsNode() bool { return e.Node != nil }

// Graph is the result of one build.
type Graph struct {
	BuildID  string
	Domain   string
	Elements []Element
	Stats    Stats
}

// Nodes returns the node elements in output order.
func (g *Graph) Nodes() []*Node {
	var out []*Node
	for _, e := range g.Elements {
		if e.Node != nil {
			out = append(out, e.Node)
		}
	}
	return out
}

// Edges returns the edge elements in output order.
func (g *Graph) Edges() []*Edge {
	var out []*Edge
	for _, e := range g.Elements {
		if e.Edge != nil {
			out = append(out, e.Edge)
		}
	}
	return out
}
