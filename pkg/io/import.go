package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/matzehuels/routegraph/pkg/routing"
)

// ReadJSON decodes a Cytoscape element array from r.
//
// An entry whose data has a "source" key is an edge and must also carry
// "target"; any other entry is a node and must carry "id" and a known
// "type". ReadJSON does not check that edges reference existing nodes, since
// exported parents may point at nodes outside a filtered build.
//
// ReadJSON does not close r.
func ReadJSON(r io.Reader) ([]routing.Element, error) {
	var raw []element
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	out := make([]routing.Element, 0, len(raw))
	for i, el := range raw {
		var keys map[string]json.RawMessage
		if err := json.Unmarshal(el.Data, &keys); err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}

		if _, isEdge := keys["source"]; isEdge {
			var e edgeData
			if err := json.Unmarshal(el.Data, &e); err != nil {
				return nil, fmt.Errorf("edge %d: %w", i, err)
			}
			if e.Source == "" || e.Target == "" {
				return nil, fmt.Errorf("edge %d: source and target are required", i)
			}
			if len(e.TimeRangeData) > 0 {
				var buf bytes.Buffer
				if err := json.Compact(&buf, e.TimeRangeData); err == nil {
					e.TimeRangeData = buf.Bytes()
				}
			}
			out = append(out, routing.Element{Edge: &routing.Edge{
				ID:            e.ID,
				Source:        e.Source,
				Target:        e.Target,
				Label:         e.Label,
				Timeframe:     e.Timeframe,
				Priority:      e.Priority,
				TimeRangeData: e.TimeRangeData,
			}})
			continue
		}

		var n nodeData
		if err := json.Unmarshal(el.Data, &n); err != nil {
			return nil, fmt.Errorf("node %d: %w", i, err)
		}
		if n.ID == "" {
			return nil, fmt.Errorf("node %d: id is required", i)
		}
		if !slices.Contains(routing.Kinds, routing.Kind(n.Type)) {
			return nil, fmt.Errorf("node %d: unknown type %q", i, n.Type)
		}
		out = append(out, routing.Element{Node: &routing.Node{
			ID:      n.ID,
			Label:   n.Label,
			Type:    routing.Kind(n.Type),
			Color:   n.Color,
			Link:    n.Link,
			Parent:  n.Parent,
			Details: n.Details,
		}})
	}
	return out, nil
}

// ImportJSON reads a JSON file at path and returns the decoded elements.
func ImportJSON(path string) ([]routing.Element, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
