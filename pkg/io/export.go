package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/routegraph/pkg/routing"
)

type element struct {
	Data json.RawMessage `json:"data"`
}

type nodeData struct {
	ID      string            `json:"id"`
	Label   string            `json:"label"`
	Type    string            `json:"type"`
	Color   string            `json:"bg,omitempty"`
	Link    string            `json:"link,omitempty"`
	Parent  string            `json:"parent,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

type edgeData struct {
	ID            string          `json:"id,omitempty"`
	Source        string          `json:"source"`
	Target        string          `json:"target"`
	Label         string          `json:"label,omitempty"`
	Timeframe     string          `json:"timeframe,omitempty"`
	Priority      *int            `json:"priority,omitempty"`
	TimeRangeData json.RawMessage `json:"time_range_data,omitempty"`
}

// Marshal encodes elements as a compact JSON array.
func Marshal(elements []routing.Element) ([]byte, error) {
	out, err := toWire(elements)
	if err != nil {
		return nil, err
	}
	return json.Marshal(out)
}

// WriteJSON encodes elements as an indented JSON array and writes it to w.
// The output can be read back with [ReadJSON].
func WriteJSON(elements []routing.Element, w io.Writer) error {
	out, err := toWire(elements)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes elements to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(elements []routing.Element, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(elements, f)
}

func toWire(elements []routing.Element) ([]element, error) {
	out := make([]element, 0, len(elements))
	for i, e := range elements {
		var (
			data []byte
			err  error
		)
		switch {
		case e.Node != nil:
			n := e.Node
			data, err = json.Marshal(nodeData{
				ID:      n.ID,
				Label:   n.Label,
				Type:    string(n.Type),
				Color:   n.Color,
				Link:    n.Link,
				Parent:  n.Parent,
				Details: n.Details,
			})
		case e.Edge != nil:
			ed := e.Edge
			data, err = json.Marshal(edgeData{
				ID:            ed.ID,
				Source:        ed.Source,
				Target:        ed.Target,
				Label:         ed.Label,
				Timeframe:     ed.Timeframe,
				Priority:      ed.Priority,
				TimeRangeData: ed.TimeRangeData,
			})
		default:
			return nil, fmt.Errorf("element %d: neither node nor edge", i)
		}
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, element{Data: data})
	}
	return out, nil
}
