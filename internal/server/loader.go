package server

import (
	"bytes"
	_ "embed"
	"fmt"
	"text/template"
)

//go:embed static/route_graph_inventory_tab.js.tmpl
var loaderSource string

var loaderTemplate = template.Must(template.New("loader").Parse(loaderSource))

type loaderData struct {
	APIEndpoint  string
	CytoscapeURL string
}

func renderLoader(endpoint, cytoscape string) ([]byte, error) {
	var buf bytes.Buffer
	if err := loaderTemplate.Execute(&buf, loaderData{APIEndpoint: endpoint, CytoscapeURL: cytoscape}); err != nil {
		return nil, fmt.Errorf("render loader script: %w", err)
	}
	return buf.Bytes(), nil
}
