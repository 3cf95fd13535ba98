// Package io provides JSON import and export of routing graph elements.
//
// # JSON Format
//
// Elements are written in the Cytoscape.js element format: a flat array in
// which every entry wraps its fields in a "data" object. Nodes and edges are
// told apart by the presence of "source":
//
//	[
//	  {"data": {"id": "did_5550001000", "label": "Phone Number: (555) 000-1000",
//	            "type": "ingress", "bg": "#E0E0E0",
//	            "link": "/portal/inventory/index/phonenumbers",
//	            "details": {"Destination": "101", "Application": "to-user"}}},
//	  {"data": {"id": "edge_did_5550001000_user_101",
//	            "source": "did_5550001000", "target": "user_101",
//	            "label": "Destination"}},
//	  {"data": {"id": "user_101", "label": "Alice Smith (101)",
//	            "type": "user", "bg": "#ADD8E6"}}
//	]
//
// # Node Fields
//
// Required: id, label, type. Optional: bg (background color), link (portal
// deep link), parent (compound grouping), details (string map).
//
// # Edge Fields
//
// Required: source, target. Optional: id, label, and for answer-rule edges
// timeframe, priority and time_range_data (passed through verbatim).
//
// Optional fields are omitted when empty.
//
// # Import and Export
//
// [WriteJSON] and [ReadJSON] work on any io.Writer/io.Reader; [ExportJSON]
// and [ImportJSON] are file-based wrappers. Reading an exported file yields
// the same elements.
package io
