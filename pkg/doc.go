// Package pkg provides the libraries behind routegraph, which maps where the
// public phone numbers of a NetSapiens PBX domain route.
//
// # Overview
//
// The data flow through routegraph:
//
//	NetSapiens REST API
//	         ↓
//	    [integrations/netsapiens] (failover, retry, pagination, response cache)
//	         ↓
//	    [routing] (classify targets, crawl, materialize nodes and edges)
//	         ↓
//	    [render/nodelink] and [io] (DOT, SVG, Cytoscape JSON)
//
// [pipeline] ties the stages together for the CLI and the HTTP server.
//
// # Main Packages
//
//   - [routing]: the graph builder. Start here.
//   - [integrations]: shared upstream HTTP client.
//   - [cache]: byte caches (null, file, Redis) for upstream responses.
//   - [errors]: coded errors with HTTP status mapping.
//   - [observability]: build, HTTP and cache hooks with a Prometheus backend.
//   - [config]: settings from TOML, .env and the environment.
//   - [whitelist]: hot-reloaded allow list for upstream hosts.
//
// [routing]: https://pkg.go.dev/github.com/matzehuels/routegraph/pkg/routing
// [integrations]: https://pkg.go.dev/github.com/matzehuels/routegraph/pkg/integrations
// [integrations/netsapiens]: https://pkg.go.dev/github.com/matzehuels/routegraph/pkg/integrations/netsapiens
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/routegraph/pkg/render/nodelink
// [io]: https://pkg.go.dev/github.com/matzehuels/routegraph/pkg/io
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/routegraph/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/routegraph/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/routegraph/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/routegraph/pkg/observability
// [config]: https://pkg.go.dev/github.com/matzehuels/routegraph/pkg/config
// [whitelist]: https://pkg.go.dev/github.com/matzehuels/routegraph/pkg/whitelist
package pkg
