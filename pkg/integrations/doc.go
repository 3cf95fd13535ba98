// Package integrations provides the HTTP transport for the PBX REST API.
//
// # Overview
//
// [Client] is shared by the API-specific clients (see the netsapiens
// subpackage). It owns everything about getting bytes off the wire:
//
//   - candidate-host failover: a transport error or 5xx moves on to the
//     next configured host; only when all hosts fail does a request fail
//     with UPSTREAM_UNAVAILABLE
//   - retry of the whole failover pass with exponential backoff
//   - status classification: 404 is [ErrNotFound], other 4xx are
//     UPSTREAM_REJECTED with the upstream body preserved
//   - optional rate limiting and response caching
//   - per-endpoint call statistics
//
// [Client.GetPaginated] implements limit/start pagination with a hard cap on
// the number of items.
//
// # Usage
//
//	c := integrations.NewClient(integrations.Options{
//	    BaseURLs: []string{"pbx.example.com"},
//	    Token:    token,
//	})
//	body, err := c.Get(ctx, "/domains/acme/timeframes", nil)
//	if errors.Is(err, integrations.ErrNotFound) {
//	    // absent
//	}
package integrations
