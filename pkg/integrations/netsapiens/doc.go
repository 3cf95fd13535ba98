// Package netsapiens reads hosted PBX routing configuration from the
// NetSapiens v2 REST API.
//
// [Client] implements [routing.Source] on top of the shared
// [integrations.Client], which handles host failover, retries, pagination
// and response caching. This package only knows endpoint paths and wire
// shapes:
//
//	GET /domains/{domain}/phonenumbers                        (paginated)
//	GET /domains/{domain}/users                               (paginated)
//	GET /domains/{domain}/timeframes
//	GET /domains/{domain}/users/{user}/answerrules
//	GET /domains/{domain}/users/{user}/autoattendants/{prompt}
//	GET /domains/{domain}/callqueues/{queue}/agents
//
// The API is loose about scalar types: phone numbers, destinations and
// forwarding parameters may arrive as strings or numbers, and flags as
// "yes"/"no" or booleans. All of these are normalized to strings and bools.
package netsapiens
