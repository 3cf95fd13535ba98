// Package routing builds the call-routing graph of a hosted PBX domain.
//
// # Overview
//
// A routing graph starts at the domain's public phone numbers (entry points)
// and follows every destination a call can reach: users and their answer
// rules, auto attendant menus, call queues and their agents, voicemail,
// external numbers and hangups. The result is a flat, id-deduplicated list of
// [Element] values, each either a [Node] or an [Edge], ready for a graph
// viewer.
//
// # Building
//
// [Build] takes a [Source], the remote access capability, and crawls breadth
// first:
//
//	g, err := routing.Build(ctx, src, "acme", routing.Options{Logger: logger})
//	if err != nil {
//	    return err
//	}
//	for _, n := range g.Nodes() {
//	    fmt.Println(n.ID, n.Label)
//	}
//
// Every destination token is first turned into a [Target] by [Classifier].
// The first edge into a target materializes its node; later edges into the
// same target are still emitted but never expand it again. This visited set
// is what terminates cycles in the upstream configuration.
//
// # Failure Isolation
//
// Only a failed entry point listing (or a cancelled context) fails a build.
// Users and timeframes are prefetched concurrently and either may fail on its
// own. A failed answer rule, attendant or queue lookup leaves that one node
// without children and is counted in [Stats].Failures.
//
// # Attendants
//
// Attendant option maps are kept in document order ([ParseOptions]). Inline
// sub-menus get a synthetic identity "<owner>:<prompt>:nested_<key>" and are
// registered in the per-build cache so they resolve without a remote call.
// Intro greeting prompts ("Announce...") are recognized by one predicate that
// both the node label and the node's children are derived from.
//
// # Concurrency
//
// A build owns all of its state. Separate calls to [Build] may run in
// parallel; a single build issues its traversal lookups sequentially.
package routing
