package routing

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/routegraph/pkg/observability"
)

// Options configures a build.
type Options struct {
	// Logger receives progress and isolated failures (default log.Default()).
	Logger *log.Logger

	// EntryFilter restricts the build to matching entry points. Nil keeps all.
	EntryFilter func(EntryPoint) bool

	// BuildID correlates logs and metrics. Empty generates a random UUID.
	BuildID string
}

// Stats summarizes one build.
type Stats struct {
	EntryPoints int // entry points traversed
	Skipped     int // entry points without a destination
	Users       int
	Timeframes  int
	Nodes       int
	Edges       int
	Fetches     int // remote lookups issued during traversal
	MemoHits    int
	Failures    int // isolated lookup or parse failures
	Duration    time.Duration
}

type edgeMeta struct {
	Timeframe     string
	Priority      int
	TimeRangeData json.RawMessage
}

// pending is one queued edge: where it starts, what it points at, and
// whether the target should be expanded once materialized.
type pending struct {
	Source string
	Target Target
	Label  string
	Meta   *edgeMeta
	Expand bool
}

// builder is the per-build traversal context. Nothing in it outlives Build.
type builder struct {
	ctx    context.Context
	src    Source
	domain string
	logger *log.Logger
	filter func(EntryPoint) bool

	memo    *fetchCache
	visited map[string]bool
	queue   []pending
	out     []Element
	stats   Stats
}

// Build crawls the routing configuration of domain and returns the
// deduplicated element list.
//
// Failures to list users or timeframes are logged and the build continues
// with empty maps. Failures of individual lookups during traversal are
// isolated to the node being expanded. Only a failure to list entry points,
// or cancellation of ctx, fails the build.
func Build(ctx context.Context, src Source, domain string, opts Options) (*Graph, error) {
	id := opts.BuildID
	if id == "" {
		id = uuid.NewString()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	b := &builder{
		ctx:     ctx,
		src:     src,
		domain:  domain,
		logger:  logger.With("build", id),
		filter:  opts.EntryFilter,
		memo:    newFetchCache(),
		visited: make(map[string]bool),
	}

	hooks := observability.Build()
	hooks.OnBuildStart(ctx, domain, id)
	start := time.Now()

	elements, err := b.run()
	b.stats.Duration = time.Since(start)
	hooks.OnBuildComplete(ctx, domain, id, len(elements), b.stats.Duration, err)
	if err != nil {
		return nil, err
	}

	b.logger.Info("built route graph",
		"domain", domain,
		"entry_points", b.stats.EntryPoints,
		"nodes", b.stats.Nodes,
		"edges", b.stats.Edges,
		"duration", b.stats.Duration.Round(time.Millisecond))

	return &Graph{BuildID: id, Domain: domain, Elements: elements, Stats: b.stats}, nil
}

func (b *builder) run() ([]Element, error) {
	b.prefetch()

	b.logger.Debug("fetching entry points", "domain", b.domain)
	entries, err := b.src.ListEntryPoints(b.ctx, b.domain)
	if err != nil {
		b.logger.Error("failed to list entry points", "domain", b.domain, "err", err)
		return nil, err
	}
	b.logger.Debug("found entry points", "count", len(entries))

	for _, ep := range entries {
		if b.filter != nil && !b.filter(ep) {
			continue
		}
		b.stats.EntryPoints++
		b.seed(ep)
		if err := b.drain(); err != nil {
			return nil, err
		}
	}

	elements := dedup(b.out)
	for _, e := range elements {
		if e.IsNode() {
			b.stats.Nodes++
		} else {
			b.stats.Edges++
		}
	}
	return elements, nil
}

// prefetch loads users and timeframes concurrently. Either may fail
// without affecting the other.
func (b *builder) prefetch() {
	b.logger.Debug("fetching global data", "domain", b.domain)

	var (
		users      []User
		timeframes []Timeframe
	)
	var g errgroup.Group
	g.Go(func() error {
		var err error
		if users, err = b.src.ListUsers(b.ctx, b.domain); err != nil {
			b.logger.Warn("failed to fetch users", "domain", b.domain, "err", err)
			users = nil
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if timeframes, err = b.src.ListDomainTimeframes(b.ctx, b.domain); err != nil {
			b.logger.Warn("failed to fetch timeframes", "domain", b.domain, "err", err)
			timeframes = nil
		}
		return nil
	})
	_ = g.Wait()

	for _, u := range users {
		b.memo.users[u.ID] = u
	}
	for _, tf := range timeframes {
		b.memo.timeframes[tf.Name] = tf
	}
	b.stats.Users = len(b.memo.users)
	b.stats.Timeframes = len(b.memo.timeframes)
	b.logger.Debug("cached global data", "users", b.stats.Users, "timeframes", b.stats.Timeframes)
}

// seed emits the ingress node of ep and queues its first edge. Entry points
// without a destination produce nothing.
func (b *builder) seed(ep EntryPoint) {
	if ep.Destination == "" {
		b.stats.Skipped++
		b.logger.Warn("entry point has no destination", "number", ep.Number)
		return
	}

	root := SafeID("did_" + ep.Number)
	b.emit(Element{Node: &Node{
		ID:    root,
		Label: "Phone Number: " + FormatPhone(ep.Number),
		Type:  KindIngress,
		Color: Colors[KindIngress],
		Link:  PortalLink(b.domain, KindIngress, ep.Number),
		Details: map[string]string{
			"Destination": ep.Destination,
			"Application": ep.Application,
		},
	}})
	b.visited[root] = true

	b.queue = append(b.queue, pending{
		Source: root,
		Target: b.classify(ep.Destination),
		Label:  "Destination",
		Expand: true,
	})
}

// drain processes the queue until it is empty.
func (b *builder) drain() error {
	for len(b.queue) > 0 {
		if err := b.ctx.Err(); err != nil {
			return err
		}
		p := b.queue[0]
		b.queue = b.queue[1:]
		if err := b.step(p); err != nil {
			return err
		}
	}
	return nil
}

// step emits the edge for p and, the first time its target is seen,
// materializes and expands the target.
func (b *builder) step(p pending) error {
	id := p.Target.NodeID()

	edge := &Edge{
		ID:     EdgeID(p.Source, id),
		Source: SafeID(p.Source),
		Target: id,
		Label:  p.Label,
	}
	if p.Meta != nil {
		prio := p.Meta.Priority
		edge.Timeframe = p.Meta.Timeframe
		edge.Priority = &prio
		edge.TimeRangeData = p.Meta.TimeRangeData
	}
	b.emit(Element{Edge: edge})

	if b.visited[id] {
		return nil
	}
	b.visited[id] = true

	node, err := b.materialize(p, id)
	if err != nil {
		return err
	}
	b.emit(Element{Node: node})

	if !p.Expand {
		return nil
	}

	children, err := b.expand(p.Target)
	observability.Build().OnExpand(b.ctx, string(p.Target.Kind), len(children), err)
	if err != nil {
		if b.ctx.Err() != nil {
			return b.ctx.Err()
		}
		b.stats.Failures++
		b.logger.Warn("expansion failed", "node", id, "kind", p.Target.Kind, "err", err)
		return nil
	}
	for _, c := range children {
		c.Source = id
		b.queue = append(b.queue, c)
	}
	return nil
}

func (b *builder) classify(token string) Target {
	return Classifier{Domain: b.domain, IsUser: b.memo.isUser}.Classify(token)
}

func (b *builder) emit(e Element) {
	b.out = append(b.out, e)
}

// dedup keeps the first element for every id.
func dedup(in []Element) []Element {
	seen := make(map[string]struct{}, len(in))
	out := make([]Element, 0, len(in))
	for _, e := range in {
		id := e.ID()
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, e)
	}
	return out
}
