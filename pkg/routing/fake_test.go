package routing

import (
	"context"
	"io"
	"sync"

	"github.com/charmbracelet/log"
)

// fakeSource is an in-memory Source that counts calls per method and key.
type fakeSource struct {
	entries    []EntryPoint
	entriesErr error
	users      []User
	usersErr   error
	timeframes []Timeframe
	tfErr      error

	rules        map[string][]AnswerRule
	rulesErr     map[string]error
	attendants   map[string]*Attendant // "<owner>:<prompt>"
	attendantErr map[string]error
	agents       map[string][]QueueAgent

	mu    sync.Mutex
	calls map[string]int
}

func (f *fakeSource) count(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[key]++
}

func (f *fakeSource) callCount(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[key]
}

func (f *fakeSource) ListEntryPoints(_ context.Context, _ string) ([]EntryPoint, error) {
	f.count("entries")
	return f.entries, f.entriesErr
}

func (f *fakeSource) ListUsers(_ context.Context, _ string) ([]User, error) {
	f.count("users")
	return f.users, f.usersErr
}

func (f *fakeSource) ListDomainTimeframes(_ context.Context, _ string) ([]Timeframe, error) {
	f.count("timeframes")
	return f.timeframes, f.tfErr
}

func (f *fakeSource) ListAnswerRules(_ context.Context, _, user string) ([]AnswerRule, error) {
	f.count("rules:" + user)
	if err := f.rulesErr[user]; err != nil {
		return nil, err
	}
	return f.rules[user], nil
}

func (f *fakeSource) GetAttendant(_ context.Context, _, owner, prompt string) (*Attendant, error) {
	key := owner + ":" + prompt
	f.count("attendant:" + key)
	if err := f.attendantErr[key]; err != nil {
		return nil, err
	}
	return f.attendants[key], nil
}

func (f *fakeSource) ListQueueAgents(_ context.Context, _, queue string) ([]QueueAgent, error) {
	f.count("agents:" + queue)
	return f.agents[queue], nil
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func build(ctx context.Context, src Source, domain string) (*Graph, error) {
	return Build(ctx, src, domain, Options{Logger: quietLogger(), BuildID: "test"})
}

// lookupNode returns the node with id, or nil.
func lookupNode(g *Graph, id string) *Node {
	for _, n := range g.Nodes() {
		if n.ID == id {
			return n
		}
	}
	return nil
}

func edgesFrom(g *Graph, source string) []*Edge {
	var out []*Edge
	for _, e := range g.Edges() {
		if e.Source == source {
			out = append(out, e)
		}
	}
	return out
}

func edgeLabeled(edges []*Edge, label string) *Edge {
	for _, e := range edges {
		if e.Label == label {
			return e
		}
	}
	return nil
}

func fwd(params ...string) *Forwarding {
	return &Forwarding{Enabled: true, Parameters: params}
}
