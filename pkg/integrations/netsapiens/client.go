package netsapiens

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	rgerrors "github.com/matzehuels/routegraph/pkg/errors"
	"github.com/matzehuels/routegraph/pkg/integrations"
	"github.com/matzehuels/routegraph/pkg/routing"
)

// Client reads routing configuration from the NetSapiens v2 REST API.
// It implements [routing.Source].
//
// A 404 on any listing is an empty result, and a 404 (or an empty body) for
// an attendant is a nil definition. Bodies that cannot be decoded fail with
// LOCAL_PARSE_FAILURE.
//
// All methods are safe for concurrent use.
type Client struct {
	*integrations.Client
	page integrations.PageOptions
}

var _ routing.Source = (*Client)(nil)

// NewClient creates a client over the given transport options. page bounds
// the paginated listings (phone numbers and users); zero values use the
// integrations defaults.
func NewClient(opts integrations.Options, page integrations.PageOptions) *Client {
	return &Client{Client: integrations.NewClient(opts), page: page}
}

// ListEntryPoints returns the domain's phone numbers.
func (c *Client) ListEntryPoints(ctx context.Context, domain string) ([]routing.EntryPoint, error) {
	path := domainPath(domain) + "/phonenumbers"
	items, err := c.GetPaginated(ctx, path, c.page)
	if err != nil {
		return nil, err
	}
	wire, err := decodeAll[phoneNumber](path, items)
	if err != nil {
		return nil, err
	}

	out := make([]routing.EntryPoint, 0, len(wire))
	for _, p := range wire {
		out = append(out, routing.EntryPoint{
			Number:      string(p.Number),
			Destination: string(p.Destination),
			Application: p.Application,
		})
	}
	return out, nil
}

// ListUsers returns every user of the domain.
func (c *Client) ListUsers(ctx context.Context, domain string) ([]routing.User, error) {
	path := domainPath(domain) + "/users"
	items, err := c.GetPaginated(ctx, path, c.page)
	if err != nil {
		return nil, err
	}
	wire, err := decodeAll[user](path, items)
	if err != nil {
		return nil, err
	}

	out := make([]routing.User, 0, len(wire))
	for _, u := range wire {
		out = append(out, routing.User{
			ID:         string(u.ID),
			FirstName:  u.FirstName,
			LastName:   u.LastName,
			Email:      u.Email,
			Department: u.Department,
			Site:       u.Site,
			Status:     u.Status,
		})
	}
	return out, nil
}

// ListDomainTimeframes returns the domain-level timeframes.
func (c *Client) ListDomainTimeframes(ctx context.Context, domain string) ([]routing.Timeframe, error) {
	return c.timeframes(ctx, domainPath(domain)+"/timeframes")
}

func (c *Client) timeframes(ctx context.Context, path string) ([]routing.Timeframe, error) {
	wire, err := list[timeframe](ctx, c, path)
	if err != nil {
		return nil, err
	}
	out := make([]routing.Timeframe, 0, len(wire))
	for _, tf := range wire {
		out = append(out, routing.Timeframe{Name: tf.Name})
	}
	return out, nil
}

// ListAnswerRules returns the answer rules of a user in upstream order.
func (c *Client) ListAnswerRules(ctx context.Context, domain, userID string) ([]routing.AnswerRule, error) {
	wire, err := list[answerRule](ctx, c, userPath(domain, userID)+"/answerrules")
	if err != nil {
		return nil, err
	}

	out := make([]routing.AnswerRule, 0, len(wire))
	for _, r := range wire {
		rule := routing.AnswerRule{
			Timeframe:        r.Timeframe,
			Priority:         int(r.Priority),
			SimultaneousRing: r.SimultaneousRing.toRouting(),
			ForwardAlways:    r.ForwardAlways.toRouting(),
			ForwardBusy:      r.ForwardOnBusy.toRouting(),
			ForwardNoAnswer:  r.ForwardNoAnswer.toRouting(),
			ForwardOffline:   r.ForwardWhenUnregistered.toRouting(),
		}
		if len(r.TimeRangeData) > 0 && string(r.TimeRangeData) != "null" {
			rule.TimeRangeData = r.TimeRangeData
		}
		out = append(out, rule)
	}
	return out, nil
}

// GetAttendant returns the attendant definition for (owner, prompt), or nil
// when the upstream has none. An array response yields its first element.
func (c *Client) GetAttendant(ctx context.Context, domain, owner, prompt string) (*routing.Attendant, error) {
	path := fmt.Sprintf("%s/autoattendants/%s", userPath(domain, owner), integrations.PathEscape(prompt))
	body, err := c.Get(ctx, path, nil)
	if errors.Is(err, integrations.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	items, err := integrations.SplitArray(body)
	if err != nil {
		return nil, rgerrors.Wrap(rgerrors.ErrCodeLocalParseFailure, err, "parse %s", path)
	}
	if len(items) == 0 || isEmptyObject(items[0]) {
		return nil, nil
	}
	return routing.ParseAttendant(items[0])
}

// ListQueueAgents returns the agents of a call queue.
func (c *Client) ListQueueAgents(ctx context.Context, domain, queue string) ([]routing.QueueAgent, error) {
	path := fmt.Sprintf("%s/callqueues/%s/agents", domainPath(domain), integrations.PathEscape(queue))
	wire, err := list[queueAgent](ctx, c, path)
	if err != nil {
		return nil, err
	}
	out := make([]routing.QueueAgent, 0, len(wire))
	for _, a := range wire {
		out = append(out, routing.QueueAgent{User: string(a.ID)})
	}
	return out, nil
}

func (f *forwarding) toRouting() *routing.Forwarding {
	if f == nil {
		return nil
	}
	fw := &routing.Forwarding{Enabled: bool(f.Enabled)}
	for _, p := range f.Parameters {
		fw.Parameters = append(fw.Parameters, string(p))
	}
	return fw
}

// list fetches a non-paginated listing. A 404 is an empty list.
func list[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	body, err := c.Get(ctx, path, nil)
	if errors.Is(err, integrations.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	items, err := integrations.SplitArray(body)
	if err != nil {
		return nil, rgerrors.Wrap(rgerrors.ErrCodeLocalParseFailure, err, "parse %s", path)
	}
	return decodeAll[T](path, items)
}

func decodeAll[T any](path string, items []json.RawMessage) ([]T, error) {
	out := make([]T, 0, len(items))
	for i, raw := range items {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, rgerrors.Wrap(rgerrors.ErrCodeLocalParseFailure, err, "decode item %d of %s", i, path)
		}
		out = append(out, v)
	}
	return out, nil
}

func isEmptyObject(raw json.RawMessage) bool {
	var m map[string]json.RawMessage
	return json.Unmarshal(raw, &m) == nil && len(m) == 0
}

func domainPath(domain string) string {
	return "/domains/" + integrations.PathEscape(domain)
}

func userPath(domain, userID string) string {
	return domainPath(domain) + "/users/" + integrations.PathEscape(userID)
}
