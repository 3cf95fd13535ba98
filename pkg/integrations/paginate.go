package integrations

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strconv"

	"github.com/tidwall/gjson"

	rgerrors "github.com/matzehuels/routegraph/pkg/errors"
)

// PageOptions bounds a paginated listing. Zero values use DefaultPageSize
// and DefaultMaxItems.
type PageOptions struct {
	Limit    int
	MaxItems int
}

// GetPaginated walks a listing endpoint with "limit"/"start" parameters and
// returns the raw JSON of every item in order.
//
// The walk stops on an empty page, a 404, or a page shorter than the limit.
// Collecting more than MaxItems items fails with RESOURCE_LIMIT_EXCEEDED.
func (c *Client) GetPaginated(ctx context.Context, path string, opts PageOptions) ([]json.RawMessage, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	maxItems := opts.MaxItems
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}

	var items []json.RawMessage
	for start := 0; ; start += limit {
		q := url.Values{}
		q.Set("limit", strconv.Itoa(limit))
		q.Set("start", strconv.Itoa(start))

		body, err := c.Get(ctx, path, q)
		if errors.Is(err, ErrNotFound) {
			break
		}
		if err != nil {
			return nil, err
		}

		page, err := SplitArray(body)
		if err != nil {
			return nil, rgerrors.Wrap(rgerrors.ErrCodeLocalParseFailure, err, "parse page of %s", path)
		}
		if len(page) == 0 {
			break
		}

		items = append(items, page...)
		if len(items) > maxItems {
			return nil, rgerrors.New(rgerrors.ErrCodeResourceLimitExceeded,
				"Resource limit exceeded: >%d items found at %s", maxItems, path)
		}
		if len(page) < limit {
			break
		}
	}
	return items, nil
}

// SplitArray returns the raw elements of a JSON array body. An empty body or
// JSON null yields no elements; a single object is treated as a one-element
// array.
func SplitArray(body []byte) ([]json.RawMessage, error) {
	if len(body) == 0 {
		return nil, nil
	}
	if !gjson.ValidBytes(body) {
		return nil, errors.New("invalid JSON")
	}
	res := gjson.ParseBytes(body)
	switch {
	case res.Type == gjson.Null:
		return nil, nil
	case res.IsObject():
		return []json.RawMessage{json.RawMessage(res.Raw)}, nil
	case !res.IsArray():
		return nil, errors.New("expected a JSON array")
	}

	arr := res.Array()
	out := make([]json.RawMessage, 0, len(arr))
	for _, item := range arr {
		out = append(out, json.RawMessage(item.Raw))
	}
	return out, nil
}
