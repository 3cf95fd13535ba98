package routing

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/matzehuels/routegraph/pkg/errors"
)

// Attendant is an auto attendant (IVR menu) definition.
type Attendant struct {
	Name           string
	Owner          string
	StartingPrompt string
	Options        []AttendantOption
	IntroGreetings []IntroGreeting
}

// AttendantOption is one entry of an attendant's option map, in document
// order. A value is either a literal string (Literal set, e.g. "repeat") or
// a destination object.
type AttendantOption struct {
	Key string

	IsLiteral bool
	Literal   string

	Application string
	Destination string
	Description string

	// Nested holds the raw option map of an inline sub-menu. It is decoded
	// only when the option is expanded.
	Nested json.RawMessage
}

// IntroGreeting is a timeframe-specific recording played before the menu.
type IntroGreeting struct {
	Timeframe  string
	Ordinal    int
	HasOrdinal bool
	Script     string
	Audio      json.RawMessage
}

// ParseAttendant decodes an attendant definition in the upstream wire
// format. Failures are LOCAL_PARSE_FAILURE errors.
func ParseAttendant(raw []byte) (*Attendant, error) {
	if !gjson.ValidBytes(raw) {
		return nil, errors.New(errors.ErrCodeLocalParseFailure, "attendant: invalid JSON")
	}
	doc := gjson.ParseBytes(raw)
	if !doc.IsObject() {
		return nil, errors.New(errors.ErrCodeLocalParseFailure, "attendant: expected an object")
	}

	a := &Attendant{
		Name:           doc.Get("attendant-name").String(),
		Owner:          doc.Get("user").String(),
		StartingPrompt: doc.Get("starting-prompt").String(),
	}

	if opts := doc.Get("auto-attendant"); opts.Exists() && opts.Type != gjson.Null {
		parsed, err := ParseOptions([]byte(opts.Raw))
		if err != nil {
			return nil, err
		}
		a.Options = parsed
	}

	doc.Get("intro-greetings").ForEach(func(_, g gjson.Result) bool {
		if !g.IsObject() {
			return true
		}
		ig := IntroGreeting{
			Timeframe: g.Get("time-frame").String(),
			Script:    g.Get("audio.file-script-text").String(),
		}
		if audio := g.Get("audio"); audio.IsObject() {
			ig.Audio = json.RawMessage(audio.Raw)
		}
		ig.Ordinal, ig.HasOrdinal = ordinal(g.Get("audio.ordinal-order"))
		a.IntroGreetings = append(a.IntroGreetings, ig)
		return true
	})

	return a, nil
}

// ParseOptions decodes an option map, keeping key order. Every value must be
// a string or an object.
func ParseOptions(raw []byte) ([]AttendantOption, error) {
	if !gjson.ValidBytes(raw) {
		return nil, errors.New(errors.ErrCodeLocalParseFailure, "options: invalid JSON")
	}
	doc := gjson.ParseBytes(raw)
	if !doc.IsObject() {
		return nil, errors.New(errors.ErrCodeLocalParseFailure, "options: expected an object")
	}

	var (
		out []AttendantOption
		err error
	)
	doc.ForEach(func(k, v gjson.Result) bool {
		opt := AttendantOption{Key: k.String()}
		switch {
		case v.Type == gjson.String:
			opt.IsLiteral = true
			opt.Literal = v.String()
		case v.IsObject():
			opt.Application = v.Get("destination-application").String()
			opt.Destination = v.Get("destination-user").String()
			opt.Description = v.Get("description").String()
			if n := v.Get("auto-attendant"); n.IsObject() && hasKeys(n) {
				opt.Nested = json.RawMessage(n.Raw)
			}
		default:
			err = errors.New(errors.ErrCodeLocalParseFailure, "option %q: unsupported value %s", opt.Key, v.Type)
			return false
		}
		out = append(out, opt)
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func hasKeys(obj gjson.Result) bool {
	found := false
	obj.ForEach(func(_, _ gjson.Result) bool {
		found = true
		return false
	})
	return found
}

// ordinal accepts integral numbers and numeric strings.
func ordinal(r gjson.Result) (int, bool) {
	switch r.Type {
	case gjson.Number:
		if r.Num != float64(int64(r.Num)) {
			return 0, false
		}
		return int(r.Int()), true
	case gjson.String:
		n, err := strconv.Atoi(r.Str)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// optionLabel maps an option key to its edge label. ok is false for keys
// that do not route (feature flags such as "3-digit-dial-by-extension").
func optionLabel(key string) (label string, ok bool) {
	switch {
	case key == "no-key-press":
		return "No Input", true
	case key == "unassigned-key-press":
		return "Invalid Input", true
	case strings.HasPrefix(key, "option-"):
		return "Press " + strings.TrimPrefix(key, "option-"), true
	}
	return "", false
}
