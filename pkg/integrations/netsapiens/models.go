package netsapiens

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Wire shapes of the v2 API. Only the fields the routing graph needs are
// declared.

type phoneNumber struct {
	Number      flexString `json:"phonenumber"`
	Destination flexString `json:"dial-rule-translation-destination-user"`
	Application string     `json:"dial-rule-application"`
}

type user struct {
	ID         flexString `json:"user"`
	FirstName  string     `json:"name-first-name"`
	LastName   string     `json:"name-last-name"`
	Email      string     `json:"email-address"`
	Department string     `json:"department"`
	Site       string     `json:"site"`
	Status     string     `json:"status-message"`
}

type timeframe struct {
	Name string `json:"timeframe-name"`
}

type forwarding struct {
	Enabled    flexBool     `json:"enabled"`
	Parameters []flexString `json:"parameters"`
}

type answerRule struct {
	Timeframe     string          `json:"time-frame"`
	Priority      flexInt         `json:"ordinal-priority"`
	TimeRangeData json.RawMessage `json:"time_range_data"`

	SimultaneousRing        *forwarding `json:"simultaneous-ring"`
	ForwardAlways           *forwarding `json:"forward-always"`
	ForwardOnBusy           *forwarding `json:"forward-on-busy"`
	ForwardNoAnswer         *forwarding `json:"forward-no-answer"`
	ForwardWhenUnregistered *forwarding `json:"forward-when-unregistered"`
}

type queueAgent struct {
	ID flexString `json:"callqueue-agent-id"`
}

// flexString accepts a JSON string or number. Destinations and forwarding
// parameters are sent as either depending on the PBX version.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*s = ""
	case len(data) > 0 && data[0] == '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = flexString(v)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*s = flexString(n.String())
	}
	return nil
}

// flexBool accepts "yes"/"no", "true"/"false", "1"/"0" and JSON booleans.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case bool:
		*b = flexBool(t)
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "yes", "true", "1", "on":
			*b = true
		default:
			*b = false
		}
	case float64:
		*b = t != 0
	default:
		*b = false
	}
	return nil
}

// flexInt accepts a JSON number or a numeric string. Anything else is 0.
type flexInt int

func (i *flexInt) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case float64:
		*i = flexInt(t)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			*i = 0
			return nil
		}
		*i = flexInt(n)
	default:
		*i = 0
	}
	return nil
}
