package routing

import (
	"regexp"
	"strings"
)

// Target is a classified destination token.
type Target struct {
	Kind Kind
	Name string
	// ParentHint is the unsanitized id of a grouping parent, if the token
	// itself implies one.
	ParentHint string
}

// Classifier maps raw destination tokens to targets. It is a pure function
// of the token, the domain and the set of known users.
type Classifier struct {
	Domain string
	// IsUser reports whether id is a known user. Nil means no users are known.
	IsUser func(id string) bool
}

var (
	reQueueAlias     = regexp.MustCompile(`^\d+_callqueue_(\w+)$`)
	reAttendantAlias = regexp.MustCompile(`^\d+_attendant_(\w+)$`)
	rePSTNAlias      = regexp.MustCompile(`^\d+_pstn_(\d+)$`)
	reExternal       = regexp.MustCompile(`^1?\d{10}$`)
)

// Classify applies the ordered rules; the first match wins.
func (c Classifier) Classify(token string) Target {
	if m := reQueueAlias.FindStringSubmatch(token); m != nil {
		return Target{Kind: KindCallQueue, Name: m[1], ParentHint: "user_" + m[1]}
	}
	if m := reAttendantAlias.FindStringSubmatch(token); m != nil {
		return Target{Kind: KindUser, Name: m[1]}
	}
	if m := rePSTNAlias.FindStringSubmatch(token); m != nil {
		return Target{Kind: KindOffnet, Name: m[1]}
	}

	switch {
	case strings.Contains(token, "Prompt"), strings.Contains(token, "Announce"):
		return Target{Kind: KindAutoAttendant, Name: token}
	case strings.Contains(token, "vmail_"):
		return Target{Kind: KindVoicemail, Name: token}
	case strings.Contains(token, "queue_"):
		return Target{Kind: KindCallQueue, Name: strings.ReplaceAll(token, "queue_", "")}
	case strings.Contains(token, "user_"):
		name := strings.ReplaceAll(token, "user_", "")
		if c.Domain != "" && strings.HasSuffix(name, "@"+c.Domain) {
			name, _, _ = strings.Cut(name, "@")
		}
		return Target{Kind: KindUser, Name: name}
	case strings.Contains(token, "phone_"):
		return Target{Kind: KindDevice, Name: strings.ReplaceAll(token, "phone_", "")}
	case c.IsUser != nil && c.IsUser(token):
		return Target{Kind: KindUser, Name: token}
	case reExternal.MatchString(token):
		return Target{Kind: KindOffnet, Name: token}
	case strings.EqualFold(token, "hangup"):
		return Target{Kind: KindHangup, Name: "Hangup"}
	}
	return Target{Kind: KindOther, Name: token}
}

// NodeID returns the sanitized node id of t.
func (t Target) NodeID() string {
	return SafeID(string(t.Kind) + "_" + t.Name)
}
