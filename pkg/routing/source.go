package routing

import (
	"context"
	"encoding/json"
)

// Source is the remote access capability a build depends on.
//
// Every method distinguishes "not found" from "unavailable": an absent
// resource is an empty result (or a nil attendant) with a nil error, while
// an error means the upstream could not answer.
type Source interface {
	ListEntryPoints(ctx context.Context, domain string) ([]EntryPoint, error)
	ListUsers(ctx context.Context, domain string) ([]User, error)
	ListDomainTimeframes(ctx context.Context, domain string) ([]Timeframe, error)
	ListAnswerRules(ctx context.Context, domain, user string) ([]AnswerRule, error)
	// GetAttendant returns nil, nil when the definition does not exist.
	GetAttendant(ctx context.Context, domain, owner, prompt string) (*Attendant, error)
	ListQueueAgents(ctx context.Context, domain, queue string) ([]QueueAgent, error)
}

// EntryPoint is a public phone number (DID) and where it routes.
type EntryPoint struct {
	Number      string
	Destination string
	Application string
}

// User is a PBX subscriber.
type User struct {
	ID         string
	FirstName  string
	LastName   string
	Email      string
	Department string
	Site       string
	Status     string
}

// FullName joins first and last name, or returns "" when both are empty.
func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Timeframe is a named schedule defined at domain level.
type Timeframe struct {
	Name string
}

// Forwarding is one ring/forward mechanism of an answer rule.
type Forwarding struct {
	Enabled    bool
	Parameters []string
}

// AnswerRule is a timeframe-scoped routing configuration of a user.
type AnswerRule struct {
	Timeframe     string
	Priority      int
	TimeRangeData json.RawMessage

	SimultaneousRing *Forwarding
	ForwardAlways    *Forwarding
	ForwardBusy      *Forwarding
	ForwardNoAnswer  *Forwarding
	ForwardOffline   *Forwarding
}

// QueueAgent is a user answering calls for a call queue.
type QueueAgent struct {
	User string
}
