package routing

import (
	"fmt"
	"strings"
)

// materialize builds the node for a newly visited target. The only error it
// returns is context cancellation; lookup failures degrade the label.
func (b *builder) materialize(p pending, id string) (*Node, error) {
	t := p.Target
	n := &Node{
		ID:    id,
		Label: t.Name,
		Type:  t.Kind,
		Color: Colors[t.Kind],
		Link:  PortalLink(b.domain, t.Kind, t.Name),
	}
	if t.ParentHint != "" {
		n.Parent = SafeID(t.ParentHint)
	}

	switch t.Kind {
	case KindUser:
		b.describeUser(n, t.Name)
	case KindAutoAttendant:
		if err := b.describeAttendant(n, p); err != nil {
			return nil, err
		}
	case KindCallQueue:
		n.Label = "Queue: " + t.Name
		if owner := SafeID("user_" + t.Name); p.Source == owner {
			n.Parent = owner
		}
	case KindVoicemail:
		if strings.Contains(t.Name, "vmail_") {
			n.Label = "Voicemail (" + strings.ReplaceAll(t.Name, "vmail_", "") + ")"
		}
	case KindOffnet:
		n.Label = "External: " + FormatPhone(t.Name)
	case KindHangup:
		n.Label = "Hangup"
	case KindOther:
		n.Label = "Other: " + t.Name
	case KindDirectory:
		n.Label = "Directory"
	case KindConference:
		n.Label = "Conference Bridge: " + t.Name
	case KindDevice:
		n.Label = "Device: " + t.Name
	}
	return n, nil
}

func (b *builder) describeUser(n *Node, id string) {
	u, ok := b.memo.users[id]
	if !ok {
		return
	}
	if full := u.FullName(); full != "" {
		n.Label = fmt.Sprintf("%s (%s)", full, id)
	}
	details := map[string]string{}
	for k, v := range map[string]string{
		"Email":      u.Email,
		"Department": u.Department,
		"Site":       u.Site,
		"Status":     u.Status,
	} {
		if v != "" {
			details[k] = v
		}
	}
	if len(details) > 0 {
		n.Details = details
	}
}

func (b *builder) describeAttendant(n *Node, p pending) error {
	name := p.Target.Name
	owner, prompt, _ := strings.Cut(name, ":")

	if owner == "" || prompt == "" {
		n.Label = "Auto Attendant: " + name
	} else {
		def, err := b.attendant(owner, prompt)
		if err != nil {
			if b.ctx.Err() != nil {
				return b.ctx.Err()
			}
			b.stats.Failures++
			b.logger.Warn("attendant lookup failed", "owner", owner, "prompt", prompt, "err", err)
		}

		if def == nil {
			n.Label = "Auto Attendant: " + prompt
		} else {
			title := def.Name
			if title == "" {
				title = "Auto Attendant"
			}
			start := def.StartingPrompt
			if start == "" {
				start = prompt
			}
			n.Details = map[string]string{
				"Attendant Name":  title,
				"Starting Prompt": start,
				"Owner":           owner,
			}

			if g, ok := introGreeting(prompt, def); ok {
				n.Label = fmt.Sprintf("Intro Greeting: %s (%d)", g.Timeframe, g.Ordinal)
				n.Parent = mainMenu(owner, def).NodeID()
				if g.Script != "" {
					n.Details["Intro Script"] = g.Script
				}
			} else {
				n.Label = fmt.Sprintf("%s (%s)", title, start)
			}
		}
	}

	switch {
	case n.Parent != "":
	case strings.HasPrefix(p.Source, "user_"):
		n.Parent = p.Source
	case strings.HasPrefix(p.Source, "auto_attendant_") && strings.Contains(name, "nested_"):
		n.Parent = p.Source
	}
	return nil
}
