package routing

import "strings"

// expand returns the children of a node that was reached with the expand
// flag. Children are returned without a source; the caller fills it in.
func (b *builder) expand(t Target) ([]pending, error) {
	switch t.Kind {
	case KindUser:
		return b.expandUser(t.Name)
	case KindAutoAttendant:
		return b.expandAttendant(t.Name)
	case KindCallQueue:
		return b.expandQueue(t.Name)
	}
	return nil, nil
}

func (b *builder) expandUser(user string) ([]pending, error) {
	rules, err := b.answerRules(user)
	if err != nil {
		return nil, err
	}

	var out []pending
	for _, r := range rules {
		meta := &edgeMeta{
			Timeframe:     r.Timeframe,
			Priority:      r.Priority,
			TimeRangeData: r.TimeRangeData,
		}
		if meta.Timeframe == "*" {
			meta.Timeframe = "Default"
		}

		if sr := r.SimultaneousRing; sr != nil && sr.Enabled {
			for _, param := range sr.Parameters {
				if c, ok := b.ruleChild(user, "Simultaneous Ring", param, meta); ok {
					out = append(out, c)
				}
			}
		}

		forwards := []struct {
			action string
			fwd    *Forwarding
		}{
			{"Forward Always", r.ForwardAlways},
			{"Forward Busy", r.ForwardBusy},
			{"Forward No Answer", r.ForwardNoAnswer},
			{"Forward Offline", r.ForwardOffline},
		}
		for _, f := range forwards {
			if f.fwd == nil || !f.fwd.Enabled || len(f.fwd.Parameters) == 0 {
				continue
			}
			if c, ok := b.ruleChild(user, f.action, f.fwd.Parameters[0], meta); ok {
				out = append(out, c)
			}
		}
	}
	return out, nil
}

// ruleChild classifies one answer-rule destination. Unqualified attendant
// references belong to the user that owns the rule.
func (b *builder) ruleChild(user, action, token string, meta *edgeMeta) (pending, bool) {
	if token == "" {
		return pending{}, false
	}
	t := b.classify(token)
	if t.Kind == KindAutoAttendant && !strings.Contains(t.Name, ":") {
		t.Name = user + ":" + t.Name
	}
	return pending{
		Target: t,
		Label:  action + " (Timeframe: " + meta.Timeframe + ")",
		Meta:   meta,
		Expand: true,
	}, true
}

func (b *builder) expandAttendant(name string) ([]pending, error) {
	owner, prompt, ok := strings.Cut(name, ":")
	if !ok {
		owner, prompt = name, name
	}

	def, err := b.attendant(owner, prompt)
	if err != nil || def == nil {
		return nil, err
	}

	if _, ok := introGreeting(prompt, def); ok {
		return []pending{{Target: mainMenu(owner, def), Label: "Next", Expand: true}}, nil
	}

	var out []pending
	for _, opt := range def.Options {
		label, ok := optionLabel(opt.Key)
		if !ok {
			continue
		}

		if opt.IsLiteral {
			if opt.Literal == "repeat" {
				out = append(out, pending{
					Target: Target{Kind: KindAutoAttendant, Name: name},
					Label:  label,
				})
			}
			continue
		}

		if len(opt.Nested) > 0 {
			if c, ok := b.nestedChild(owner, prompt, label, opt); ok {
				out = append(out, c)
			}
			continue
		}

		if app := opt.Application; strings.Contains(app, "sip:start") && strings.Contains(app, "directory") {
			out = append(out, pending{
				Target: Target{Kind: KindDirectory, Name: "Directory"},
				Label:  label,
			})
			continue
		}

		t := b.classify(opt.Destination)
		switch opt.Application {
		case "hangup":
			t.Kind, t.Name = KindHangup, "Hangup"
		case "voicemail":
			t.Kind = KindVoicemail
		case "repeat-tier":
			t.Kind, t.Name = KindAutoAttendant, name
		case "callcenter":
			t.Kind = KindCallQueue
		case "to-single-device":
			if id, _, dotted := strings.Cut(opt.Destination, "."); dotted {
				t.Kind, t.Name = KindConference, id
			}
		}
		if t.Name != "" {
			out = append(out, pending{Target: t, Label: label, Expand: true})
		}
	}
	return out, nil
}

// nestedChild registers an inline sub-menu as a synthetic attendant and
// returns the edge into it.
func (b *builder) nestedChild(owner, prompt, label string, opt AttendantOption) (pending, bool) {
	synthPrompt := prompt + ":nested_" + opt.Key

	options, err := ParseOptions(opt.Nested)
	if err != nil {
		b.stats.Failures++
		b.logger.Warn("skipping nested attendant", "key", opt.Key, "owner", owner, "err", err)
		return pending{}, false
	}

	b.memo.inject(owner, synthPrompt, &Attendant{
		Name:           "Nested " + label,
		Owner:          owner,
		StartingPrompt: synthPrompt,
		Options:        options,
	})
	return pending{
		Target: Target{Kind: KindAutoAttendant, Name: owner + ":" + synthPrompt},
		Label:  label,
		Expand: true,
	}, true
}

func (b *builder) expandQueue(queue string) ([]pending, error) {
	agents, err := b.queueAgents(queue)
	if err != nil {
		return nil, err
	}
	var out []pending
	for _, a := range agents {
		if a.User == "" {
			continue
		}
		out = append(out, pending{
			Target: Target{Kind: KindUser, Name: a.User},
			Label:  "Agent",
		})
	}
	return out, nil
}
