package routing

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/routegraph/pkg/observability"
)

const (
	nestedMenuJSON = `{
		"attendant-name": "after hours auto attendant",
		"user": "001",
		"starting-prompt": "Prompt_1001",
		"auto-attendant": {
			"3-digit-dial-by-extension": "yes",
			"no-key-press": "repeat",
			"unassigned-key-press": "repeat",
			"option-1": {"destination-application": "to-user", "destination-user": "101"},
			"option-2": {"destination-application": "sip:start@directory", "destination-user": "1003"},
			"option-3": {
				"description": "More options",
				"auto-attendant": {
					"option-1": {"destination-application": "to-user", "destination-user": "103"}
				}
			}
		}
	}`

	introMenuJSON = `{
		"attendant-name": "Main AA",
		"user": "101",
		"starting-prompt": "Prompt_1001",
		"auto-attendant": {
			"option-1": {"destination-application": "to-user", "destination-user": "999"}
		},
		"intro-greetings": [
			{"time-frame": "Holidays", "audio": {"ordinal-order": 1003, "file-script-text": "Holidays Greeting Script"}}
		]
	}`

	conferenceMenuJSON = `{
		"attendant-name": "Conference AA",
		"user": "001",
		"starting-prompt": "Prompt_Conf",
		"auto-attendant": {
			"option-4": {"destination-application": "to-single-device", "destination-user": "3333.1234567890.com"}
		}
	}`
)

func mustAttendant(t *testing.T, raw string) *Attendant {
	t.Helper()
	a, err := ParseAttendant([]byte(raw))
	require.NoError(t, err)
	return a
}

// =============================================================================
// Scenarios
// =============================================================================

func TestBuildEntryWithoutDestination(t *testing.T) {
	src := &fakeSource{entries: []EntryPoint{{Number: "19095551234"}}}

	g, err := build(context.Background(), src, "test.com")
	require.NoError(t, err)

	assert.Empty(t, g.Elements)
	assert.Equal(t, 1, g.Stats.Skipped)
	assert.Equal(t, 1, g.Stats.EntryPoints)
}

func TestBuildUserWithoutRules(t *testing.T) {
	src := &fakeSource{
		entries: []EntryPoint{{Number: "5550001000", Destination: "101", Application: "to-user"}},
		users:   []User{{ID: "101"}},
	}

	g, err := build(context.Background(), src, "test.com")
	require.NoError(t, err)
	require.Len(t, g.Elements, 3)

	did := g.Elements[0].Node
	require.NotNil(t, did)
	assert.Equal(t, "did_5550001000", did.ID)
	assert.Equal(t, "Phone Number: (555) 000-1000", did.Label)
	assert.Equal(t, KindIngress, did.Type)
	assert.Equal(t, map[string]string{"Destination": "101", "Application": "to-user"}, did.Details)

	edge := g.Elements[1].Edge
	require.NotNil(t, edge)
	assert.Equal(t, "edge_did_5550001000_user_101", edge.ID)
	assert.Equal(t, "Destination", edge.Label)
	assert.Nil(t, edge.Priority)

	user := g.Elements[2].Node
	require.NotNil(t, user)
	assert.Equal(t, "user_101", user.ID)
	assert.Equal(t, "101", user.Label)
	assert.Equal(t, "/portal/answerrules/index/101@test.com", user.Link)
	assert.Nil(t, user.Details)

	assert.Equal(t, 1, src.callCount("rules:101"))
	assert.Equal(t, 2, g.Stats.Nodes)
	assert.Equal(t, 1, g.Stats.Edges)
}

func TestBuildSpecialPatterns(t *testing.T) {
	src := &fakeSource{
		users: []User{{ID: "400", FirstName: "User", LastName: "400"}},
		entries: []EntryPoint{
			{Number: "16262553901", Destination: "16262553901_callqueue_400"},
			{Number: "16262553902", Destination: "16262553902_attendant_400"},
			{Number: "16262553903", Destination: "16262553901_pstn_12135551212"},
		},
	}

	g, err := build(context.Background(), src, "test.com")
	require.NoError(t, err)

	queue := lookupNode(g, "call_queue_400")
	require.NotNil(t, queue)
	assert.Equal(t, "Queue: 400", queue.Label)
	assert.Equal(t, "user_400", queue.Parent)

	user := lookupNode(g, "user_400")
	require.NotNil(t, user)
	assert.Equal(t, "User 400 (400)", user.Label)

	offnet := lookupNode(g, "offnet_12135551212")
	require.NotNil(t, offnet)
	assert.Equal(t, "External: (213) 555-1212", offnet.Label)
	assert.Empty(t, offnet.Link)
}

func TestBuildConference(t *testing.T) {
	src := &fakeSource{
		entries:    []EntryPoint{{Number: "5550001000", Destination: "001:Prompt_Conf"}},
		attendants: map[string]*Attendant{"001:Prompt_Conf": mustAttendant(t, conferenceMenuJSON)},
	}

	g, err := build(context.Background(), src, "test.com")
	require.NoError(t, err)

	main := "auto_attendant_001_Prompt_Conf"
	press4 := edgeLabeled(edgesFrom(g, main), "Press 4")
	require.NotNil(t, press4)
	assert.Equal(t, "conference_3333", press4.Target)

	conf := lookupNode(g, "conference_3333")
	require.NotNil(t, conf)
	assert.Equal(t, KindConference, conf.Type)
	assert.Equal(t, "Conference Bridge: 3333", conf.Label)
	assert.Equal(t, "#EE82EE", conf.Color)
	assert.Equal(t, "/portal/conferences", conf.Link)
}

func TestBuildIntroGreeting(t *testing.T) {
	def := mustAttendant(t, introMenuJSON)
	src := &fakeSource{
		entries: []EntryPoint{{Number: "5550001000", Destination: "101:Announce_1003", Application: "auto-attendant"}},
		attendants: map[string]*Attendant{
			"101:Announce_1003": def,
			"101:Prompt_1001":   def,
		},
	}

	g, err := build(context.Background(), src, "test.com")
	require.NoError(t, err)

	greetingID := "auto_attendant_101_Announce_1003"
	mainID := "auto_attendant_101_Prompt_1001"

	greeting := lookupNode(g, greetingID)
	require.NotNil(t, greeting)
	assert.Equal(t, "Intro Greeting: Holidays (1003)", greeting.Label)
	assert.Equal(t, mainID, greeting.Parent)
	assert.Equal(t, "Holidays Greeting Script", greeting.Details["Intro Script"])

	out := edgesFrom(g, greetingID)
	require.Len(t, out, 1)
	assert.Equal(t, "Next", out[0].Label)
	assert.Equal(t, mainID, out[0].Target)

	main := lookupNode(g, mainID)
	require.NotNil(t, main)
	assert.Equal(t, "Main AA (Prompt_1001)", main.Label)
	assert.Empty(t, main.Parent)

	press1 := edgeLabeled(edgesFrom(g, mainID), "Press 1")
	require.NotNil(t, press1)
	assert.Equal(t, "other_999", press1.Target)

	assert.Equal(t, 1, src.callCount("attendant:101:Announce_1003"))
	assert.Equal(t, 1, src.callCount("attendant:101:Prompt_1001"))
}

func TestBuildIntroGreetingWithoutTimeframe(t *testing.T) {
	def := mustAttendant(t, `{
		"attendant-name": "Main AA",
		"user": "101",
		"starting-prompt": "Prompt_1001",
		"auto-attendant": {
			"option-1": {"destination-application": "to-user", "destination-user": "999"}
		},
		"intro-greetings": [{"audio": {"ordinal-order": 7}}]
	}`)
	src := &fakeSource{
		entries:    []EntryPoint{{Number: "5550001000", Destination: "101:Announce_7"}},
		attendants: map[string]*Attendant{"101:Announce_7": def},
	}

	g, err := build(context.Background(), src, "test.com")
	require.NoError(t, err)

	id := "auto_attendant_101_Announce_7"
	node := lookupNode(g, id)
	require.NotNil(t, node)
	assert.Equal(t, "Main AA (Prompt_1001)", node.Label)
	assert.Empty(t, node.Parent)

	edges := edgesFrom(g, id)
	assert.Nil(t, edgeLabeled(edges, "Next"))
	require.NotNil(t, edgeLabeled(edges, "Press 1"))
	assert.Zero(t, src.callCount("attendant:101:Prompt_1001"))
}

func TestBuildNestedAttendant(t *testing.T) {
	src := &fakeSource{
		users:      []User{{ID: "101"}, {ID: "103"}},
		entries:    []EntryPoint{{Number: "5550001000", Destination: "001:Prompt_1001"}},
		attendants: map[string]*Attendant{"001:Prompt_1001": mustAttendant(t, nestedMenuJSON)},
	}

	g, err := build(context.Background(), src, "test.com")
	require.NoError(t, err)

	mainID := "auto_attendant_001_Prompt_1001"
	main := lookupNode(g, mainID)
	require.NotNil(t, main)
	assert.Equal(t, "after hours auto attendant (Prompt_1001)", main.Label)
	assert.Equal(t, "001", main.Details["Owner"])

	edges := edgesFrom(g, mainID)

	noInput := edgeLabeled(edges, "No Input")
	require.NotNil(t, noInput)
	assert.Equal(t, mainID, noInput.Target)
	// Invalid Input loops back too; its edge id collides and the first wins.
	assert.Nil(t, edgeLabeled(edges, "Invalid Input"))

	press1 := edgeLabeled(edges, "Press 1")
	require.NotNil(t, press1)
	assert.Equal(t, "user_101", press1.Target)

	press2 := edgeLabeled(edges, "Press 2")
	require.NotNil(t, press2)
	dir := lookupNode(g, press2.Target)
	require.NotNil(t, dir)
	assert.Equal(t, KindDirectory, dir.Type)
	assert.Equal(t, "Directory", dir.Label)
	assert.Equal(t, "#DA70D6", dir.Color)

	press3 := edgeLabeled(edges, "Press 3")
	require.NotNil(t, press3)
	assert.Equal(t, "auto_attendant_001_Prompt_1001_nested_option-3", press3.Target)

	nested := lookupNode(g, press3.Target)
	require.NotNil(t, nested)
	assert.Equal(t, KindAutoAttendant, nested.Type)
	assert.Equal(t, "Nested Press 3 (Prompt_1001:nested_option-3)", nested.Label)
	assert.Equal(t, mainID, nested.Parent)

	nestedPress1 := edgeLabeled(edgesFrom(g, nested.ID), "Press 1")
	require.NotNil(t, nestedPress1)
	assert.Equal(t, "user_103", nestedPress1.Target)

	assert.Equal(t, 1, src.callCount("attendant:001:Prompt_1001"))
	assert.Zero(t, src.callCount("attendant:001:Prompt_1001:nested_option-3"))
}

func TestBuildRepeatTier(t *testing.T) {
	src := &fakeSource{
		entries: []EntryPoint{{Number: "5551234567", Destination: "101:Prompt_Repeat"}},
		attendants: map[string]*Attendant{
			"101:Prompt_Repeat": {
				Name:           "Repeat AA",
				Owner:          "101",
				StartingPrompt: "Prompt_Repeat",
				Options: []AttendantOption{
					{Key: "option-1", Application: "repeat-tier"},
					{Key: "option-2", Application: "hangup"},
				},
			},
		},
	}

	g, err := build(context.Background(), src, "test.com")
	require.NoError(t, err)

	id := "auto_attendant_101_Prompt_Repeat"
	edges := edgesFrom(g, id)

	self := edgeLabeled(edges, "Press 1")
	require.NotNil(t, self)
	assert.Equal(t, id, self.Target)

	hangup := edgeLabeled(edges, "Press 2")
	require.NotNil(t, hangup)
	assert.Equal(t, "hangup_Hangup", hangup.Target)
	require.NotNil(t, lookupNode(g, "hangup_Hangup"))
	assert.Equal(t, "Hangup", lookupNode(g, "hangup_Hangup").Label)
}

func TestBuildAttendantApplications(t *testing.T) {
	tests := []struct {
		name      string
		app       string
		dest      string
		wantID    string
		wantKind  Kind
		wantLabel string
	}{
		{"voicemail", "voicemail", "101", "voicemail_101", KindVoicemail, "101"},
		{"call center", "callcenter", "500", "call_queue_500", KindCallQueue, "Queue: 500"},
		{"sip directory", "sip:start@directory", "", "directory_Directory", KindDirectory, "Directory"},
		{"directory without sip start", "to-voicemail-directory", "x", "other_x", KindOther, "Other: x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSource{
				entries: []EntryPoint{{Number: "5550001000", Destination: "001:Prompt_Apps"}},
				attendants: map[string]*Attendant{
					"001:Prompt_Apps": {
						Name:           "Apps AA",
						Owner:          "001",
						StartingPrompt: "Prompt_Apps",
						Options: []AttendantOption{
							{Key: "option-1", Application: tt.app, Destination: tt.dest},
						},
					},
				},
			}

			g, err := build(context.Background(), src, "test.com")
			require.NoError(t, err)

			press1 := edgeLabeled(edgesFrom(g, "auto_attendant_001_Prompt_Apps"), "Press 1")
			require.NotNil(t, press1)
			assert.Equal(t, tt.wantID, press1.Target)

			node := lookupNode(g, tt.wantID)
			require.NotNil(t, node)
			assert.Equal(t, tt.wantKind, node.Type)
			assert.Equal(t, tt.wantLabel, node.Label)
		})
	}
}

func TestBuildAnswerRuleForwards(t *testing.T) {
	tests := []struct {
		name        string
		rule        AnswerRule
		wantLabel   string
		wantTargets []string
	}{
		{
			name:        "forward offline enabled",
			rule:        AnswerRule{Timeframe: "*", ForwardOffline: fwd("19095551234")},
			wantLabel:   "Forward Offline (Timeframe: Default)",
			wantTargets: []string{"offnet_19095551234"},
		},
		{
			name:        "simultaneous ring follows every parameter",
			rule:        AnswerRule{Timeframe: "Lunch", SimultaneousRing: fwd("vmail_101", "phone_mac1", "hangup")},
			wantLabel:   "Simultaneous Ring (Timeframe: Lunch)",
			wantTargets: []string{"voicemail_vmail_101", "device_mac1", "hangup_Hangup"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSource{
				users:   []User{{ID: "101"}},
				entries: []EntryPoint{{Number: "5550001000", Destination: "101"}},
				rules:   map[string][]AnswerRule{"101": {tt.rule}},
			}

			g, err := build(context.Background(), src, "test.com")
			require.NoError(t, err)

			var targets []string
			for _, e := range edgesFrom(g, "user_101") {
				assert.Equal(t, tt.wantLabel, e.Label)
				targets = append(targets, e.Target)
			}
			assert.Equal(t, tt.wantTargets, targets)
			for _, id := range tt.wantTargets {
				assert.NotNil(t, lookupNode(g, id), id)
			}
		})
	}
}

func TestBuildAnswerRules(t *testing.T) {
	window := json.RawMessage(`[{"day":"mon"}]`)
	src := &fakeSource{
		users:   []User{{ID: "101", FirstName: "Alice", LastName: "Smith", Email: "alice@test.com"}},
		entries: []EntryPoint{{Number: "5550001000", Destination: "101"}},
		rules: map[string][]AnswerRule{
			"101": {
				{
					Timeframe:        "*",
					Priority:         1,
					SimultaneousRing: fwd("unknown_target"),
					ForwardAlways:    fwd("phone_mac123"),
					ForwardBusy:      fwd("hangup"),
					ForwardNoAnswer:  fwd("vmail_101", "ignored"),
					ForwardOffline:   &Forwarding{Enabled: false, Parameters: []string{"19095551234"}},
				},
				{
					Timeframe:     "Holidays",
					Priority:      2,
					TimeRangeData: window,
					ForwardAlways: fwd("Prompt_2000"),
					ForwardBusy:   fwd(),
				},
			},
		},
	}

	g, err := build(context.Background(), src, "test.com")
	require.NoError(t, err)

	user := lookupNode(g, "user_101")
	require.NotNil(t, user)
	assert.Equal(t, "Alice Smith (101)", user.Label)
	assert.Equal(t, map[string]string{"Email": "alice@test.com"}, user.Details)

	edges := edgesFrom(g, "user_101")
	var labels []string
	for _, e := range edges {
		labels = append(labels, e.Label)
	}
	assert.Equal(t, []string{
		"Simultaneous Ring (Timeframe: Default)",
		"Forward Always (Timeframe: Default)",
		"Forward Busy (Timeframe: Default)",
		"Forward No Answer (Timeframe: Default)",
		"Forward Always (Timeframe: Holidays)",
	}, labels)

	for _, e := range edges[:4] {
		require.NotNil(t, e.Priority)
		assert.Equal(t, 1, *e.Priority)
		assert.Equal(t, "Default", e.Timeframe)
	}
	assert.Equal(t, "other_unknown_target", edges[0].Target)
	assert.Equal(t, "device_mac123", edges[1].Target)
	assert.Equal(t, "hangup_Hangup", edges[2].Target)
	assert.Equal(t, "voicemail_vmail_101", edges[3].Target)

	holidays := edges[4]
	assert.Equal(t, "auto_attendant_101_Prompt_2000", holidays.Target)
	assert.Equal(t, 2, *holidays.Priority)
	assert.JSONEq(t, string(window), string(holidays.TimeRangeData))

	assert.Equal(t, "Other: unknown_target", lookupNode(g, "other_unknown_target").Label)
	assert.Equal(t, "Device: mac123", lookupNode(g, "device_mac123").Label)
	assert.Equal(t, "Voicemail (101)", lookupNode(g, "voicemail_vmail_101").Label)
	assert.Nil(t, lookupNode(g, "offnet_19095551234"), "disabled forward must not be followed")

	aa := lookupNode(g, "auto_attendant_101_Prompt_2000")
	require.NotNil(t, aa)
	assert.Equal(t, "Auto Attendant: Prompt_2000", aa.Label)
	assert.Equal(t, "user_101", aa.Parent)
	assert.Equal(t, 1, src.callCount("attendant:101:Prompt_2000"))
}

func TestBuildOffnet(t *testing.T) {
	src := &fakeSource{
		users:   []User{{ID: "101"}},
		entries: []EntryPoint{{Number: "5550001000", Destination: "101"}},
		rules: map[string][]AnswerRule{
			"101": {{Timeframe: "*", ForwardAlways: fwd("19095551234")}},
		},
	}

	g, err := build(context.Background(), src, "test.com")
	require.NoError(t, err)

	off := lookupNode(g, "offnet_19095551234")
	require.NotNil(t, off)
	assert.Equal(t, "#90EE90", off.Color)
	assert.Equal(t, "External: (909) 555-1234", off.Label)
}

func TestBuildQueueParent(t *testing.T) {
	src := &fakeSource{
		users: []User{{ID: "500"}},
		entries: []EntryPoint{
			{Number: "5550001000", Destination: "500"},
			{Number: "5550002000", Destination: "queue_600"},
		},
		rules: map[string][]AnswerRule{
			"500": {{Timeframe: "*", ForwardAlways: fwd("queue_500")}},
		},
	}

	g, err := build(context.Background(), src, "test.com")
	require.NoError(t, err)

	owned := lookupNode(g, "call_queue_500")
	require.NotNil(t, owned)
	assert.Equal(t, "user_500", owned.Parent)

	standalone := lookupNode(g, "call_queue_600")
	require.NotNil(t, standalone)
	assert.Empty(t, standalone.Parent)
}

// =============================================================================
// Traversal properties
// =============================================================================

func TestBuildQueueAgentsAreNotExpanded(t *testing.T) {
	src := &fakeSource{
		users:   []User{{ID: "101"}},
		entries: []EntryPoint{{Number: "5550001000", Destination: "queue_500"}},
		agents:  map[string][]QueueAgent{"500": {{User: "101"}, {User: ""}}},
		rules: map[string][]AnswerRule{
			"101": {{Timeframe: "*", ForwardAlways: fwd("hangup")}},
		},
	}

	g, err := build(context.Background(), src, "test.com")
	require.NoError(t, err)

	agent := edgeLabeled(edgesFrom(g, "call_queue_500"), "Agent")
	require.NotNil(t, agent)
	assert.Equal(t, "user_101", agent.Target)
	assert.Len(t, edgesFrom(g, "call_queue_500"), 1)

	assert.Empty(t, edgesFrom(g, "user_101"))
	assert.Zero(t, src.callCount("rules:101"))
	assert.Nil(t, lookupNode(g, "hangup_Hangup"))
}

func TestBuildTerminatesOnCycles(t *testing.T) {
	src := &fakeSource{
		users:   []User{{ID: "101"}, {ID: "102"}},
		entries: []EntryPoint{{Number: "5550001000", Destination: "101"}, {Number: "5550002000", Destination: "001:Prompt_A"}},
		rules: map[string][]AnswerRule{
			"101": {{Timeframe: "*", SimultaneousRing: fwd("101"), ForwardAlways: fwd("user_102")}},
			"102": {{Timeframe: "*", ForwardAlways: fwd("101")}},
		},
		attendants: map[string]*Attendant{
			"001:Prompt_A": {Owner: "001", StartingPrompt: "Prompt_A", Options: []AttendantOption{
				{Key: "option-1", Application: "to-attendant", Destination: "001:Prompt_B"},
			}},
			"001:Prompt_B": {Owner: "001", StartingPrompt: "Prompt_B", Options: []AttendantOption{
				{Key: "option-1", Application: "to-attendant", Destination: "001:Prompt_A"},
			}},
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	g, err := build(ctx, src, "test.com")
	require.NoError(t, err)

	assert.Equal(t, 1, src.callCount("rules:101"))
	assert.Equal(t, 1, src.callCount("rules:102"))
	assert.Equal(t, 1, src.callCount("attendant:001:Prompt_A"))
	assert.Equal(t, 1, src.callCount("attendant:001:Prompt_B"))

	assert.NotNil(t, edgeLabeled(edgesFrom(g, "user_101"), "Simultaneous Ring (Timeframe: Default)"))
	assert.Len(t, edgesFrom(g, "user_102"), 1)
	assert.Len(t, edgesFrom(g, "auto_attendant_001_Prompt_B"), 1)
	assert.Equal(t, "auto_attendant_001_Prompt_A", edgesFrom(g, "auto_attendant_001_Prompt_B")[0].Target)

	// did, user_101, user_102, did, Prompt_A, Prompt_B
	assert.Equal(t, 6, g.Stats.Nodes)
	// did->101, 101->101, 101->102, 102->101, did->A, A->B, B->A
	assert.Equal(t, 7, g.Stats.Edges)
}

func TestBuildSharedTarget(t *testing.T) {
	src := &fakeSource{
		users: []User{{ID: "101"}},
		entries: []EntryPoint{
			{Number: "5550001000", Destination: "101"},
			{Number: "5550002000", Destination: "101"},
		},
	}

	g, err := build(context.Background(), src, "test.com")
	require.NoError(t, err)

	var users, into []string
	for _, n := range g.Nodes() {
		if n.ID == "user_101" {
			users = append(users, n.ID)
		}
	}
	for _, e := range g.Edges() {
		if e.Target == "user_101" {
			into = append(into, e.ID)
		}
	}
	assert.Len(t, users, 1)
	assert.ElementsMatch(t, []string{"edge_did_5550001000_user_101", "edge_did_5550002000_user_101"}, into)
	assert.Equal(t, 1, src.callCount("rules:101"))
}

func TestBuildIDCollisionKeepsFirst(t *testing.T) {
	src := &fakeSource{
		entries: []EntryPoint{
			{Number: "5550001000", Destination: "user_a.b"},
			{Number: "5550002000", Destination: "user_a:b"},
		},
	}

	g, err := build(context.Background(), src, "test.com")
	require.NoError(t, err)

	n := lookupNode(g, "user_a_b")
	require.NotNil(t, n)
	assert.Equal(t, "a.b", n.Label)
	assert.Equal(t, 1, src.callCount("rules:a.b"))
	assert.Zero(t, src.callCount("rules:a:b"))
}

func TestBuildIsDeterministic(t *testing.T) {
	newSource := func() *fakeSource {
		return &fakeSource{
			users: []User{{ID: "101"}, {ID: "103"}},
			entries: []EntryPoint{
				{Number: "5550001000", Destination: "001:Prompt_1001"},
				{Number: "5550002000", Destination: "101"},
			},
			attendants: map[string]*Attendant{"001:Prompt_1001": mustAttendant(t, nestedMenuJSON)},
			rules: map[string][]AnswerRule{
				"101": {{Timeframe: "*", ForwardAlways: fwd("001:Prompt_1001")}},
			},
		}
	}

	first, err := build(context.Background(), newSource(), "test.com")
	require.NoError(t, err)
	second, err := build(context.Background(), newSource(), "test.com")
	require.NoError(t, err)

	assert.Equal(t, first.Elements, second.Elements)
}

func TestBuildElementIDsAreUnique(t *testing.T) {
	src := &fakeSource{
		users:      []User{{ID: "101"}, {ID: "103"}},
		entries:    []EntryPoint{{Number: "5550001000", Destination: "001:Prompt_1001"}},
		attendants: map[string]*Attendant{"001:Prompt_1001": mustAttendant(t, nestedMenuJSON)},
	}

	g, err := build(context.Background(), src, "test.com")
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, e := range g.Elements {
		require.False(t, seen[e.ID()], "duplicate id %s", e.ID())
		seen[e.ID()] = true
	}
	assert.Equal(t, len(g.Nodes()), g.Stats.Nodes)
	assert.Equal(t, len(g.Edges()), g.Stats.Edges)
}

// =============================================================================
// Failure isolation
// =============================================================================

func TestBuildPrefetchFailuresAreIsolated(t *testing.T) {
	src := &fakeSource{
		usersErr: stderrors.New("users down"),
		tfErr:    stderrors.New("timeframes down"),
		entries:  []EntryPoint{{Number: "5550001000", Destination: "101"}},
	}

	g, err := build(context.Background(), src, "test.com")
	require.NoError(t, err)

	assert.Zero(t, g.Stats.Users)
	assert.Zero(t, g.Stats.Timeframes)
	// Without the user list the bare id is not recognized.
	assert.NotNil(t, lookupNode(g, "other_101"))
}

func TestBuildCountsTimeframes(t *testing.T) {
	src := &fakeSource{
		users:      []User{{ID: "101"}},
		timeframes: []Timeframe{{Name: "Work Hours"}, {Name: "Holidays"}},
	}

	g, err := build(context.Background(), src, "test.com")
	require.NoError(t, err)
	assert.Equal(t, 1, g.Stats.Users)
	assert.Equal(t, 2, g.Stats.Timeframes)
	assert.Empty(t, g.Elements)
}

func TestBuildLookupFailuresAreIsolated(t *testing.T) {
	src := &fakeSource{
		users: []User{{ID: "101"}},
		entries: []EntryPoint{
			{Number: "5550001000", Destination: "101"},
			{Number: "5550002000", Destination: "001:Prompt_X"},
			{Number: "5550003000", Destination: "queue_7"},
		},
		rulesErr:     map[string]error{"101": stderrors.New("rules down")},
		attendantErr: map[string]error{"001:Prompt_X": stderrors.New("attendant down")},
		agents:       map[string][]QueueAgent{"7": {{User: "101"}}},
	}

	g, err := build(context.Background(), src, "test.com")
	require.NoError(t, err)

	assert.NotNil(t, lookupNode(g, "user_101"))
	assert.Empty(t, edgesFrom(g, "user_101"))

	aa := lookupNode(g, "auto_attendant_001_Prompt_X")
	require.NotNil(t, aa)
	assert.Equal(t, "Auto Attendant: Prompt_X", aa.Label)
	assert.Empty(t, edgesFrom(g, aa.ID))

	// Later entry points are still traversed.
	assert.Len(t, edgesFrom(g, "call_queue_7"), 1)

	// rules once, attendant on materialize and again on expand
	assert.Equal(t, 3, g.Stats.Failures)
	assert.Equal(t, 2, src.callCount("attendant:001:Prompt_X"))
}

func TestBuildSkipsUnparsableNestedMenu(t *testing.T) {
	src := &fakeSource{
		entries: []EntryPoint{{Number: "5550001000", Destination: "001:Prompt_N"}},
		attendants: map[string]*Attendant{
			"001:Prompt_N": {Owner: "001", StartingPrompt: "Prompt_N", Options: []AttendantOption{
				{Key: "option-1", Nested: json.RawMessage(`{"option-1": 5}`)},
				{Key: "option-2", Application: "hangup"},
			}},
		},
	}

	g, err := build(context.Background(), src, "test.com")
	require.NoError(t, err)

	edges := edgesFrom(g, "auto_attendant_001_Prompt_N")
	require.Len(t, edges, 1)
	assert.Equal(t, "Press 2", edges[0].Label)
	assert.Equal(t, 1, g.Stats.Failures)
}

func TestBuildEntryPointFailureAborts(t *testing.T) {
	boom := stderrors.New("boom")
	src := &fakeSource{entriesErr: boom}

	g, err := build(context.Background(), src, "test.com")
	require.ErrorIs(t, err, boom)
	assert.Nil(t, g)
}

func TestBuildCancelled(t *testing.T) {
	src := &fakeSource{
		users:   []User{{ID: "101"}},
		entries: []EntryPoint{{Number: "5550001000", Destination: "101"}},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g, err := build(ctx, src, "test.com")
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, g)
}

// =============================================================================
// Options
// =============================================================================

func TestBuildEntryFilter(t *testing.T) {
	src := &fakeSource{
		users: []User{{ID: "101"}, {ID: "102"}},
		entries: []EntryPoint{
			{Number: "5550001000", Destination: "101"},
			{Number: "5550002000", Destination: "102"},
		},
	}

	g, err := Build(context.Background(), src, "test.com", Options{
		Logger:      quietLogger(),
		EntryFilter: func(ep EntryPoint) bool { return ep.Number == "5550002000" },
	})
	require.NoError(t, err)

	assert.Equal(t, 1, g.Stats.EntryPoints)
	assert.Nil(t, lookupNode(g, "did_5550001000"))
	assert.NotNil(t, lookupNode(g, "user_102"))
	assert.NotEmpty(t, g.BuildID)
	assert.Equal(t, "test.com", g.Domain)
}

type recordingBuildHooks struct {
	observability.NoopBuildHooks
	started, completed int
	elements           int
	expansions         map[string]int
	err                error
}

func (h *recordingBuildHooks) OnBuildStart(context.Context, string, string) { h.started++ }

func (h *recordingBuildHooks) OnBuildComplete(_ context.Context, _, _ string, elements int, _ time.Duration, err error) {
	h.completed++
	h.elements = elements
	h.err = err
}

func (h *recordingBuildHooks) OnExpand(_ context.Context, kind string, _ int, _ error) {
	h.expansions[kind]++
}

func TestBuildHooks(t *testing.T) {
	h := &recordingBuildHooks{expansions: map[string]int{}}
	observability.SetBuildHooks(h)
	t.Cleanup(observability.Reset)

	src := &fakeSource{
		users:   []User{{ID: "101"}},
		entries: []EntryPoint{{Number: "5550001000", Destination: "101"}},
	}
	g, err := build(context.Background(), src, "test.com")
	require.NoError(t, err)

	assert.Equal(t, 1, h.started)
	assert.Equal(t, 1, h.completed)
	assert.Equal(t, len(g.Elements), h.elements)
	assert.NoError(t, h.err)
	assert.Equal(t, 1, h.expansions[string(KindUser)])
}
