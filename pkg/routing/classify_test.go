package routing

import "testing"

func TestClassify(t *testing.T) {
	users := map[string]bool{"101": true, "400": true, "5559990000": true}
	c := Classifier{
		Domain: "test.com",
		IsUser: func(id string) bool { return users[id] },
	}

	tests := []struct {
		token string
		want  Target
	}{
		// alias forms
		{"16262553901_callqueue_400", Target{KindCallQueue, "400", "user_400"}},
		{"16262553902_attendant_400", Target{KindUser, "400", ""}},
		{"16262553901_pstn_12135551212", Target{KindOffnet, "12135551212", ""}},
		{"1_callqueue_user_3", Target{KindCallQueue, "user_3", "user_user_3"}},

		// substring rules
		{"101:Prompt_1001", Target{KindAutoAttendant, "101:Prompt_1001", ""}},
		{"Announce_1003", Target{KindAutoAttendant, "Announce_1003", ""}},
		{"vmail_101", Target{KindVoicemail, "vmail_101", ""}},
		{"queue_500", Target{KindCallQueue, "500", ""}},
		{"user_101", Target{KindUser, "101", ""}},
		{"user_101@test.com", Target{KindUser, "101", ""}},
		{"user_101@other.com", Target{KindUser, "101@other.com", ""}},
		{"phone_mac123", Target{KindDevice, "mac123", ""}},

		// known users, numbers, hangup, fallback
		{"101", Target{KindUser, "101", ""}},
		{"5559990000", Target{KindUser, "5559990000", ""}},
		{"19095551234", Target{KindOffnet, "19095551234", ""}},
		{"5551234567", Target{KindOffnet, "5551234567", ""}},
		{"29095551234", Target{KindOther, "29095551234", ""}},
		{"hangup", Target{KindHangup, "Hangup", ""}},
		{"HangUp", Target{KindHangup, "Hangup", ""}},
		{"unknown_target", Target{KindOther, "unknown_target", ""}},
		{"", Target{KindOther, "", ""}},

		// precedence between overlapping forms
		{"vmail_Prompt", Target{KindAutoAttendant, "vmail_Prompt", ""}},
		{"queue_user_5", Target{KindCallQueue, "user_5", ""}},
		{"user_vmail_9", Target{KindVoicemail, "user_vmail_9", ""}},
		{"user_phone_1", Target{KindUser, "phone_1", ""}},
		{"12345_pstn_99", Target{KindOffnet, "99", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			if got := c.Classify(tt.token); got != tt.want {
				t.Errorf("Classify(%q) = %+v, want %+v", tt.token, got, tt.want)
			}
		})
	}
}

func TestClassifyWithoutUsers(t *testing.T) {
	c := Classifier{Domain: "test.com"}
	if got := c.Classify("101"); got.Kind != KindOther {
		t.Errorf("Classify(101) kind = %s, want %s", got.Kind, KindOther)
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	c := Classifier{Domain: "d", IsUser: func(id string) bool { return id == "7" }}
	for _, tok := range []string{"7", "queue_7", "7:Prompt", "17775551234"} {
		first := c.Classify(tok)
		for i := 0; i < 10; i++ {
			if got := c.Classify(tok); got != first {
				t.Fatalf("Classify(%q) changed: %+v then %+v", tok, first, got)
			}
		}
	}
}

func TestTargetNodeID(t *testing.T) {
	tests := []struct {
		target Target
		want   string
	}{
		{Target{Kind: KindCallQueue, Name: "400"}, "call_queue_400"},
		{Target{Kind: KindAutoAttendant, Name: "101:Prompt_1001"}, "auto_attendant_101_Prompt_1001"},
		{Target{Kind: KindUser, Name: "101@other.com"}, "user_101_other_com"},
		{Target{Kind: KindConference, Name: "3333"}, "conference_3333"},
	}
	for _, tt := range tests {
		if got := tt.target.NodeID(); got != tt.want {
			t.Errorf("NodeID(%+v) = %q, want %q", tt.target, got, tt.want)
		}
	}
}
