package routing

import (
	"strconv"
	"strings"
)

// introGreeting reports whether prompt names one of def's intro greetings
// rather than its main menu. Both the node label and the node's children are
// derived from this single predicate.
//
// A prompt is an intro greeting when it contains "Announce", its last run of
// digits equals the ordinal of one of def's greetings that names a
// time-frame, and def has a starting prompt other than prompt itself to
// continue to.
func introGreeting(prompt string, def *Attendant) (IntroGreeting, bool) {
	if def == nil || len(def.IntroGreetings) == 0 || !strings.Contains(prompt, "Announce") {
		return IntroGreeting{}, false
	}
	if def.StartingPrompt == "" || def.StartingPrompt == prompt {
		return IntroGreeting{}, false
	}
	run, ok := lastDigitRun(prompt)
	if !ok {
		return IntroGreeting{}, false
	}
	n, err := strconv.Atoi(run)
	if err != nil {
		return IntroGreeting{}, false
	}
	for _, g := range def.IntroGreetings {
		if g.HasOrdinal && g.Ordinal == n && g.Timeframe != "" {
			return g, true
		}
	}
	return IntroGreeting{}, false
}

// mainMenu is the target an intro greeting continues to.
func mainMenu(owner string, def *Attendant) Target {
	return Target{Kind: KindAutoAttendant, Name: owner + ":" + def.StartingPrompt}
}
