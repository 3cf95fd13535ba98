package routing

// origin tags where a cached attendant definition came from.
type origin uint8

const (
	// remoteBacked entries were fetched from the Source. A nil definition
	// records that the upstream reported it absent.
	remoteBacked origin = iota
	// synthetic entries were built locally from a nested option block and
	// have no upstream counterpart.
	synthetic
)

type attendantKey struct {
	owner, prompt string
}

type attendantEntry struct {
	origin origin
	def    *Attendant
}

// fetchCache holds everything fetched during one build. Failed fetches are
// not cached.
type fetchCache struct {
	users      map[string]User
	timeframes map[string]Timeframe

	rules      map[string][]AnswerRule
	agents     map[string][]QueueAgent
	attendants map[attendantKey]attendantEntry
}

func newFetchCache() *fetchCache {
	return &fetchCache{
		users:      make(map[string]User),
		timeframes: make(map[string]Timeframe),
		rules:      make(map[string][]AnswerRule),
		agents:     make(map[string][]QueueAgent),
		attendants: make(map[attendantKey]attendantEntry),
	}
}

func (c *fetchCache) isUser(id string) bool {
	_, ok := c.users[id]
	return ok
}

// inject registers a locally built definition. It never overwrites a
// remote-backed entry.
func (c *fetchCache) inject(owner, prompt string, def *Attendant) {
	key := attendantKey{owner, prompt}
	if e, ok := c.attendants[key]; ok && e.origin == remoteBacked {
		return
	}
	c.attendants[key] = attendantEntry{origin: synthetic, def: def}
}

// answerRules returns the memoized answer rules of user, fetching on miss.
func (b *builder) answerRules(user string) ([]AnswerRule, error) {
	if rules, ok := b.memo.rules[user]; ok {
		b.stats.MemoHits++
		return rules, nil
	}
	b.stats.Fetches++
	rules, err := b.src.ListAnswerRules(b.ctx, b.domain, user)
	if err != nil {
		return nil, err
	}
	b.memo.rules[user] = rules
	return rules, nil
}

// queueAgents returns the memoized agents of queue, fetching on miss.
func (b *builder) queueAgents(queue string) ([]QueueAgent, error) {
	if agents, ok := b.memo.agents[queue]; ok {
		b.stats.MemoHits++
		return agents, nil
	}
	b.stats.Fetches++
	agents, err := b.src.ListQueueAgents(b.ctx, b.domain, queue)
	if err != nil {
		return nil, err
	}
	b.memo.agents[queue] = agents
	return agents, nil
}

// attendant returns the definition for (owner, prompt). Synthetic entries
// are served without a remote call.
func (b *builder) attendant(owner, prompt string) (*Attendant, error) {
	key := attendantKey{owner, prompt}
	if e, ok := b.memo.attendants[key]; ok {
		b.stats.MemoHits++
		return e.def, nil
	}
	b.stats.Fetches++
	def, err := b.src.GetAttendant(b.ctx, b.domain, owner, prompt)
	if err != nil {
		return nil, err
	}
	b.memo.attendants[key] = attendantEntry{origin: remoteBacked, def: def}
	return def, nil
}
