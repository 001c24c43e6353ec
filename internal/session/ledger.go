package session

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// ledger remembers, per browser session, the access token most recently
// issued or revoked by an auth action. Requests that loaded the session
// before that action carry an older token and must not write their view
// back.
type ledger struct {
	mu      sync.Mutex
	clock   clockwork.Clock
	ttl     time.Duration
	entries map[string]ledgerEntry
}

type ledgerEntry struct {
	token string
	at    time.Time
}

func newLedger(clock clockwork.Clock, ttl time.Duration) *ledger {
	return &ledger{
		clock:   clock,
		ttl:     ttl,
		entries: map[string]ledgerEntry{},
	}
}

func (l *ledger) record(sid, token string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	for k, e := range l.entries {
		if now.Sub(e.at) > l.ttl {
			delete(l.entries, k)
		}
	}
	l.entries[sid] = ledgerEntry{token: token, at: now}
}

func (l *ledger) superseded(sid, token string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[sid]
	if !ok || l.clock.Now().Sub(e.at) > l.ttl {
		return false
	}
	return e.token != token
}
