// Package events is the lightweight in-memory event log that links task
// completion to event-anchored habit blocks and challenge chaining.
//
// Entries are keyed by string and retained for today plus yesterday; anything
// older is pruned on access. The log is never persisted.
package events

import "time"

// Log records the most recent firing per event key.
type Log struct {
	now   func() time.Time
	fired map[string]time.Time
}

// NewLog creates an empty event log reading the wall clock.
func NewLog() *Log {
	return &Log{
		now:   time.Now,
		fired: make(map[string]time.Time),
	}
}

// NewLogAt creates an event log with an injected clock.
func NewLogAt(now func() time.Time) *Log {
	l := NewLog()
	if now != nil {
		l.now = now
	}
	return l
}

// Emit records that the event fired now. A repeat firing replaces the
// previous timestamp.
func (l *Log) Emit(key string) {
	l.prune()
	l.fired[key] = l.now()
}

// LastFired returns when the event last fired, or nil when it has not fired
// within the retention window.
func (l *Log) LastFired(key string) *time.Time {
	l.prune()
	t, ok := l.fired[key]
	if !ok {
		return nil
	}
	return &t
}

// HasFiredToday reports whether the event fired on the current calendar day.
func (l *Log) HasFiredToday(key string) bool {
	l.prune()
	t, ok := l.fired[key]
	if !ok {
		return false
	}
	return sameDay(t, l.now())
}

// prune drops entries older than yesterday. Events expire naturally with
// time; there is no explicit cancellation.
func (l *Log) prune() {
	cutoffDay := l.now().AddDate(0, 0, -1)
	cutoff := time.Date(cutoffDay.Year(), cutoffDay.Month(), cutoffDay.Day(), 0, 0, 0, 0, cutoffDay.Location())
	for key, t := range l.fired {
		if t.Before(cutoff) {
			delete(l.fired, key)
		}
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
