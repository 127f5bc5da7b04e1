// internal/lobby/lobby.go
package lobby

import (
	"context"
	"sync"
	"time"

	"github.com/jason-s-yu/squadup/internal/cache"
	"github.com/sirupsen/logrus"
)

// Holder owns the lobby state of a single session. Every mutation goes through Dispatch,
// is persisted to the snapshot store and fanned out to subscribers.
type Holder struct {
	SessionID string

	mu         sync.Mutex
	state      State
	countdown  Countdown
	lastAccess time.Time
	subs       map[chan State]struct{}

	store  cache.SnapshotStore
	logger *logrus.Logger
	now    func() time.Time
}

// View is what clients render: the state plus the countdown clock.
type View struct {
	State
	Countdown *CountdownView `json:"countdown,omitempty"`
}

type CountdownView struct {
	RemainingSeconds int    `json:"remaining_seconds"`
	Display          string `json:"display"`
}

// NewHolder creates a holder seeded with st. The countdown starts immediately if st is searching.
func NewHolder(sessionID string, st State, period time.Duration, store cache.SnapshotStore, logger *logrus.Logger, now func() time.Time) *Holder {
	if now == nil {
		now = time.Now
	}
	if period <= 0 {
		period = DefaultCountdown
	}
	h := &Holder{
		SessionID:  sessionID,
		state:      st,
		countdown:  Countdown{Period: period},
		lastAccess: now(),
		subs:       make(map[chan State]struct{}),
		store:      store,
		logger:     logger,
		now:        now,
	}
	if st.Status == StatusSearching {
		h.countdown.Start = h.lastAccess
	}
	return h
}

// State returns a copy of the current state.
func (h *Holder) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastAccess = h.now()
	st := h.state
	st.Game = cloneRef(st.Game)
	return st
}

// View returns the current state with the countdown evaluated at the holder's clock.
func (h *Holder) View() View {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.viewUnsafe()
}

func (h *Holder) viewUnsafe() View {
	now := h.now()
	h.lastAccess = now
	st := h.state
	st.Game = cloneRef(st.Game)
	v := View{State: st}
	if h.countdown.Running() {
		secs := h.countdown.RemainingSeconds(now)
		v.Countdown = &CountdownView{RemainingSeconds: secs, Display: FormatClock(secs)}
	}
	return v
}

// Dispatch applies a, persists the snapshot and notifies subscribers.
// Persistence failures are logged; the in-memory state still advances.
func (h *Holder) Dispatch(ctx context.Context, a Action) (State, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	next, err := Reduce(h.state, a)
	if err != nil {
		return h.state, err
	}
	prev := h.state
	h.state = next
	h.lastAccess = h.now()

	switch {
	case next.Status == StatusSearching && (prev.Status != StatusSearching || !h.countdown.Running()):
		h.countdown.Start = h.lastAccess
	case next.Status == StatusIdle:
		h.countdown.Start = time.Time{}
	}

	if h.store != nil {
		if err := h.store.Save(ctx, h.SessionID, next.Snapshot()); err != nil && h.logger != nil {
			h.logger.WithError(err).WithField("session", h.SessionID).Warn("failed to persist lobby snapshot")
		}
	}

	for ch := range h.subs {
		publish(ch, next)
	}

	out := next
	out.Game = cloneRef(out.Game)
	return out, nil
}

// Subscribe returns a channel receiving the latest state after every change.
// Slow readers only ever see the most recent state. Call cancel to stop.
func (h *Holder) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
		})
	}
}

// idleSince reports whether the holder has no subscribers and was untouched since cutoff.
func (h *Holder) idleSince(cutoff time.Time) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs) == 0 && h.lastAccess.Before(cutoff)
}

// publish replaces any unread value in ch with st.
func publish(ch chan State, st State) {
	st.Game = cloneRef(st.Game)
	select {
	case ch <- st:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- st:
	default:
	}
}
