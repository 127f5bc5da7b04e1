// internal/lobby/lobby_store.go
package lobby

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jason-s-yu/squadup/internal/cache"
	"github.com/sirupsen/logrus"
)

// Registry keeps one Holder per session in memory and restores holders from the snapshot store on first use.
type Registry struct {
	mu      sync.Mutex
	holders map[string]*Holder

	store  cache.SnapshotStore
	logger *logrus.Logger
	period time.Duration
	now    func() time.Time
}

func NewRegistry(store cache.SnapshotStore, logger *logrus.Logger, countdown time.Duration) *Registry {
	return &Registry{
		holders: make(map[string]*Holder),
		store:   store,
		logger:  logger,
		period:  countdown,
		now:     time.Now,
	}
}

// Get returns the session's holder, restoring it from the snapshot store if it is not loaded.
func (r *Registry) Get(ctx context.Context, sessionID string) (*Holder, error) {
	r.mu.Lock()
	h, ok := r.holders[sessionID]
	r.mu.Unlock()
	if ok {
		return h, nil
	}

	snap, err := r.store.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("restore lobby for %s: %w", sessionID, err)
	}
	restored := NewHolder(sessionID, RestoreState(snap), r.period, r.store, r.logger, r.now)

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.holders[sessionID]; ok {
		return existing, nil
	}
	r.holders[sessionID] = restored
	if r.logger != nil {
		r.logger.WithFields(logrus.Fields{
			"session": sessionID,
			"status":  restored.state.Status,
		}).Debug("lobby restored")
	}
	return restored, nil
}

// Delete drops a session's holder from memory. Its persisted snapshot is untouched.
func (r *Registry) Delete(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.holders, sessionID)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.holders)
}

// Evict unloads holders without subscribers that were not accessed for idle.
// They are restored from the snapshot store on next use.
func (r *Registry) Evict(idle time.Duration) int {
	cutoff := r.now().Add(-idle)
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, h := range r.holders {
		if h.idleSince(cutoff) {
			delete(r.holders, id)
			n++
		}
	}
	return n
}

// RunEvictor calls Evict every interval until ctx is done.
func (r *Registry) RunEvictor(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Evict(idle); n > 0 && r.logger != nil {
				r.logger.Debugf("evicted %d idle lobbies", n)
			}
		}
	}
}
