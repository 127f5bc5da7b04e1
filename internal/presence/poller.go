// Package presence polls who is available to play a game and expires stale presence rows.
package presence

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/squadup/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	DefaultInterval = 30 * time.Second
	DefaultTimeout  = 5 * time.Second
)

// Fetcher loads the presence rows of one game.
type Fetcher interface {
	ListAvailablePlayers(ctx context.Context, gameID uuid.UUID) ([]models.Player, error)
}

// Update is one poll result for a game. On a failed fetch Players holds the
// previous good list and Stale is set.
type Update struct {
	GameID    uuid.UUID       `json:"game_id"`
	Players   []models.Player `json:"players"`
	FetchedAt time.Time       `json:"fetched_at"`
	Stale     bool            `json:"stale"`
	Err       error           `json:"-"`
}

// Poller runs at most one polling loop per game, shared by every subscriber of that game.
// A loop starts with its first subscriber and stops, cancelling any in-flight fetch, when the last one leaves.
type Poller struct {
	fetcher  Fetcher
	interval time.Duration
	timeout  time.Duration
	logger   *logrus.Logger

	mu     sync.Mutex
	feeds  map[uuid.UUID]*feed
	closed bool
}

type feed struct {
	gameID  uuid.UUID
	cancel  context.CancelFunc
	done    chan struct{}
	subs    map[*Subscription]struct{}
	last    Update
	hasLast bool
}

// Subscription receives updates for one game on C. Only the newest unread update is kept.
type Subscription struct {
	C <-chan Update

	ch     chan Update
	gameID uuid.UUID
	poller *Poller
	once   sync.Once
}

// NewPoller returns a poller. Non-positive interval or timeout fall back to the defaults.
func NewPoller(fetcher Fetcher, interval, timeout time.Duration, logger *logrus.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Poller{
		fetcher:  fetcher,
		interval: interval,
		timeout:  timeout,
		logger:   logger,
		feeds:    make(map[uuid.UUID]*feed),
	}
}

// Subscribe joins the feed of gameID, starting it if needed. If the feed already
// has a result, it is delivered right away.
func (p *Poller) Subscribe(gameID uuid.UUID) *Subscription {
	ch := make(chan Update, 1)
	sub := &Subscription{C: ch, ch: ch, gameID: gameID, poller: p}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		close(ch)
		return sub
	}

	f, ok := p.feeds[gameID]
	if !ok {
		ctx, cancel := context.WithCancel(context.Background())
		f = &feed{
			gameID: gameID,
			cancel: cancel,
			done:   make(chan struct{}),
			subs:   make(map[*Subscription]struct{}),
		}
		p.feeds[gameID] = f
		go p.run(ctx, f)
		p.logger.WithField("game", gameID).Debug("presence feed started")
	}
	f.subs[sub] = struct{}{}
	if f.hasLast {
		deliver(ch, f.last)
	}
	return sub
}

// Close leaves the feed. The last subscriber to leave stops it.
func (s *Subscription) Close() {
	s.once.Do(func() {
		p := s.poller
		p.mu.Lock()
		defer p.mu.Unlock()
		f, ok := p.feeds[s.gameID]
		if !ok {
			return
		}
		if _, member := f.subs[s]; !member {
			return
		}
		delete(f.subs, s)
		if len(f.subs) == 0 {
			f.cancel()
			delete(p.feeds, s.gameID)
			p.logger.WithField("game", s.gameID).Debug("presence feed stopped")
		}
	})
}

// Latest returns the newest result of a running feed.
func (p *Poller) Latest(gameID uuid.UUID) (Update, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	f, ok := p.feeds[gameID]
	if !ok || !f.hasLast {
		return Update{}, false
	}
	return f.last, true
}

// Fetch performs a single bounded fetch outside any feed.
func (p *Poller) Fetch(ctx context.Context, gameID uuid.UUID) ([]models.Player, error) {
	fctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	players, err := p.fetcher.ListAvailablePlayers(fctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("fetch available players for %v: %w", gameID, err)
	}
	return SortAvailable(players), nil
}

// Feeds reports how many games are currently polled.
func (p *Poller) Feeds() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.feeds)
}

// Close stops every feed and waits for their loops to exit.
func (p *Poller) Close() {
	p.mu.Lock()
	p.closed = true
	feeds := make([]*feed, 0, len(p.feeds))
	for id, f := range p.feeds {
		f.cancel()
		feeds = append(feeds, f)
		delete(p.feeds, id)
	}
	p.mu.Unlock()

	for _, f := range feeds {
		<-f.done
	}
}

func (p *Poller) run(ctx context.Context, f *feed) {
	defer close(f.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.poll(ctx, f)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx, f)
		}
	}
}

func (p *Poller) poll(ctx context.Context, f *feed) {
	fctx, cancel := context.WithTimeout(ctx, p.timeout)
	players, err := p.fetcher.ListAvailablePlayers(fctx, f.gameID)
	cancel()

	if ctx.Err() != nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	up := Update{GameID: f.gameID, FetchedAt: time.Now()}
	if err != nil {
		fields := logrus.Fields{"game": f.gameID}
		if errors.Is(err, context.DeadlineExceeded) {
			fields["timeout"] = p.timeout
		}
		p.logger.WithFields(fields).WithError(err).Warn("presence fetch failed, keeping previous list")
		up.Err = err
		up.Stale = true
		up.Players = f.last.Players
		if f.hasLast {
			up.FetchedAt = f.last.FetchedAt
		}
	} else {
		up.Players = SortAvailable(players)
	}
	if up.Players == nil {
		up.Players = []models.Player{}
	}

	f.last = up
	f.hasLast = true
	for sub := range f.subs {
		deliver(sub.ch, up)
	}
}

// deliver replaces any unread update in ch with up.
func deliver(ch chan Update, up Update) {
	select {
	case ch <- up:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- up:
	default:
	}
}

// SortAvailable drops players that are not online or looking and orders the rest
// online first, then by most recent update. The input slice is not modified.
func SortAvailable(players []models.Player) []models.Player {
	out := make([]models.Player, 0, len(players))
	for _, pl := range players {
		if pl.Status.Available() {
			out = append(out, pl)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		oi, oj := out[i].Status == models.PresenceOnline, out[j].Status == models.PresenceOnline
		if oi != oj {
			return oi
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}
