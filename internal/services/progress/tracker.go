package progress

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/podkeep/podkeep/internal/models"
)

// Tracker records playback position for one episode on a fixed interval so a
// crash loses at most one interval of progress. Callers push position updates
// through Update; the tracker persists the latest snapshot on each tick.
type Tracker struct {
	store    *Store
	interval time.Duration

	mu      sync.Mutex
	latest  models.PlayProgress
	haveOne bool
	ticker  *time.Ticker
	done    chan struct{}
	stopped bool
}

// NewTracker starts a tracker that saves at the given interval
func NewTracker(store *Store, interval time.Duration) *Tracker {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	t := &Tracker{
		store:    store,
		interval: interval,
		ticker:   time.NewTicker(interval),
		done:     make(chan struct{}),
	}
	go t.run()
	return t
}

func (t *Tracker) run() {
	for {
		select {
		case <-t.ticker.C:
			t.saveLatest()
		case <-t.done:
			return
		}
	}
}

// Update records the most recent playback position. The write happens on the
// next tick, not immediately.
func (t *Tracker) Update(p models.PlayProgress) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.latest = p
	t.haveOne = true
}

func (t *Tracker) saveLatest() {
	t.mu.Lock()
	p, ok := t.latest, t.haveOne
	t.haveOne = false
	t.mu.Unlock()

	if !ok {
		return
	}
	if err := t.store.UpdateProgress(context.Background(), p); err != nil {
		log.Printf("[WARN] Periodic progress save failed for episode %s: %v", p.EpisodeID, err)
	}
}

// Stop halts the tracker. With finalSave true any unsaved snapshot is
// persisted synchronously before Stop returns.
func (t *Tracker) Stop(finalSave bool) {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	t.stopped = true
	t.mu.Unlock()

	t.ticker.Stop()
	close(t.done)

	if finalSave {
		t.saveLatest()
	}
}
