package proposal

//go:generate mockgen -source=autosave.go -destination=mocks/mock_saver.go -package=mocks

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultAutosaveDelay is how long a proposal must stay idle before it is written.
const DefaultAutosaveDelay = 3 * time.Second

const saveTimeout = 10 * time.Second

// ErrAutoSaverClosed is returned by Schedule after Close.
var ErrAutoSaverClosed = errors.New("proposal: autosaver closed")

// Saver writes a proposal. *Store implements it.
type Saver interface {
	Save(ctx context.Context, p Proposal) error
}

type pendingSave struct {
	proposal Proposal
	seq      uint64
	timer    *time.Timer
}

// AutoSaver debounces proposal writes. Each Schedule call restarts the proposal's idle timer; when
// it fires only the latest version is saved. Failures are logged and kept for LastError but never
// retried.
type AutoSaver struct {
	saver Saver
	delay time.Duration
	log   *zap.Logger

	mu      sync.Mutex
	seq     uint64
	closed  bool
	pending map[string]*pendingSave
	lastErr map[string]error
	wg      sync.WaitGroup

	// saveMu orders writes so an older version never lands after a newer one.
	saveMu sync.Mutex
	saved  map[string]uint64
}

// NewAutoSaver returns an AutoSaver that writes through saver after delay of inactivity.
func NewAutoSaver(saver Saver, delay time.Duration, log *zap.Logger) *AutoSaver {
	if delay <= 0 {
		delay = DefaultAutosaveDelay
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AutoSaver{
		saver:   saver,
		delay:   delay,
		log:     log,
		pending: make(map[string]*pendingSave),
		lastErr: make(map[string]error),
		saved:   make(map[string]uint64),
	}
}

// Schedule queues p for saving, replacing any version of the same proposal still waiting.
func (a *AutoSaver) Schedule(p Proposal) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return ErrAutoSaverClosed
	}
	if prev, ok := a.pending[p.ID]; ok && prev.timer.Stop() {
		a.wg.Done()
	}

	a.seq++
	seq := a.seq
	a.wg.Add(1)
	a.pending[p.ID] = &pendingSave{
		proposal: p,
		seq:      seq,
		timer:    time.AfterFunc(a.delay, func() { a.fire(p.ID, seq) }),
	}
	return nil
}

// Cancel drops the save waiting for id and waits out one already writing, so a direct save made
// afterwards is not overwritten by an older draft.
func (a *AutoSaver) Cancel(id string) {
	a.mu.Lock()
	if entry, ok := a.pending[id]; ok {
		if entry.timer.Stop() {
			a.wg.Done()
		}
		delete(a.pending, id)
	}
	a.seq++
	seq := a.seq
	a.mu.Unlock()

	a.saveMu.Lock()
	a.saved[id] = seq
	a.saveMu.Unlock()
}

// Pending reports whether a save for id is waiting on its timer.
func (a *AutoSaver) Pending(id string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.pending[id]
	return ok
}

// LastError returns the error of the most recent save attempt for id, or nil if it succeeded.
func (a *AutoSaver) LastError(id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastErr[id]
}

func (a *AutoSaver) fire(id string, seq uint64) {
	defer a.wg.Done()

	a.mu.Lock()
	entry, ok := a.pending[id]
	if !ok || entry.seq != seq {
		a.mu.Unlock()
		return
	}
	delete(a.pending, id)
	a.mu.Unlock()

	a.save(entry)
}

func (a *AutoSaver) save(entry *pendingSave) {
	a.saveMu.Lock()
	defer a.saveMu.Unlock()

	id := entry.proposal.ID
	if entry.seq < a.saved[id] {
		return
	}
	a.saved[id] = entry.seq

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	err := a.saver.Save(ctx, entry.proposal)
	if err != nil {
		a.log.Error("autosave failed", zap.String("proposal_id", id), zap.Error(err))
	} else {
		a.log.Debug("autosaved proposal", zap.String("proposal_id", id))
	}

	a.mu.Lock()
	if err != nil {
		a.lastErr[id] = err
	} else {
		delete(a.lastErr, id)
	}
	a.mu.Unlock()
}

// Flush saves every waiting proposal now and waits for in-flight saves to finish.
func (a *AutoSaver) Flush(ctx context.Context) error {
	a.mu.Lock()
	due := make([]*pendingSave, 0, len(a.pending))
	for id, entry := range a.pending {
		if entry.timer.Stop() {
			delete(a.pending, id)
			due = append(due, entry)
		}
	}
	a.mu.Unlock()

	for _, entry := range due {
		a.save(entry)
		a.wg.Done()
	}

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting new saves and flushes the ones waiting.
func (a *AutoSaver) Close(ctx context.Context) error {
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()
	return a.Flush(ctx)
}
