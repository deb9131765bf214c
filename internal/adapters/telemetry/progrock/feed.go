package progrock

import (
	"io"
	"sync"

	"github.com/vito/progrock"
)

var _ progrock.Writer = (*Feed)(nil)

// Feed is a progrock writer that queues status updates for a single reader,
// such as the interactive progress view.
type Feed struct {
	mu      sync.Mutex
	cond    *sync.Cond
	updates []*progrock.StatusUpdate
	closed  bool
}

// NewFeed creates an empty feed.
func NewFeed() *Feed {
	f := &Feed{}
	f.cond = sync.NewCond(&f.mu)
	return f
}

// WriteStatus queues an update.
func (f *Feed) WriteStatus(update *progrock.StatusUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return io.ErrClosedPipe
	}
	f.updates = append(f.updates, update)
	f.cond.Signal()
	return nil
}

// Read blocks until an update is queued and returns it.
// It returns io.EOF once the feed is closed and drained.
func (f *Feed) Read() (*progrock.StatusUpdate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for len(f.updates) == 0 && !f.closed {
		f.cond.Wait()
	}
	if len(f.updates) == 0 {
		return nil, io.EOF
	}
	update := f.updates[0]
	f.updates[0] = nil
	f.updates = f.updates[1:]
	return update, nil
}

// Close ends the feed. Queued updates remain readable.
func (f *Feed) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.cond.Broadcast()
	return nil
}
