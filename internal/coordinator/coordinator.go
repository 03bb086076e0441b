package coordinator

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/nerrad567/gray-logic-cozytouch/internal/cozytouch"
)

// Coordinator publishes the most recent snapshot to every entity.
//
// Thread Safety: All methods are safe for concurrent use.
type Coordinator struct {
	data atomic.Pointer[cozytouch.Snapshot]

	statusMu    sync.RWMutex
	lastUpdated time.Time
	lastErr     error

	listenerMu sync.Mutex
	listeners  map[uint64]func()
	nextID     uint64

	now func() time.Time
}

// New creates an empty Coordinator. Data() returns nil until the first Update.
func New() *Coordinator {
	return &Coordinator{
		listeners: make(map[uint64]func()),
		now:       time.Now,
	}
}

// Data returns the current snapshot, or nil before the first update.
// The returned value must be treated as read-only.
func (c *Coordinator) Data() *cozytouch.Snapshot {
	return c.data.Load()
}

// Update publishes a new snapshot and notifies listeners.
// A nil snapshot is recorded as a failed update and the previous data is kept.
func (c *Coordinator) Update(snap *cozytouch.Snapshot) {
	if snap == nil {
		c.SetUpdateError(ErrNoData)
		return
	}

	c.data.Store(snap)

	c.statusMu.Lock()
	c.lastUpdated = c.now()
	c.lastErr = nil
	c.statusMu.Unlock()

	c.notify()
}

// SetUpdateError records a failed refresh. The previous snapshot stays
// readable; listeners are notified so entities can report unavailable.
func (c *Coordinator) SetUpdateError(err error) {
	c.statusMu.Lock()
	c.lastErr = err
	c.statusMu.Unlock()

	c.notify()
}

// LastUpdateSuccess reports whether the most recent refresh succeeded.
// False before the first update.
func (c *Coordinator) LastUpdateSuccess() bool {
	c.statusMu.RLock()
	defer c.statusMu.RUnlock()
	return c.lastErr == nil && !c.lastUpdated.IsZero()
}

// LastUpdated returns when the current snapshot was published.
func (c *Coordinator) LastUpdated() time.Time {
	c.statusMu.RLock()
	defer c.statusMu.RUnlock()
	return c.lastUpdated
}

// LastError returns the error from the most recent failed refresh, if any.
func (c *Coordinator) LastError() error {
	c.statusMu.RLock()
	defer c.statusMu.RUnlock()
	return c.lastErr
}

// AddListener registers fn to run after every update attempt and returns
// a function that removes it.
func (c *Coordinator) AddListener(fn func()) (remove func()) {
	c.listenerMu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.listenerMu.Unlock()

	return func() {
		c.listenerMu.Lock()
		delete(c.listeners, id)
		c.listenerMu.Unlock()
	}
}

// notify runs listeners outside the lock so they may add or remove listeners.
func (c *Coordinator) notify() {
	c.listenerMu.Lock()
	fns := make([]func(), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.listenerMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
