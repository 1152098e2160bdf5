package controller

import "sync"

type slotLock struct {
	mu   sync.Mutex
	refs int
}

// slotLocks serializes cart mutations per session and restaurant slot.
// Entries are dropped once no request holds or waits on them.
type slotLocks struct {
	mu    sync.Mutex
	slots map[string]*slotLock
}

func newSlotLocks() *slotLocks {
	return &slotLocks{slots: map[string]*slotLock{}}
}

func slotKey(sessionID string, restaurantID string) string {
	return sessionID + "/" + restaurantID
}

func (l *slotLocks) lock(key string) (unlock func()) {
	l.mu.Lock()
	slot, ok := l.slots[key]
	if !ok {
		slot = &slotLock{}
		l.slots[key] = slot
	}
	slot.refs++
	l.mu.Unlock()

	slot.mu.Lock()
	return func() {
		slot.mu.Unlock()

		l.mu.Lock()
		slot.refs--
		if slot.refs == 0 {
			delete(l.slots, key)
		}
		l.mu.Unlock()
	}
}

func (l *slotLocks) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}
