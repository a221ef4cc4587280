package app

import "sync"

// roomLocks hands out one mutex per room id so counter mutation is
// serialized within a room while unrelated rooms never contend. Rooms
// are never deleted, so entries live for the process lifetime.
type roomLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newRoomLocks() *roomLocks {
	return &roomLocks{locks: make(map[string]*sync.Mutex)}
}

// lock acquire the room's mutex and return its unlock func
func (l *roomLocks) lock(roomID string) func() {
	l.mu.Lock()
	m, ok := l.locks[roomID]
	if !ok {
		m = new(sync.Mutex)
		l.locks[roomID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
