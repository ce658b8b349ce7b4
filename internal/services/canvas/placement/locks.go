package placement

import "sync"

// userLocks hands out one mutex per live user id so same-user attempts
// serialize while different users proceed independently. Entries are
// refcounted and dropped once idle, keeping the map bounded by concurrent
// users rather than all users ever seen.
type userLocks struct {
	mu      sync.Mutex
	entries map[string]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

func newUserLocks() *userLocks {
	return &userLocks{entries: make(map[string]*userLock)}
}

// lock acquires the critical section for userID and returns its release
// function.
func (l *userLocks) lock(userID string) func() {
	l.mu.Lock()
	entry, ok := l.entries[userID]
	if !ok {
		entry = &userLock{}
		l.entries[userID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.entries, userID)
		}
		l.mu.Unlock()
	}
}
