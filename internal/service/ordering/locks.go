package ordering

import "sync"

// GroupLocks serializes reorders on the same group while letting
// reorders on different groups proceed independently. Keys are the
// group identity: a parent folder id, a folder id, "projects" or
// "easy-access".
type GroupLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewGroupLocks creates an empty lock table.
func NewGroupLocks() *GroupLocks {
	return &GroupLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the lock for a group key and returns the unlock func.
//
//	defer locks.Lock(key)()
func (g *GroupLocks) Lock(key string) func() {
	g.mu.Lock()
	lock, ok := g.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		g.locks[key] = lock
	}
	g.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
