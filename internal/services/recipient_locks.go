package services

import "sync"

// recipientLocks hands out one mutex per recipient. Entries are dropped once
// nobody holds or waits for them.
type recipientLocks struct {
	mu    sync.Mutex
	locks map[uint]*recipientLock
}

type recipientLock struct {
	sync.Mutex
	refs int
}

func newRecipientLocks() *recipientLocks {
	return &recipientLocks{locks: make(map[uint]*recipientLock)}
}

// lock blocks until recipientID's mutex is held and returns its release func.
func (l *recipientLocks) lock(recipientID uint) (unlock func()) {
	l.mu.Lock()
	rl, ok := l.locks[recipientID]
	if !ok {
		rl = &recipientLock{}
		l.locks[recipientID] = rl
	}
	rl.refs++
	l.mu.Unlock()

	rl.Lock()
	return func() {
		rl.Unlock()

		l.mu.Lock()
		rl.refs--
		if rl.refs == 0 {
			delete(l.locks, recipientID)
		}
		l.mu.Unlock()
	}
}

func (l *recipientLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
