package bridge

import "sync"

// keyedMutex serializes event processing per conversation: the event source
// may deliver several events for the same user concurrently, and without a
// serialization point two first-contact events could both try to provision a
// thread, or two forwards could race on the correlation uniqueness
// invariant. Locks are created on demand and dropped when the last holder
// releases, so the map does not grow with the user population.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*kmEntry
}

type kmEntry struct {
	sync.Mutex
	refs int
}

// lock acquires the mutex for key and returns its release function.
func (k *keyedMutex) lock(key string) (unlock func()) {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = map[string]*kmEntry{}
	}
	e := k.locks[key]
	if e == nil {
		e = &kmEntry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.Lock()
	return func() {
		e.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
