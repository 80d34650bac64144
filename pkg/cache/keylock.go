package cache

import "sync"

// keyLocks hands out one mutex per encoding key so materialization is
// at-most-once per key while unrelated keys proceed in parallel. Mutexes are
// retained for the process lifetime; the key space is bounded by
// files x codecs x modes.
type keyLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyLocks() *keyLocks {
	return &keyLocks{locks: make(map[string]*sync.Mutex)}
}

func (k *keyLocks) get(key string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()

	lock, ok := k.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		k.locks[key] = lock
	}
	return lock
}
