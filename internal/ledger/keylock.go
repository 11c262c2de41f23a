package ledger

import "sync"

// keyLock serializes mutations per asset ID with a fixed set of striped
// mutexes. Two operations on the same ID always contend for the same stripe;
// operations on different IDs almost always proceed independently.
type keyLock struct {
	stripes [64]sync.Mutex
}

func (k *keyLock) lock(id uint64) *sync.Mutex {
	m := &k.stripes[id%uint64(len(k.stripes))]
	m.Lock()
	return m
}
