package memory

import (
	"hash/fnv"
	"sync"
)

// keyLockShards is the number of mutex stripes for per-key write
// serialization. Collisions only cost an occasional extra wait.
const keyLockShards = 64

// keyLocks serializes writers per memory key without blocking readers.
type keyLocks struct {
	shards [keyLockShards]sync.Mutex
}

func (k *keyLocks) lock(key string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(key))
	m := &k.shards[h.Sum32()%keyLockShards]
	m.Lock()
	return m
}
