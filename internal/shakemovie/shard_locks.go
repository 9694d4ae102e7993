package shakemovie

import "sync"

// shardLocks guards neighbor pixel writes; the index is masked so any pixel
// offset maps to a shard.
type shardLocks struct{ mu []sync.Mutex }

func newShardLocks(n int) *shardLocks {
	if n < 1 || n&(n-1) != 0 {
		n = 64
	}
	return &shardLocks{mu: make([]sync.Mutex, n)}
}

func (sl *shardLocks) lock(idx int)   { sl.mu[idx&(len(sl.mu)-1)].Lock() }
func (sl *shardLocks) unlock(idx int) { sl.mu[idx&(len(sl.mu)-1)].Unlock() }
