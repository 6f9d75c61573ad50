// Package lockmap provides mutexes addressed by a key, which exist only
// while somebody holds or waits for them.
package lockmap

import (
	"sync"
)

// LockMap is a set of mutexes addressed by a key.
type LockMap[K comparable] struct {
	globalLock sync.Mutex
	lockMap    map[K]*Unlocker[K]
}

// New returns an empty LockMap.
func New[K comparable]() *LockMap[K] {
	return &LockMap[K]{
		lockMap: map[K]*Unlocker[K]{},
	}
}

// Lock locks the mutex of the key, it should be released with
// Unlocker.Unlock.
func (m *LockMap[K]) Lock(key K) *Unlocker[K] {
	m.globalLock.Lock()
	l := m.lockMap[key]
	if l == nil {
		l = &Unlocker[K]{m: m, key: key}
		m.lockMap[key] = l
	}
	// the entry is removed from the map when the last holder/waiter leaves
	l.refCount++
	m.globalLock.Unlock()

	l.locker.Lock()
	return l
}

// Unlocker releases a mutex of a LockMap.
type Unlocker[K comparable] struct {
	locker   sync.Mutex
	key      K
	m        *LockMap[K]
	refCount int64
}

// Unlock releases the mutex.
func (l *Unlocker[K]) Unlock() {
	l.locker.Unlock()

	l.m.globalLock.Lock()
	defer l.m.globalLock.Unlock()
	l.refCount--
	if l.refCount == 0 {
		delete(l.m.lockMap, l.key)
	}
}
