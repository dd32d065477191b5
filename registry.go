package pod

import (
	"reflect"
	"sync"
)

// containerKey identifies a parametric container by its full parameter
// tuple, so repeated construction with identical parameters yields the
// same registered Type identity.
type containerKey struct {
	kind    string
	elem    Type
	length  int
	lenType Type
	max     int
	exact   bool
}

var (
	containersMu sync.RWMutex
	containers   = make(map[containerKey]Type)

	recordsMu sync.RWMutex
	records   = make(map[reflect.Type]Type)
)

// memoContainer returns the cached container type for key or builds and
// caches a new one.
func memoContainer(key containerKey, build func() Type) Type {
	// Fast path: read-lock cache check
	containersMu.RLock()
	if t, ok := containers[key]; ok {
		containersMu.RUnlock()
		return t
	}
	containersMu.RUnlock()

	// Slow path: build and cache with write-lock
	containersMu.Lock()
	defer containersMu.Unlock()

	// Double-check pattern
	if t, ok := containers[key]; ok {
		return t
	}

	t := build()
	containers[key] = t
	return t
}

// memoRecord returns the cached record type for rt or builds and caches a
// new one. build runs outside the lock: building a record recurses back
// into memoRecord for every nested struct field. Concurrent registrations
// of the same type may both build; the first insert wins.
func memoRecord(rt reflect.Type, build func() (Type, error)) (Type, error) {
	recordsMu.RLock()
	t, ok := records[rt]
	recordsMu.RUnlock()
	if ok {
		return t, nil
	}

	t, err := build()
	if err != nil {
		return nil, err
	}

	recordsMu.Lock()
	defer recordsMu.Unlock()

	if prior, ok := records[rt]; ok {
		return prior, nil
	}
	records[rt] = t
	return t, nil
}

// Reset clears the container and record type caches.
// This is primarily useful for test isolation.
func Reset() {
	containersMu.Lock()
	containers = make(map[containerKey]Type)
	containersMu.Unlock()

	recordsMu.Lock()
	records = make(map[reflect.Type]Type)
	recordsMu.Unlock()
}
