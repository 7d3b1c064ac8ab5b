package services

import (
	"fmt"
	"sort"
	"sync"
)

// Locker hands out one mutex per key. Keys passed to a single Acquire
// call are taken in sorted order so two callers can never deadlock on the
// same pair of rooms or customers.
type Locker struct {
	mu    sync.Mutex
	locks map[string]*keyedEntry
}

type keyedEntry struct {
	mu   sync.Mutex
	refs int
}

func NewLocker() *Locker {
	return &Locker{locks: make(map[string]*keyedEntry)}
}

// Acquire locks every key and returns the function that releases them.
func (l *Locker) Acquire(keys ...string) func() {
	uniq := make(map[string]struct{}, len(keys))
	ordered := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := uniq[k]; ok {
			continue
		}
		uniq[k] = struct{}{}
		ordered = append(ordered, k)
	}
	sort.Strings(ordered)

	entries := make([]*keyedEntry, 0, len(ordered))
	for _, k := range ordered {
		l.mu.Lock()
		e, ok := l.locks[k]
		if !ok {
			e = &keyedEntry{}
			l.locks[k] = e
		}
		e.refs++
		l.mu.Unlock()

		e.mu.Lock()
		entries = append(entries, e)
	}

	return func() {
		for i := len(entries) - 1; i >= 0; i-- {
			entries[i].mu.Unlock()
			l.mu.Lock()
			entries[i].refs--
			if entries[i].refs == 0 {
				delete(l.locks, ordered[i])
			}
			l.mu.Unlock()
		}
	}
}

func reservationKey(id uint) string { return fmt.Sprintf("reservation:%d", id) }
func roomKey(id uint) string        { return fmt.Sprintf("room:%d", id) }
func customerKey(id uint) string    { return fmt.Sprintf("customer:%d", id) }
