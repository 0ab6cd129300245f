// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package indy

import "sync"

// handleTable issues positive integer handles for open resources.
// The REPL completer reads from readline's goroutine, hence the lock.
type handleTable[T any] struct {
	mu    sync.Mutex
	next  int32
	items map[int32]T
}

func newHandleTable[T any]() *handleTable[T] {
	return &handleTable[T]{items: make(map[int32]T)}
}

func (t *handleTable[T]) add(item T) int32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.next++
	t.items[t.next] = item
	return t.next
}

func (t *handleTable[T]) get(h int32) (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	item, ok := t.items[h]
	return item, ok
}

func (t *handleTable[T]) remove(h int32) (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	item, ok := t.items[h]
	if ok {
		delete(t.items, h)
	}
	return item, ok
}

// find returns the first handle whose item satisfies match.
func (t *handleTable[T]) find(match func(T) bool) (int32, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for h, item := range t.items {
		if match(item) {
			return h, true
		}
	}
	return 0, false
}

func (t *handleTable[T]) all() []T {
	t.mu.Lock()
	defer t.mu.Unlock()
	result := make([]T, 0, len(t.items))
	for _, item := range t.items {
		result = append(result, item)
	}
	return result
}
