// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package memento

import (
	"sync"

	"github.com/google/uuid"
)

// Observer is called with the snapshot that was just created or adopted.
type Observer[T any] func(snapshot *Snapshot[T])

// subscription pairs an observer with the ID handed back to the subscriber.
type subscription[T any] struct {
	id       string
	observer Observer[T]
}

// observerList keeps observers in registration order.
//
// Thread Safety: Safe for concurrent use.
type observerList[T any] struct {
	mu   sync.RWMutex
	subs []subscription[T]
}

// add registers observer and returns its subscription ID.
func (l *observerList[T]) add(observer Observer[T]) string {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := uuid.NewString()
	l.subs = append(l.subs, subscription[T]{id: id, observer: observer})
	return id
}

// remove drops the subscription with the given ID.
// Returns false if no such subscription exists.
func (l *observerList[T]) remove(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, sub := range l.subs {
		if sub.id == id {
			// Copy so that in-flight notify loops keep their own view
			subs := make([]subscription[T], 0, len(l.subs)-1)
			subs = append(subs, l.subs[:i]...)
			subs = append(subs, l.subs[i+1:]...)
			l.subs = subs
			return true
		}
	}
	return false
}

// len returns the number of registered observers.
func (l *observerList[T]) len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.subs)
}

// notify calls every observer in registration order.
//
// The observer list is captured before the first call and the lock is not
// held while observers run, so observers may subscribe or unsubscribe.
// Panics are not recovered.
func (l *observerList[T]) notify(snapshot *Snapshot[T]) {
	l.mu.RLock()
	subs := l.subs
	l.mu.RUnlock()

	for _, sub := range subs {
		sub.observer(snapshot)
	}
}
