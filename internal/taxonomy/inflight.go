// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package taxonomy

import (
	"sync"

	"github.com/google/uuid"
)

// Op names an editor operation for in-flight tracking.
type Op string

const (
	OpCreate Op = "create"
	OpCommit Op = "commit"
	OpActive Op = "active"
	OpParent Op = "parent"
	OpMove   Op = "move"
	OpDelete Op = "delete"
)

type flightKey struct {
	kind Kind
	id   uuid.UUID
	op   Op
}

// Inflight tracks running operations per (kind, term, operation). A second
// identical operation is refused while the first runs; unrelated terms
// stay editable. Creates use uuid.Nil as the term.
type Inflight struct {
	mu     sync.Mutex
	active map[flightKey]struct{}
}

// NewInflight returns an empty tracker.
func NewInflight() *Inflight {
	return &Inflight{active: make(map[flightKey]struct{})}
}

// Acquire marks the operation as running. The returned func clears the
// mark and must be called exactly once.
func (in *Inflight) Acquire(kind Kind, id uuid.UUID, op Op) (func(), error) {
	k := flightKey{kind: kind, id: id, op: op}

	in.mu.Lock()
	defer in.mu.Unlock()
	if _, busy := in.active[k]; busy {
		return nil, ErrBusy
	}
	in.active[k] = struct{}{}

	return func() {
		in.mu.Lock()
		delete(in.active, k)
		in.mu.Unlock()
	}, nil
}

// Busy reports whether the operation is currently running.
func (in *Inflight) Busy(kind Kind, id uuid.UUID, op Op) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	_, busy := in.active[flightKey{kind: kind, id: id, op: op}]
	return busy
}
