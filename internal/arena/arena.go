// Package arena provides scoped allocation accounting for the notation
// pipeline. Go's garbage collector owns the memory itself; an Arena owns
// the budget and the lifetime discipline: allocations made in a phase
// scope are counted against that scope, and releasing the scope drops the
// count back so peak usage per phase stays observable.
package arena

import (
	"errors"
	"fmt"
	"unsafe"
)

var (
	// ErrAllocationFailure is returned when an allocation would exceed the
	// arena's byte budget.
	ErrAllocationFailure = errors.New("arena: allocation failure")
	// ErrArenaNotInitialized is returned when allocating from a nil or
	// already released arena.
	ErrArenaNotInitialized = errors.New("arena: not initialized")
)

// Arena tracks allocations for one scope (a measure, or a single phase as
// a child scope). Not safe for concurrent use; the pipeline is
// single-threaded by design.
type Arena struct {
	name     string
	parent   *Arena
	limit    int64 // bytes; 0 means unlimited
	used     int64
	peak     int64
	released bool
}

// New creates a root arena with the given byte budget (0 = unlimited).
func New(name string, limit int64) *Arena {
	return &Arena{name: name, limit: limit}
}

// Child opens a sub-scope sharing the parent's budget. Allocations in the
// child count against both; releasing the child returns its bytes to the
// parent.
func (a *Arena) Child(name string) (*Arena, error) {
	if a == nil || a.released {
		return nil, fmt.Errorf("child %q: %w", name, ErrArenaNotInitialized)
	}
	limit := a.limit
	if limit > 0 {
		limit -= a.used
	}
	return &Arena{name: name, parent: a, limit: limit}, nil
}

func (a *Arena) grow(n int64) error {
	if a == nil || a.released {
		return ErrArenaNotInitialized
	}
	if a.limit > 0 && a.used+n > a.limit {
		return fmt.Errorf("%s: %d+%d bytes over limit %d: %w", a.name, a.used, n, a.limit, ErrAllocationFailure)
	}
	// Commit locally only once the whole parent chain has accepted, so a
	// rejection higher up leaves this scope's accounting untouched.
	if a.parent != nil {
		if err := a.parent.grow(n); err != nil {
			return err
		}
	}
	a.used += n
	if a.used > a.peak {
		a.peak = a.used
	}
	return nil
}

// Release closes the scope. Further allocations fail with
// ErrArenaNotInitialized; the bytes are returned to the parent scope.
func (a *Arena) Release() {
	if a == nil || a.released {
		return
	}
	if a.parent != nil {
		a.parent.used -= a.used
	}
	a.used = 0
	a.released = true
}

// Used returns the live byte count of this scope.
func (a *Arena) Used() int64 {
	if a == nil {
		return 0
	}
	return a.used
}

// Peak returns the high-water byte count of this scope.
func (a *Arena) Peak() int64 {
	if a == nil {
		return 0
	}
	return a.peak
}

// Name returns the scope name.
func (a *Arena) Name() string {
	if a == nil {
		return ""
	}
	return a.name
}

// Alloc allocates a zeroed T accounted to the arena.
func Alloc[T any](a *Arena) (*T, error) {
	var zero T
	if err := a.grow(int64(unsafe.Sizeof(zero))); err != nil {
		return nil, err
	}
	return new(T), nil
}

// Slice allocates a zeroed slice of n Ts accounted to the arena.
func Slice[T any](a *Arena, n int) ([]T, error) {
	var zero T
	if err := a.grow(int64(unsafe.Sizeof(zero)) * int64(n)); err != nil {
		return nil, err
	}
	return make([]T, n), nil
}
