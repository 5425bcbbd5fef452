// Package memory holds in-process aggregate stores. They honour the same
// stage/commit/revert contract as the Postgres stores and are used by tests
// and by local runs without a database.
package memory

import (
	"errors"
	"sync"
)

var (
	ErrDuplicateKey  = errors.New("memory: duplicate key")
	ErrMissingParent = errors.New("memory: referenced row does not exist")
	ErrReferenced    = errors.New("memory: row is still referenced")
)

// faults queues errors returned by the next Commit calls.
type faults struct {
	mu      sync.Mutex
	pending []error
}

// FailNextCommit makes the next Commit return err without writing anything.
func (f *faults) FailNextCommit(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = append(f.pending, err)
}

func (f *faults) next() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.pending) == 0 {
		return nil
	}
	err := f.pending[0]
	f.pending = f.pending[1:]
	return err
}
