// Package memory provides process-local implementations of the store
// interfaces. They back the "memory" storage driver and the service and
// handler tests. Every value crossing the package boundary is a copy.
package memory

import (
	"sync"
)

// DB groups the three in-memory stores so they can be wired together.
type DB struct {
	Users      *UserStore
	Categories *CategoryStore
	Posts      *PostStore
}

// New returns an empty in-memory database.
func New() *DB {
	return &DB{
		Users:      NewUserStore(),
		Categories: NewCategoryStore(),
		Posts:      NewPostStore(),
	}
}

// sequence hands out monotonically increasing insertion numbers used to
// break created_at ties deterministically.
type sequence struct {
	mu sync.Mutex
	n  uint64
}

func (s *sequence) next() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return s.n
}
