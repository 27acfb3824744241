// Package typedpool wraps sync.Pool with a typed interface, used for the
// scratch buffers feature builds allocate over and over.
package typedpool

import "sync"

type Pool[T any] struct {
	pool  sync.Pool
	reset func(*T)
}

func New[T any]() *Pool[T] {
	return NewWithReset[T](nil)
}

// NewWithReset creates a pool that applies reset to every value returned to
// the pool, e.g. to truncate slices while keeping their capacity.
func NewWithReset[T any](reset func(*T)) *Pool[T] {
	return &Pool[T]{
		pool: sync.Pool{
			New: func() any { return new(T) },
		},
		reset: reset,
	}
}

func (p *Pool[T]) Get() *T {
	return p.pool.Get().(*T)
}

func (p *Pool[T]) Put(value *T) {
	if p.reset != nil {
		p.reset(value)
	}

	p.pool.Put(value)
}
