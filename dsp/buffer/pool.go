package buffer

import (
	"sync"

	"github.com/cscb603/Background-Music-Processor/dsp/core"
)

// Pool provides sync.Pool-based scratch slice reuse for per-run
// intermediate blocks (band splitting, weighted recombination).
type Pool struct {
	pool sync.Pool
}

// NewPool returns a Pool ready for use.
func NewPool() *Pool {
	return &Pool{
		pool: sync.Pool{
			New: func() any {
				return &[]float64{}
			},
		},
	}
}

// Get returns a zeroed scratch slice with the requested length.
// Callers must return it via Put when done.
func (p *Pool) Get(length int) []float64 {
	s := p.pool.Get().(*[]float64)
	*s = core.EnsureLen(*s, length)
	core.Zero(*s)

	return *s
}

// Put returns a scratch slice to the pool for reuse.
// The caller must not use the slice after calling Put.
func (p *Pool) Put(s []float64) {
	if s == nil {
		return
	}

	p.pool.Put(&s)
}
