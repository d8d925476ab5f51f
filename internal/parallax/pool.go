package parallax

// PoolStats counts handle construction and reuse.
type PoolStats struct {
	Created int
	Reused  int
	Idle    int
}

// Pool is a LIFO store of idle ordinary handles.
type Pool struct {
	idle    []*Handle
	nextID  int
	created int
	reused  int
}

// NewPool returns an empty pool.
func NewPool() *Pool {
	return &Pool{}
}

// Acquire pops the most recently released handle or constructs a new one.
func (p *Pool) Acquire() *Handle {
	if n := len(p.idle); n > 0 {
		h := p.idle[n-1]
		p.idle[n-1] = nil
		p.idle = p.idle[:n-1]
		p.reused++
		return h
	}
	p.nextID++
	p.created++
	return &Handle{id: p.nextID, kind: KindOrdinary}
}

// Release returns h to the pool. Sentinel handles are ignored.
func (p *Pool) Release(h *Handle) {
	if h == nil || h.kind == KindSentinel {
		return
	}
	p.idle = append(p.idle, h)
}

// Len returns the number of idle handles.
func (p *Pool) Len() int {
	return len(p.idle)
}

// Stats returns construction and reuse counters.
func (p *Pool) Stats() PoolStats {
	return PoolStats{Created: p.created, Reused: p.reused, Idle: len(p.idle)}
}
