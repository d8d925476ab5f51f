package parallax

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoolLIFO(t *testing.T) {
	p := NewPool()

	a := p.Acquire()
	b := p.Acquire()
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, PoolStats{Created: 2}, p.Stats())

	p.Release(a)
	p.Release(b)
	assert.Equal(t, 2, p.Len())

	assert.Same(t, b, p.Acquire())
	assert.Same(t, a, p.Acquire())
	assert.Equal(t, PoolStats{Created: 2, Reused: 2, Idle: 0}, p.Stats())
}

func TestPoolIgnoresSentinel(t *testing.T) {
	p := NewPool()
	p.Release(&Handle{kind: KindSentinel})
	p.Release(nil)
	assert.Equal(t, 0, p.Len())
}
