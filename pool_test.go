package poolecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolNewAndRecycle(t *testing.T) {
	w := NewWorldWithConfig(Config{WorldComponentPoolsCache: 4})
	p := GetPool[position](w)

	a := p.New()
	b := p.New()
	assert.NotEqual(t, a, b)

	p.Get(a).X = 1
	p.Recycle(a)
	c := p.New()
	assert.Equal(t, a, c, "free list reuses the recycled slot")
	assert.Equal(t, float32(0), p.Get(c).X, "recycled slot was zeroed")
}

func TestPoolFreeListDisjointFromUsed(t *testing.T) {
	w := NewWorldWithConfig(Config{WorldComponentPoolsCache: 2})
	p := GetPool[position](w)

	used := map[int32]bool{}
	for i := 0; i < 16; i++ {
		idx := p.New()
		require.False(t, used[idx], "New handed out a live index twice")
		require.GreaterOrEqual(t, idx, int32(0))
		require.Less(t, idx, int32(len(p.items)))
		used[idx] = true
		if i%3 == 0 {
			p.Recycle(idx)
			delete(used, idx)
		}
	}
}

func TestPoolDoubling(t *testing.T) {
	w := NewWorldWithConfig(Config{WorldComponentPoolsCache: 2})
	p := GetPool[position](w)
	for i := 0; i < 40; i++ {
		idx := p.New()
		p.Get(idx).X = float32(i)
	}
	assert.GreaterOrEqual(t, len(p.items), 40)
	assert.Equal(t, float32(17), p.Get(17).X, "values survive the reallocation")
}

func TestPoolCopy(t *testing.T) {
	w := NewWorld()
	p := GetPool[position](w)
	src := p.New()
	dst := p.New()
	p.Get(src).X = 9
	p.Copy(src, dst)
	assert.Equal(t, float32(9), p.Get(dst).X)
	p.Get(dst).X = 10
	assert.Equal(t, float32(9), p.Get(src).X)
}

func TestAutoResetOnFreshSlot(t *testing.T) {
	w := NewWorld()
	p := GetPool[pooledBuffer](w)
	idx := p.New()
	assert.Equal(t, 1, p.Get(idx).Resets, "reset runs on fresh allocation")
}

func TestAutoResetOnRecycleNotRerunOnReuse(t *testing.T) {
	w := NewWorld()
	p := GetPool[pooledBuffer](w)
	idx := p.New()
	buf := p.Get(idx)
	buf.Data = append(buf.Data, 1, 2, 3)
	require.Equal(t, 1, buf.Resets)

	p.Recycle(idx)
	assert.Equal(t, 2, p.Get(idx).Resets, "reset runs at recycle time")

	reused := p.New()
	require.Equal(t, idx, reused)
	assert.Equal(t, 2, p.Get(reused).Resets, "reused slots are not reset again")
	assert.Empty(t, p.Get(reused).Data)
}

func TestAutoResetThroughEntityLifecycle(t *testing.T) {
	w := NewWorld()
	e := w.NewEntity()
	buf := Get[pooledBuffer](e)
	assert.Equal(t, 1, buf.Resets)
	Del[pooledBuffer](e)

	e2 := w.NewEntity()
	buf2 := Get[pooledBuffer](e2)
	assert.Equal(t, 2, buf2.Resets, "slot was reset once at recycle, not again on reuse")
}

func TestPoolRef(t *testing.T) {
	w := NewWorld()
	p := GetPool[position](w)
	idx := p.New()
	p.Get(idx).X = 4

	ref := p.Ref(idx)
	assert.Equal(t, float32(4), ref.Unref().X)
	for i := 0; i < 100; i++ {
		p.New()
	}
	assert.Equal(t, float32(4), ref.Unref().X, "ref resolves through the pool, not a raw pointer")
}

func TestPoolResizeListenerManagement(t *testing.T) {
	w := NewWorldWithConfig(Config{WorldComponentPoolsCache: 2})
	p := GetPool[position](w)
	l1 := &countingResizeListener{}
	l2 := &countingResizeListener{}
	p.addResizeListener(l1)
	p.addResizeListener(l2)

	for i := 0; i < 3; i++ {
		p.New()
	}
	require.Equal(t, 1, l1.resizes)
	require.Equal(t, 1, l2.resizes)

	p.removeResizeListener(l1)
	for i := 0; i < 2; i++ {
		p.New()
	}
	assert.Equal(t, 1, l1.resizes)
	assert.Equal(t, 2, l2.resizes)
}

type countingResizeListener struct {
	resizes int
}

func (self *countingResizeListener) onComponentPoolResize() { self.resizes++ }
