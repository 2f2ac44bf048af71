package poolecs

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAttachesOnce(t *testing.T) {
	w := NewWorld()
	e := w.NewEntity()

	p1 := Get[position](e)
	p1.X = 3
	p2 := Get[position](e)
	assert.Same(t, p1, p2)
	assert.Equal(t, float32(3), p2.X)
	assert.True(t, Has[position](e))
	assert.False(t, Has[velocity](e))
}

func TestReplaceRoundTrip(t *testing.T) {
	w := NewWorld()
	e := w.NewEntity()

	Replace(e, position{X: 1, Y: 2})
	assert.Equal(t, position{X: 1, Y: 2}, *Get[position](e))

	Replace(e, position{X: 7, Y: 8})
	assert.Equal(t, position{X: 7, Y: 8}, *Get[position](e))
}

func TestReplaceOnAutoResetPanics(t *testing.T) {
	if !DEBUG {
		t.Skip("contract checks are compiled out")
	}
	w := NewWorld()
	e := w.NewEntity()
	Get[position](e)
	assert.Panics(t, func() { Replace(e, pooledBuffer{}) })
}

func TestDelNotAttachedIsNoOp(t *testing.T) {
	w := NewWorld()
	e := w.NewEntity()
	Get[position](e)
	f := GetFilter1[position](w)
	rec := &recordingFilterListener{}
	f.AddEventListener(rec)

	Del[velocity](e)
	assert.True(t, e.IsAlive())
	assert.Equal(t, 0, rec.added+rec.removed, "no filter updates must fire")
}

func TestDelLastComponentRecyclesEntity(t *testing.T) {
	w := NewWorld()
	e := w.NewEntity()
	Get[position](e)
	Get[velocity](e)

	Del[position](e)
	assert.True(t, e.IsAlive())
	Del[velocity](e)
	assert.False(t, e.IsAlive())
}

func TestAttachDetachRestoresMembershipState(t *testing.T) {
	w := NewWorld()
	e := w.NewEntity()
	Get[position](e)
	f := GetFilter1[velocity](w)

	require.Equal(t, 0, f.Count())
	Get[velocity](e)
	require.Equal(t, 1, f.Count())
	Del[velocity](e)
	require.Equal(t, 0, f.Count())
	assert.True(t, e.IsAlive(), "entity keeps its other component")
}

func TestDestroyDetachesAllComponents(t *testing.T) {
	w := NewWorld()
	e := w.NewEntity()
	Get[position](e)
	Get[velocity](e)
	Get[health](e)
	fPos := GetFilter1[position](w)
	fVel := GetFilter1[velocity](w)

	e.Destroy()
	assert.False(t, e.IsAlive())
	assert.Equal(t, 0, fPos.Count())
	assert.Equal(t, 0, fVel.Count())
}

func TestOperationsOnDeadEntityPanic(t *testing.T) {
	if !DEBUG {
		t.Skip("contract checks are compiled out")
	}
	w := NewWorld()
	e := w.NewEntity()
	Get[position](e)
	e.Destroy()

	assert.Panics(t, func() { Get[position](e) })
	assert.Panics(t, func() { Del[position](e) })
	assert.Panics(t, func() { e.Destroy() })
	assert.Panics(t, func() { var null Entity; Get[position](null) })
}

func TestCopyEquivalence(t *testing.T) {
	w := NewWorld()
	e1 := w.NewEntity()
	Replace(e1, position{X: 1, Y: 2})
	Replace(e1, velocity{DX: 3, DY: 4})

	e2 := e1.Copy()
	require.True(t, e2.IsAlive())
	assert.NotEqual(t, e1, e2)
	assert.Equal(t, *Get[position](e1), *Get[position](e2))
	assert.Equal(t, *Get[velocity](e1), *Get[velocity](e2))

	// Copies are independent values.
	Get[position](e2).X = 99
	assert.Equal(t, float32(1), Get[position](e1).X)

	// Type order on the copy matches the source.
	var srcTypes, dstTypes []reflect.Type
	e1.GetComponentTypes(&srcTypes)
	e2.GetComponentTypes(&dstTypes)
	assert.Equal(t, srcTypes, dstTypes)
}

func TestCopyUpdatesFilters(t *testing.T) {
	w := NewWorld()
	f := GetFilter2[position, velocity](w)
	e1 := w.NewEntity()
	Get[position](e1)
	Get[velocity](e1)
	require.Equal(t, 1, f.Count())

	e1.Copy()
	assert.Equal(t, 2, f.Count())
}

func TestMoveTo(t *testing.T) {
	w := NewWorld()
	e1 := w.NewEntity()
	Replace(e1, position{X: 1})
	Replace(e1, velocity{DX: 2})
	e2 := w.NewEntity()
	Replace(e2, velocity{DX: 20})
	Replace(e2, health{HP: 30})

	e1.MoveTo(e2)
	assert.False(t, e1.IsAlive())
	assert.True(t, e2.IsAlive())
	assert.Equal(t, position{X: 1}, *Get[position](e2))
	assert.Equal(t, velocity{DX: 2}, *Get[velocity](e2), "existing component overwritten")
	assert.Equal(t, health{HP: 30}, *Get[health](e2))
}

func TestMoveToContractViolations(t *testing.T) {
	if !DEBUG {
		t.Skip("contract checks are compiled out")
	}
	w1 := NewWorld()
	w2 := NewWorld()
	e1 := w1.NewEntity()
	Get[position](e1)
	e2 := w2.NewEntity()
	Get[position](e2)

	assert.Panics(t, func() { e1.MoveTo(e1) })
	assert.Panics(t, func() { e1.MoveTo(e2) })
}

func TestRef(t *testing.T) {
	w := NewWorld()
	e := w.NewEntity()
	Replace(e, position{X: 5})

	ref := Ref[position](e)
	require.False(t, ref.IsEmpty())
	assert.Equal(t, float32(5), ref.Unref().X)

	ref.Unref().X = 6
	assert.Equal(t, float32(6), Get[position](e).X)

	var empty ComponentRef[position]
	assert.True(t, empty.IsEmpty())
}

func TestGetComponentIndexInPool(t *testing.T) {
	w := NewWorld()
	e := w.NewEntity()
	assert.Equal(t, int32(-1), GetComponentIndexInPool[position](e))
	Get[position](e)
	idx := GetComponentIndexInPool[position](e)
	require.GreaterOrEqual(t, idx, int32(0))
	assert.Same(t, GetPool[position](w).Get(idx), Get[position](e))
}

func TestGetComponentValues(t *testing.T) {
	w := NewWorld()
	e := w.NewEntity()
	Replace(e, position{X: 1})
	Replace(e, health{HP: 2})

	var values []any
	count := e.GetComponentValues(&values)
	require.Equal(t, 2, count)
	assert.ElementsMatch(t, []any{position{X: 1}, health{HP: 2}}, values[:count])
}

func TestNoDuplicateTypeIndices(t *testing.T) {
	w := NewWorld()
	e := w.NewEntity()
	Get[position](e)
	Get[position](e)
	Replace(e, position{X: 2})

	var types []reflect.Type
	count := e.GetComponentTypes(&types)
	assert.Equal(t, 1, count)
}
