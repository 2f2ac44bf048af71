package poolecs

import (
	"fmt"
	"reflect"
	"unsafe"
)

// poolResizeListener is notified after a pool's backing array has been
// reallocated, so cached base pointers can be rebound.
type poolResizeListener interface {
	onComponentPoolResize()
}

// rawPool is the untyped view of a Pool[T] the world and filters work
// through.
type rawPool interface {
	typeIndex() TypeIndex
	itemType() reflect.Type
	newRaw() int32
	recycleRaw(idx int32)
	copyData(src, dst int32)
	itemBase() unsafe.Pointer
	itemStride() uintptr
	itemValue(idx int32) any
	addResizeListener(l poolResizeListener)
	removeResizeListener(l poolResizeListener)
}

// Pool is the dense storage for all components of type T inside one world.
// Slots are addressed by the indices handed out by New; an index is valid
// only while the component remains attached to its entity. Indices are not
// stable across recycling.
type Pool[T any] struct {
	world      *World
	info       *componentType
	items      []T
	itemsCount int
	reserved   indexPool
	resetFn    func(c *T)
	listeners  []poolResizeListener
}

func newPool[T any](world *World, info *componentType, capacity int) *Pool[T] {
	p := &Pool[T]{
		world:    world,
		info:     info,
		items:    make([]T, capacity),
		reserved: newIndexPool(capacity / 2),
	}
	if info.hasAutoReset {
		p.resetFn = func(c *T) {
			any(c).(AutoReset[T]).AutoReset(c)
		}
	}
	return p
}

// New allocates a slot and returns its index. A recycled slot is reused if
// one is available; otherwise the used prefix grows, doubling the backing
// array and notifying resize listeners when capacity is exhausted. The
// reset routine runs only on freshly exposed slots; recycled slots were
// reset at recycle time.
func (self *Pool[T]) New() int32 {
	if idx := self.reserved.Pop(); idx >= 0 {
		return idx
	}
	if self.itemsCount == len(self.items) {
		newItems := make([]T, len(self.items)*2)
		copy(newItems, self.items)
		self.items = newItems
		for _, l := range self.listeners {
			l.onComponentPoolResize()
		}
	}
	idx := int32(self.itemsCount)
	self.itemsCount++
	if self.resetFn != nil {
		self.resetFn(&self.items[idx])
	}
	return idx
}

// Get returns the component stored at idx. The index must have come from
// New and must not have been recycled since.
func (self *Pool[T]) Get(idx int32) *T {
	return &self.items[idx]
}

// Recycle releases a slot: the reset routine runs if the type declares one,
// otherwise the slot is zeroed, and the index joins the free list.
func (self *Pool[T]) Recycle(idx int32) {
	if self.resetFn != nil {
		self.resetFn(&self.items[idx])
	} else {
		var zero T
		self.items[idx] = zero
	}
	self.reserved.Push(idx)
}

// Copy value-copies the component at src into dst.
func (self *Pool[T]) Copy(src, dst int32) {
	self.items[dst] = self.items[src]
}

// Ref returns a (pool, index) pair for deferred access to the slot. The
// pair stays valid only while the component remains attached.
func (self *Pool[T]) Ref(idx int32) ComponentRef[T] {
	return ComponentRef[T]{pool: self, idx: idx}
}

// TypeIndex returns the registered type index of T.
func (self *Pool[T]) TypeIndex() TypeIndex {
	return self.info.index
}

func (self *Pool[T]) typeIndex() TypeIndex {
	return self.info.index
}

func (self *Pool[T]) itemType() reflect.Type {
	return self.info.typ
}

func (self *Pool[T]) newRaw() int32 {
	return self.New()
}

func (self *Pool[T]) recycleRaw(idx int32) {
	self.Recycle(idx)
}

func (self *Pool[T]) copyData(src, dst int32) {
	self.Copy(src, dst)
}

func (self *Pool[T]) itemBase() unsafe.Pointer {
	return unsafe.Pointer(unsafe.SliceData(self.items))
}

func (self *Pool[T]) itemStride() uintptr {
	return unsafe.Sizeof(*new(T))
}

func (self *Pool[T]) itemValue(idx int32) any {
	return self.items[idx]
}

func (self *Pool[T]) addResizeListener(l poolResizeListener) {
	if DEBUG && l == nil {
		panic("invalid pool resize listener")
	}
	self.listeners = extendSlice(self.listeners, 1)
	self.listeners[len(self.listeners)-1] = l
}

// removeResizeListener drops a listener, swapping the last one into its
// place. Listener order is not part of the contract.
func (self *Pool[T]) removeResizeListener(l poolResizeListener) {
	for i, registered := range self.listeners {
		if registered == l {
			last := len(self.listeners) - 1
			self.listeners[i] = self.listeners[last]
			self.listeners[last] = nil
			self.listeners = self.listeners[:last]
			return
		}
	}
	if DEBUG {
		panic("pool resize listener not registered")
	}
}

// ComponentRef is a stable-while-attached handle to one component slot,
// obtained through Ref. It must not be retained across detach, recycle or
// world destruction.
type ComponentRef[T any] struct {
	pool *Pool[T]
	idx  int32
}

// Unref resolves the reference to the component it points at.
func (self ComponentRef[T]) Unref() *T {
	if DEBUG && self.pool == nil {
		panic(fmt.Sprintf("deref of empty ComponentRef[%s]", reflect.TypeFor[T]()))
	}
	return self.pool.Get(self.idx)
}

// IsEmpty reports whether the reference was never bound to a slot.
func (self ComponentRef[T]) IsEmpty() bool {
	return self.pool == nil
}
