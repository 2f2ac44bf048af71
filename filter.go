package poolecs

import (
	"fmt"
	"reflect"
	"unsafe"
)

// Query describes the structural shape a filter indexes: entities carrying
// every include type and none of the exclude types. Declared include order
// is significant, it fixes the row layout of the filter's cached component
// indices.
type Query struct {
	include []TypeIndex
	exclude []TypeIndex
}

// NewQuery builds a query over the given include types.
func NewQuery(include ...TypeIndex) Query {
	return Query{include: include}
}

// Without returns a copy of the query with the given exclude types.
func (self Query) Without(exclude ...TypeIndex) Query {
	self.exclude = exclude
	return self
}

func (self Query) validate() {
	if len(self.include) == 0 {
		panic("filter must include at least one component type")
	}
	for i, idx := range self.include {
		if idx <= 0 {
			panic(fmt.Sprintf("invalid type index %d in filter include list", idx))
		}
		for _, other := range self.include[i+1:] {
			if idx == other {
				panic(fmt.Sprintf("type index %d duplicated in filter include list", idx))
			}
		}
		for _, other := range self.exclude {
			if idx == other {
				panic(fmt.Sprintf("type index %d present in both include and exclude lists", idx))
			}
		}
	}
	for i, idx := range self.exclude {
		if idx <= 0 {
			panic(fmt.Sprintf("invalid type index %d in filter exclude list", idx))
		}
		for _, other := range self.exclude[i+1:] {
			if idx == other {
				panic(fmt.Sprintf("type index %d duplicated in filter exclude list", idx))
			}
		}
	}
}

// FilterEventListener receives membership changes of one filter.
// Callbacks must not mutate the world.
type FilterEventListener interface {
	OnEntityAdded(entity Entity)
	OnEntityRemoved(entity Entity)
}

// delayedOp is one structural mutation queued while the filter was
// iteration-locked.
type delayedOp struct {
	entity Entity
	added  bool
}

// Filter is an incrementally maintained index of the entities matching a
// query. Alongside the dense entity array it keeps one row of pool indices
// per include type (skipped for IgnoreInFilter types), giving iterators
// O(1) component access without touching the entity's component list.
type Filter struct {
	world       *World
	include     []TypeIndex
	exclude     []TypeIndex
	entities    []Entity
	entitiesMap map[int32]int
	rows        [][]int32
	pools       []rawPool
	bases       []unsafe.Pointer
	strides     []uintptr
	delayedOps  []delayedOp
	listeners   []FilterEventListener
	lockCount   int
}

func newFilter(world *World, query Query) *Filter {
	capacity := world.config.FilterEntitiesCache
	f := &Filter{
		world:       world,
		include:     query.include,
		exclude:     query.exclude,
		entities:    make([]Entity, 0, capacity),
		entitiesMap: make(map[int32]int, capacity),
		rows:        make([][]int32, len(query.include)),
		pools:       make([]rawPool, len(query.include)),
		bases:       make([]unsafe.Pointer, len(query.include)),
		strides:     make([]uintptr, len(query.include)),
	}
	for k, idx := range query.include {
		info := componentTypeByIndex(idx)
		if info.ignoreInFilter {
			continue
		}
		pool := world.pools[idx]
		if DEBUG && pool == nil {
			panic(fmt.Sprintf("no pool created for component %s in filter include list", info.typ))
		}
		f.rows[k] = make([]int32, 0, capacity)
		f.pools[k] = pool
		f.strides[k] = pool.itemStride()
		f.bases[k] = pool.itemBase()
		pool.addResizeListener(f)
	}
	return f
}

// World returns the owning world.
func (self *Filter) World() *World {
	return self.world
}

// Count returns the current number of member entities. An active iterator
// keeps walking the count observed at lock time instead.
func (self *Filter) Count() int {
	return len(self.entities)
}

// IsEmpty reports whether the filter has no member entities.
func (self *Filter) IsEmpty() bool {
	return len(self.entities) == 0
}

// Entity returns the member at ordinal position i.
func (self *Filter) Entity(i int) Entity {
	return self.entities[i]
}

// PoolIndex returns the cached pool index of the k-th included component
// for the member at ordinal position i.
func (self *Filter) PoolIndex(k, i int) int32 {
	if DEBUG && self.rows[k] == nil {
		panic(fmt.Sprintf("component %s is marked IgnoreInFilter, its pool index is not cached", componentTypeByIndex(self.include[k]).typ))
	}
	return self.rows[k][i]
}

// isCompatible evaluates the filter's structural predicate against a slot.
// probe is 0 for the slot as-is, a positive type index to treat that type
// as virtually present, or a negative one to treat it as virtually absent.
// The three-valued probe lets update dispatch reuse the current slot for
// both "about to be added" and "about to be removed" decisions without
// editing the slot first.
func (self *Filter) isCompatible(data *entityData, probe TypeIndex) bool {
	for _, idx := range self.include {
		if probe == idx {
			continue
		}
		if -probe == idx {
			return false
		}
		found := false
		for i := int32(0); i < data.componentsCountX2; i += 2 {
			if TypeIndex(data.components[i]) == idx {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	for _, idx := range self.exclude {
		if probe == idx {
			return false
		}
		if -probe == idx {
			continue
		}
		for i := int32(0); i < data.componentsCountX2; i += 2 {
			if TypeIndex(data.components[i]) == idx {
				return false
			}
		}
	}
	return true
}

// onAddEntity makes entity a member, or queues the addition if the filter
// is iteration-locked. The entity's component list is walked once to
// capture the pool index of every cached include type.
func (self *Filter) onAddEntity(entity Entity) {
	if self.lockCount > 0 {
		self.delayedOps = extendSlice(self.delayedOps, 1)
		self.delayedOps[len(self.delayedOps)-1] = delayedOp{entity: entity, added: true}
		return
	}
	if DEBUG {
		if _, ok := self.entitiesMap[entity.id]; ok {
			panic(fmt.Sprintf("%v already in filter", entity))
		}
	}
	pos := len(self.entities)
	self.entities = extendSlice(self.entities, 1)
	self.entities[pos] = entity
	for k := range self.rows {
		if self.rows[k] != nil {
			self.rows[k] = extendSlice(self.rows[k], 1)
		}
	}
	data := &self.world.entities[entity.id]
	for i := int32(0); i < data.componentsCountX2; i += 2 {
		typeIdx := TypeIndex(data.components[i])
		for k, idx := range self.include {
			if idx == typeIdx {
				if self.rows[k] != nil {
					self.rows[k][pos] = data.components[i+1]
				}
				break
			}
		}
	}
	self.entitiesMap[entity.id] = pos
	for _, l := range self.listeners {
		l.OnEntityAdded(entity)
	}
}

// onRemoveEntity drops entity from membership by swapping the last member
// into its position, or queues the removal if the filter is
// iteration-locked.
func (self *Filter) onRemoveEntity(entity Entity) {
	if self.lockCount > 0 {
		self.delayedOps = extendSlice(self.delayedOps, 1)
		self.delayedOps[len(self.delayedOps)-1] = delayedOp{entity: entity, added: false}
		return
	}
	pos, ok := self.entitiesMap[entity.id]
	if DEBUG && !ok {
		panic(fmt.Sprintf("%v not in filter", entity))
	}
	delete(self.entitiesMap, entity.id)
	last := len(self.entities) - 1
	if pos < last {
		moved := self.entities[last]
		self.entities[pos] = moved
		self.entitiesMap[moved.id] = pos
		for k := range self.rows {
			if self.rows[k] != nil {
				self.rows[k][pos] = self.rows[k][last]
			}
		}
	}
	self.entities = self.entities[:last]
	for k := range self.rows {
		if self.rows[k] != nil {
			self.rows[k] = self.rows[k][:last]
		}
	}
	for _, l := range self.listeners {
		l.OnEntityRemoved(entity)
	}
}

func (self *Filter) lock() {
	self.lockCount++
}

// unlock balances a lock call; when the last lock drops, the deferred
// operations drain in FIFO order against the current filter state.
func (self *Filter) unlock() {
	if DEBUG && self.lockCount <= 0 {
		panic("filter lock underflow")
	}
	self.lockCount--
	if self.lockCount == 0 && len(self.delayedOps) > 0 {
		for i := 0; i < len(self.delayedOps); i++ {
			op := self.delayedOps[i]
			if op.added {
				self.onAddEntity(op.entity)
			} else {
				self.onRemoveEntity(op.entity)
			}
		}
		self.delayedOps = self.delayedOps[:0]
	}
}

// Iter locks the filter and returns an iterator over the membership
// observed at lock time. Done must be called exactly once per iterator.
func (self *Filter) Iter() FilterIter {
	self.lock()
	return FilterIter{filter: self, idx: -1, count: len(self.entities)}
}

// FilterIter walks a filter's members by ordinal index. Entities added or
// removed during the walk are not reflected in it; the mutations apply when
// the iterator is done.
type FilterIter struct {
	filter *Filter
	idx    int
	count  int
}

// Next advances the iterator, reporting whether a member is available.
func (self *FilterIter) Next() bool {
	self.idx++
	return self.idx < self.count
}

// Index returns the current ordinal position.
func (self *FilterIter) Index() int {
	return self.idx
}

// Entity returns the member at the current position.
func (self *FilterIter) Entity() Entity {
	return self.filter.entities[self.idx]
}

// Done releases the iterator's lock, draining deferred mutations if it was
// the last one.
func (self *FilterIter) Done() {
	self.filter.unlock()
}

// FilterGet returns the k-th included component of the member at ordinal
// position i, reading straight from the pool's backing array through the
// filter's cached base pointer.
func FilterGet[T any](filter *Filter, k, i int) *T {
	if DEBUG {
		if k < 0 || k >= len(filter.include) {
			panic(fmt.Sprintf("include row %d out of range for filter with %d include types", k, len(filter.include)))
		}
		if filter.rows[k] == nil {
			panic(fmt.Sprintf("component %s is marked IgnoreInFilter, it cannot be read through the filter", componentTypeByIndex(filter.include[k]).typ))
		}
		if want := TypeIndexOf[T](); want != filter.include[k] {
			panic(fmt.Sprintf("filter include row %d holds %s, not %s", k, componentTypeByIndex(filter.include[k]).typ, reflect.TypeFor[T]()))
		}
	}
	return (*T)(unsafe.Add(filter.bases[k], uintptr(filter.rows[k][i])*filter.strides[k]))
}

// onComponentPoolResize rebinds the cached base pointers after a referenced
// pool reallocated its backing array.
func (self *Filter) onComponentPoolResize() {
	for k, pool := range self.pools {
		if pool != nil {
			self.bases[k] = pool.itemBase()
		}
	}
}

// AddEventListener registers a membership listener.
func (self *Filter) AddEventListener(l FilterEventListener) {
	if DEBUG && l == nil {
		panic("invalid filter event listener")
	}
	self.listeners = extendSlice(self.listeners, 1)
	self.listeners[len(self.listeners)-1] = l
}

// RemoveEventListener drops a membership listener, swapping the last one
// into its place.
func (self *Filter) RemoveEventListener(l FilterEventListener) {
	for i, registered := range self.listeners {
		if registered == l {
			last := len(self.listeners) - 1
			self.listeners[i] = self.listeners[last]
			self.listeners[last] = nil
			self.listeners = self.listeners[:last]
			return
		}
	}
}

// destroy unsubscribes the filter from pool resize events. Called by the
// world during teardown.
func (self *Filter) destroy() {
	if DEBUG && self.lockCount > 0 {
		panic("filter destroyed while locked")
	}
	for _, pool := range self.pools {
		if pool != nil {
			pool.removeResizeListener(self)
		}
	}
}
