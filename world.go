package poolecs

import "fmt"

// Default cache sizes applied when a Config field is zero or negative.
const (
	DefaultWorldEntitiesCache       = 1024
	DefaultWorldFiltersCache        = 128
	DefaultWorldComponentPoolsCache = 512
	DefaultEntityComponentsCache    = 8
	DefaultFilterEntitiesCache      = 256
)

// Config provides initial capacities for a new world. Zero or negative
// fields select the defaults.
type Config struct {
	WorldEntitiesCache       int
	WorldFiltersCache        int
	WorldComponentPoolsCache int
	EntityComponentsCache    int
	FilterEntitiesCache      int
}

func (self Config) withDefaults() Config {
	if self.WorldEntitiesCache <= 0 {
		self.WorldEntitiesCache = DefaultWorldEntitiesCache
	}
	if self.WorldFiltersCache <= 0 {
		self.WorldFiltersCache = DefaultWorldFiltersCache
	}
	if self.WorldComponentPoolsCache <= 0 {
		self.WorldComponentPoolsCache = DefaultWorldComponentPoolsCache
	}
	if self.EntityComponentsCache <= 0 {
		self.EntityComponentsCache = DefaultEntityComponentsCache
	}
	if self.FilterEntitiesCache <= 0 {
		self.FilterEntitiesCache = DefaultFilterEntitiesCache
	}
	return self
}

// entityData is the per-id slot stored inside the world. The component list
// interleaves [typeIndex, poolIndex] pairs; componentsCountX2 keeps the pair
// count pre-multiplied by two to avoid shifts in hot loops. A recycled slot
// carries the -2 sentinel until its id is reused.
type entityData struct {
	components        []int32
	componentsCountX2 int32
	gen               uint16
}

// WorldStats is a point-in-time snapshot of world occupancy.
type WorldStats struct {
	ActiveEntities   int
	ReservedEntities int
	Filters          int
	Components       int
}

// WorldEventListener receives world lifecycle events. Listeners fire only
// when DEBUG is enabled and must not mutate the world from a callback.
type WorldEventListener interface {
	OnEntityCreated(entity Entity)
	OnEntityDestroyed(entity Entity)
	OnFilterCreated(filter *Filter)
	OnComponentListChanged(entity Entity)
	OnWorldDestroyed(world *World)
}

// World owns entity slots, component pools and filters. A world is confined
// to one goroutine; the only cross-world shared state is the component type
// registry.
type World struct {
	entities         []entityData
	freeEntities     indexPool
	filters          []*Filter
	filtersByInclude [][]*Filter
	filtersByExclude [][]*Filter
	pools            []rawPool
	poolsCount       int
	config           Config
	listeners        []WorldEventListener
	leakedEntities   []int32
	alive            bool
}

// NewWorld creates a world with default cache sizes.
func NewWorld() *World {
	return NewWorldWithConfig(Config{})
}

// NewWorldWithConfig creates a world with the given initial capacities.
func NewWorldWithConfig(config Config) *World {
	config = config.withDefaults()
	return &World{
		entities:         make([]entityData, 0, config.WorldEntitiesCache),
		freeEntities:     newIndexPool(config.WorldEntitiesCache),
		filters:          make([]*Filter, 0, config.WorldFiltersCache),
		filtersByInclude: make([][]*Filter, 1),
		filtersByExclude: make([][]*Filter, 1),
		pools:            make([]rawPool, 1),
		config:           config,
		alive:            true,
	}
}

// IsAlive reports whether the world has not been destroyed.
func (self *World) IsAlive() bool {
	return self.alive
}

// Config returns the capacities the world was created with, defaults
// resolved.
func (self *World) Config() Config {
	return self.config
}

// NewEntity creates an entity, reusing a recycled slot id when one is
// available. The returned handle's generation is always >= 1. The entity is
// in flight until its first component is attached; in DEBUG builds an
// entity that never receives one is reported as leaked by the systems
// runner.
func (self *World) NewEntity() Entity {
	if DEBUG && !self.alive {
		panic("cannot create entity in destroyed world")
	}
	id := self.freeEntities.Pop()
	if id >= 0 {
		data := &self.entities[id]
		data.componentsCountX2 = 0
	} else {
		id = int32(len(self.entities))
		self.entities = extendSlice(self.entities, 1)
		self.entities[id] = entityData{
			components: make([]int32, 0, self.config.EntityComponentsCache*2),
			gen:        1,
		}
	}
	entity := Entity{owner: self, id: id, gen: self.entities[id].gen}
	if DEBUG {
		self.leakedEntities = append(self.leakedEntities, id)
		for _, l := range self.listeners {
			l.OnEntityCreated(entity)
		}
	}
	return entity
}

// entityDataOf returns the slot for id, validating the handle bound in
// DEBUG builds.
func (self *World) entityDataOf(entity Entity) *entityData {
	if DEBUG {
		if entity.owner != self {
			panic(fmt.Sprintf("%v does not belong to this world", entity))
		}
		if int(entity.id) >= len(self.entities) {
			panic(fmt.Sprintf("%v is out of world bounds", entity))
		}
	}
	return &self.entities[entity.id]
}

// recycleEntityData returns an emptied slot to the free list. The slot must
// have no components left; its generation is bumped (skipping zero) so any
// outstanding handle turns stale.
func (self *World) recycleEntityData(id int32, data *entityData) {
	if DEBUG && data.componentsCountX2 != 0 {
		panic("entity slot recycled with components attached")
	}
	data.gen++
	if data.gen == 0 {
		data.gen = 1
	}
	data.componentsCountX2 = -2
	self.freeEntities.Push(id)
}

// restoreEntity rebuilds the live handle for a slot id.
func (self *World) restoreEntity(id int32) Entity {
	return Entity{owner: self, id: id, gen: self.entities[id].gen}
}

// ensureTypeCapacity grows the per-type index arrays (doubling) so that
// type index idx is addressable.
func (self *World) ensureTypeCapacity(idx TypeIndex) {
	need := int(idx) + 1
	if need <= len(self.pools) {
		return
	}
	size := max(cap(self.pools), 2)
	for size < need {
		size *= 2
	}
	pools := make([]rawPool, need, size)
	copy(pools, self.pools)
	self.pools = pools
	byInclude := make([][]*Filter, need, size)
	copy(byInclude, self.filtersByInclude)
	self.filtersByInclude = byInclude
	byExclude := make([][]*Filter, need, size)
	copy(byExclude, self.filtersByExclude)
	self.filtersByExclude = byExclude
}

// GetPool returns the world's pool for T, lazily creating it on first use.
func GetPool[T any](world *World) *Pool[T] {
	idx := TypeIndexOf[T]()
	world.ensureTypeCapacity(idx)
	if p := world.pools[idx]; p != nil {
		return p.(*Pool[T])
	}
	p := newPool[T](world, componentTypeByIndex(idx), world.config.WorldComponentPoolsCache)
	world.pools[idx] = p
	world.poolsCount++
	return p
}

// GetFilter returns the filter matching the query, constructing and seeding
// it on first request. Two queries are structurally equal when they carry
// the same include set and the same exclude set; requesting an
// already-present set in a different declared order panics, since the order
// defines the meaning of the cached component rows.
func (self *World) GetFilter(query Query) *Filter {
	if DEBUG {
		if !self.alive {
			panic("cannot create filter in destroyed world")
		}
		query.validate()
	}
	for _, f := range query.include {
		self.ensureTypeCapacity(f)
	}
	for _, f := range query.exclude {
		self.ensureTypeCapacity(f)
	}
	for _, f := range self.filters {
		if !sameTypeSet(f.include, query.include) || !sameTypeSet(f.exclude, query.exclude) {
			continue
		}
		if sameTypeOrder(f.include, query.include) && sameTypeOrder(f.exclude, query.exclude) {
			return f
		}
		panic(fmt.Sprintf("filter with include %v / exclude %v already registered in a different order", query.include, query.exclude))
	}
	filter := newFilter(self, query)
	for _, idx := range query.include {
		self.filtersByInclude[idx] = append(self.filtersByInclude[idx], filter)
	}
	for _, idx := range query.exclude {
		self.filtersByExclude[idx] = append(self.filtersByExclude[idx], filter)
	}
	self.filters = extendSlice(self.filters, 1)
	self.filters[len(self.filters)-1] = filter
	// Seed membership from entities that already exist.
	for id := range self.entities {
		data := &self.entities[id]
		if data.componentsCountX2 > 0 && filter.isCompatible(data, 0) {
			filter.onAddEntity(self.restoreEntity(int32(id)))
		}
	}
	if DEBUG {
		for _, l := range self.listeners {
			l.OnFilterCreated(filter)
		}
	}
	return filter
}

// updateFilters dispatches a structural change on entity to every filter
// indexed under the changed type. A positive signedType means the component
// was just attached; a negative one means it is about to be detached, so
// compatibility checks run with a "pretend absent" probe against the still
// unmodified slot.
func (self *World) updateFilters(signedType TypeIndex, entity Entity, data *entityData) {
	typeIdx := signedType
	if typeIdx < 0 {
		typeIdx = -typeIdx
	}
	includeList := self.filtersByInclude[typeIdx]
	excludeList := self.filtersByExclude[typeIdx]
	if signedType > 0 {
		for _, f := range includeList {
			if f.isCompatible(data, 0) {
				f.onAddEntity(entity)
			}
		}
		for _, f := range excludeList {
			if f.isCompatible(data, -typeIdx) {
				f.onRemoveEntity(entity)
			}
		}
	} else {
		for _, f := range includeList {
			if f.isCompatible(data, 0) {
				f.onRemoveEntity(entity)
			}
		}
		for _, f := range excludeList {
			if f.isCompatible(data, -typeIdx) {
				f.onAddEntity(entity)
			}
		}
	}
}

// GetAllEntities fills list with every alive entity, growing it as needed,
// and returns the count.
func (self *World) GetAllEntities(list *[]Entity) int {
	count := 0
	*list = (*list)[:0]
	for id := range self.entities {
		if self.entities[id].componentsCountX2 >= 0 {
			*list = extendSlice(*list, 1)
			(*list)[count] = self.restoreEntity(int32(id))
			count++
		}
	}
	return count
}

// Stats returns an occupancy snapshot.
func (self *World) Stats() WorldStats {
	return WorldStats{
		ActiveEntities:   len(self.entities) - self.freeEntities.Len(),
		ReservedEntities: self.freeEntities.Len(),
		Filters:          len(self.filters),
		Components:       self.poolsCount,
	}
}

// Destroy releases the world: every alive entity is destroyed (recycling
// its components), then every filter is torn down in reverse creation
// order. Any further use of the world or of handles into it is a contract
// violation.
func (self *World) Destroy() {
	if DEBUG && !self.alive {
		panic("world already destroyed")
	}
	for id := len(self.entities) - 1; id >= 0; id-- {
		if self.entities[id].componentsCountX2 >= 0 {
			self.restoreEntity(int32(id)).Destroy()
		}
	}
	for i := len(self.filters) - 1; i >= 0; i-- {
		self.filters[i].destroy()
	}
	self.alive = false
	if DEBUG {
		for _, l := range self.listeners {
			l.OnWorldDestroyed(self)
		}
	}
}

// AddEventListener registers a debug listener. Listeners only fire when
// DEBUG is enabled.
func (self *World) AddEventListener(l WorldEventListener) {
	if DEBUG && l == nil {
		panic("invalid world event listener")
	}
	self.listeners = append(self.listeners, l)
}

// RemoveEventListener drops a previously registered listener.
func (self *World) RemoveEventListener(l WorldEventListener) {
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

func (self *World) onComponentListChanged(entity Entity) {
	for _, l := range self.listeners {
		l.OnComponentListChanged(entity)
	}
}

// checkLeakedEntities reports whether any entity created since the last
// audit is still alive without components. The audit list is cleared.
func (self *World) checkLeakedEntities() bool {
	leaked := false
	for _, id := range self.leakedEntities {
		data := &self.entities[id]
		if data.componentsCountX2 == 0 {
			leaked = true
			break
		}
	}
	self.leakedEntities = self.leakedEntities[:0]
	return leaked
}

// checkLeakedFilters reports whether any filter is still iteration-locked.
func (self *World) checkLeakedFilters() bool {
	for _, f := range self.filters {
		if f.lockCount > 0 {
			return true
		}
	}
	return false
}

func sameTypeSet(a, b []TypeIndex) bool {
	if len(a) != len(b) {
		return false
	}
	for _, x := range a {
		found := false
		for _, y := range b {
			if x == y {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func sameTypeOrder(a, b []TypeIndex) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
