package poolecs

import (
	"fmt"
	"reflect"
)

// checkAlive validates the handle before a structural operation.
func checkAlive(entity Entity, op string) *entityData {
	if !DEBUG {
		return &entity.owner.entities[entity.id]
	}
	if entity.IsNull() {
		panic(fmt.Sprintf("cannot %s on null entity", op))
	}
	if !entity.IsWorldAlive() {
		panic(fmt.Sprintf("cannot %s on entity of destroyed world", op))
	}
	data := entity.owner.entityDataOf(entity)
	if data.gen != entity.gen || data.componentsCountX2 < 0 {
		panic(fmt.Sprintf("cannot %s on destroyed %v", op, entity))
	}
	return data
}

// poolIndexIn scans the slot's component list for typeIdx and returns the
// pool index, or -1 when the type is not attached.
func poolIndexIn(data *entityData, typeIdx TypeIndex) int32 {
	for i := int32(0); i < data.componentsCountX2; i += 2 {
		if TypeIndex(data.components[i]) == typeIdx {
			return data.components[i+1]
		}
	}
	return -1
}

// attach appends a [typeIndex, poolIndex] pair to the slot and dispatches
// the filter update for the addition.
func attach(entity Entity, data *entityData, typeIdx TypeIndex, poolIdx int32) {
	data.components = extendSlice(data.components, 2)
	data.components[data.componentsCountX2] = int32(typeIdx)
	data.components[data.componentsCountX2+1] = poolIdx
	data.componentsCountX2 += 2
	entity.owner.updateFilters(typeIdx, entity, data)
	if DEBUG {
		entity.owner.onComponentListChanged(entity)
	}
}

// Get returns the T attached to the entity, attaching a fresh one first if
// none is present. This is the insert-or-access primitive: the value of a
// fresh component is the pool's reset-or-zero value.
func Get[T any](entity Entity) *T {
	data := checkAlive(entity, "Get")
	pool := GetPool[T](entity.owner)
	if idx := poolIndexIn(data, pool.info.index); idx >= 0 {
		return pool.Get(idx)
	}
	idx := pool.New()
	attach(entity, data, pool.info.index, idx)
	return pool.Get(idx)
}

// Replace overwrites the entity's T in place when attached, or attaches it
// with the given value. Replacing never fires a filter update for an
// already attached component. Not allowed for types declaring AutoReset:
// the overwrite would bypass the reset invariants.
func Replace[T any](entity Entity, value T) {
	data := checkAlive(entity, "Replace")
	pool := GetPool[T](entity.owner)
	if DEBUG && pool.info.hasAutoReset {
		panic(fmt.Sprintf("cannot Replace component %s with AutoReset", pool.info.typ))
	}
	if idx := poolIndexIn(data, pool.info.index); idx >= 0 {
		*pool.Get(idx) = value
		return
	}
	idx := pool.New()
	*pool.Get(idx) = value
	attach(entity, data, pool.info.index, idx)
}

// Has reports whether T is attached to the entity.
func Has[T any](entity Entity) bool {
	data := checkAlive(entity, "Has")
	return poolIndexIn(data, TypeIndexOf[T]()) >= 0
}

// Del detaches T from the entity. Filters are updated before the pool slot
// is released, so compatibility checks still see the component present.
// When the last component goes, the entity slot itself is recycled.
// Deleting a type that is not attached is a no-op.
func Del[T any](entity Entity) {
	data := checkAlive(entity, "Del")
	pool := GetPool[T](entity.owner)
	typeIdx := pool.info.index
	for i := int32(0); i < data.componentsCountX2; i += 2 {
		if TypeIndex(data.components[i]) != typeIdx {
			continue
		}
		entity.owner.updateFilters(-typeIdx, entity, data)
		pool.Recycle(data.components[i+1])
		last := data.componentsCountX2 - 2
		if i < last {
			data.components[i] = data.components[last]
			data.components[i+1] = data.components[last+1]
		}
		data.components = data.components[:last]
		data.componentsCountX2 = last
		if DEBUG {
			entity.owner.onComponentListChanged(entity)
		}
		if data.componentsCountX2 == 0 {
			if DEBUG {
				for _, l := range entity.owner.listeners {
					l.OnEntityDestroyed(entity)
				}
			}
			entity.owner.recycleEntityData(entity.id, data)
		}
		return
	}
}

// Ref returns a stable-while-attached reference to the entity's T,
// attaching a fresh component first if none is present. The reference goes
// stale the moment T is detached.
func Ref[T any](entity Entity) ComponentRef[T] {
	data := checkAlive(entity, "Ref")
	pool := GetPool[T](entity.owner)
	idx := poolIndexIn(data, pool.info.index)
	if idx < 0 {
		idx = pool.New()
		attach(entity, data, pool.info.index, idx)
	}
	return pool.Ref(idx)
}

// GetComponentIndexInPool returns the pool index of the entity's T, or -1
// when not attached.
func GetComponentIndexInPool[T any](entity Entity) int32 {
	data := checkAlive(entity, "GetComponentIndexInPool")
	return poolIndexIn(data, TypeIndexOf[T]())
}

// Copy clones the entity: a new entity receives a value copy of every
// attached component, in the same type order as the source.
func (self Entity) Copy() Entity {
	checkAlive(self, "Copy")
	world := self.owner
	copyEntity := world.NewEntity()
	srcData := &world.entities[self.id]
	dstData := &world.entities[copyEntity.id]
	for i := int32(0); i < srcData.componentsCountX2; i += 2 {
		typeIdx := TypeIndex(srcData.components[i])
		pool := world.pools[typeIdx]
		poolIdx := pool.newRaw()
		pool.copyData(srcData.components[i+1], poolIdx)
		attach(copyEntity, dstData, typeIdx, poolIdx)
	}
	return copyEntity
}

// MoveTo transfers every component of the entity onto target: components
// target already carries are overwritten in place, missing ones are
// attached. The source entity is destroyed afterwards. Source and target
// must be distinct entities of the same world.
func (self Entity) MoveTo(target Entity) {
	srcData := checkAlive(self, "MoveTo")
	dstData := checkAlive(target, "MoveTo")
	if DEBUG {
		if self.owner != target.owner {
			panic(fmt.Sprintf("cannot MoveTo across worlds (%v -> %v)", self, target))
		}
		if self.id == target.id {
			panic(fmt.Sprintf("cannot MoveTo %v onto itself", self))
		}
	}
	world := self.owner
	for i := int32(0); i < srcData.componentsCountX2; i += 2 {
		typeIdx := TypeIndex(srcData.components[i])
		pool := world.pools[typeIdx]
		srcIdx := srcData.components[i+1]
		if dstIdx := poolIndexIn(dstData, typeIdx); dstIdx >= 0 {
			pool.copyData(srcIdx, dstIdx)
			continue
		}
		poolIdx := pool.newRaw()
		pool.copyData(srcIdx, poolIdx)
		attach(target, dstData, typeIdx, poolIdx)
	}
	self.Destroy()
}

// Destroy detaches every component of the entity, highest list position
// first, and recycles the slot. Each detach updates filters before the pool
// slot is released.
func (self Entity) Destroy() {
	data := checkAlive(self, "Destroy")
	world := self.owner
	for i := data.componentsCountX2 - 2; i >= 0; i -= 2 {
		typeIdx := TypeIndex(data.components[i])
		world.updateFilters(-typeIdx, self, data)
		world.pools[typeIdx].recycleRaw(data.components[i+1])
		data.components = data.components[:i]
		data.componentsCountX2 = i
		if DEBUG {
			world.onComponentListChanged(self)
		}
	}
	if DEBUG {
		for _, l := range world.listeners {
			l.OnEntityDestroyed(self)
		}
	}
	world.recycleEntityData(self.id, data)
}

// GetComponentTypes fills list with the reflected type of every attached
// component, growing it as needed, and returns the count.
func (self Entity) GetComponentTypes(list *[]reflect.Type) int {
	data := checkAlive(self, "GetComponentTypes")
	count := int(data.componentsCountX2 / 2)
	*list = (*list)[:0]
	for i := int32(0); i < data.componentsCountX2; i += 2 {
		*list = extendSlice(*list, 1)
		(*list)[i/2] = componentTypeByIndex(TypeIndex(data.components[i])).typ
	}
	return count
}

// GetComponentValues fills list with a boxed copy of every attached
// component value, growing it as needed, and returns the count. Meant for
// debug and UI code, the boxing allocates.
func (self Entity) GetComponentValues(list *[]any) int {
	data := checkAlive(self, "GetComponentValues")
	count := int(data.componentsCountX2 / 2)
	*list = (*list)[:0]
	for i := int32(0); i < data.componentsCountX2; i += 2 {
		pool := self.owner.pools[data.components[i]]
		*list = extendSlice(*list, 1)
		(*list)[i/2] = pool.itemValue(data.components[i+1])
	}
	return count
}
