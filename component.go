package poolecs

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
)

// TypeIndex is the process-wide positive integer assigned to a component
// type on first use. Index 0 is reserved to encode "no type"; the sign of a
// TypeIndex carries add/remove polarity in filter update dispatch, so a
// valid index is never zero. Treat it as opaque outside of comparisons.
type TypeIndex int32

// AutoReset is implemented by component types that need custom
// re-initialization. The routine runs on a freshly allocated pool slot and
// again when the slot is recycled, receiving a pointer to the slot being
// reset. The type parameter must be the implementing type itself;
// registering a component whose AutoReset targets another type panics.
type AutoReset[T any] interface {
	AutoReset(c *T)
}

// IgnoreInFilter marks component types whose pool indices filters do not
// cache. Reading such a component through a filter row is a contract
// violation; use Get on the entity instead.
type IgnoreInFilter interface {
	IgnoreInFilter()
}

// componentType holds the registered metadata of one component type.
type componentType struct {
	typ            reflect.Type
	index          TypeIndex
	ignoreInFilter bool
	hasAutoReset   bool
}

var (
	typeCounter  atomic.Int32
	registryLock sync.RWMutex
	typesByType  = make(map[reflect.Type]*componentType, 64)
	typesByIndex = []*componentType{nil} // index 0 reserved
)

// TypeIndexOf returns the stable type index of T, registering the type on
// first use. Safe for concurrent first-touch from multiple worlds.
func TypeIndexOf[T any]() TypeIndex {
	t := reflect.TypeFor[T]()
	registryLock.RLock()
	info, ok := typesByType[t]
	registryLock.RUnlock()
	if ok {
		return info.index
	}
	return registerComponentType[T](t)
}

func registerComponentType[T any](t reflect.Type) TypeIndex {
	registryLock.Lock()
	defer registryLock.Unlock()
	if info, ok := typesByType[t]; ok {
		return info.index
	}
	var zero T
	_, hasAutoReset := any(&zero).(AutoReset[T])
	if !hasAutoReset {
		if _, found := reflect.PointerTo(t).MethodByName("AutoReset"); found {
			panic(fmt.Sprintf("component %s declares AutoReset for a different type than itself", t))
		}
	}
	_, ignore := any(&zero).(IgnoreInFilter)
	info := &componentType{
		typ:            t,
		index:          TypeIndex(typeCounter.Add(1)),
		ignoreInFilter: ignore,
		hasAutoReset:   hasAutoReset,
	}
	typesByType[t] = info
	typesByIndex = append(typesByIndex, info)
	return info.index
}

// componentTypeByIndex returns the metadata registered for idx.
func componentTypeByIndex(idx TypeIndex) *componentType {
	registryLock.RLock()
	info := typesByIndex[idx]
	registryLock.RUnlock()
	return info
}

// ComponentTypeOf returns the reflected type registered for idx.
func ComponentTypeOf(idx TypeIndex) reflect.Type {
	return componentTypeByIndex(idx).typ
}
