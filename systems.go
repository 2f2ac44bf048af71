package poolecs

import "fmt"

// Lifecycle contracts for user systems. Implement any subset; the runner
// invokes each phase on the systems that declare it.

// PreInitSystem runs before every InitSystem of the group.
type PreInitSystem interface {
	PreInit()
}

// InitSystem runs once after registration, before the first Run.
type InitSystem interface {
	Init()
}

// RunSystem runs every tick in registration order.
type RunSystem interface {
	Run()
}

// DestroySystem runs at teardown, in reverse registration order.
type DestroySystem interface {
	Destroy()
}

// PostDestroySystem runs after every DestroySystem of the group.
type PostDestroySystem interface {
	PostDestroy()
}

// SystemsEventListener receives systems-group lifecycle events. Listeners
// fire only when DEBUG is enabled.
type SystemsEventListener interface {
	OnSystemsDestroyed(systems *Systems)
}

// Systems is an ordered group of user systems bound to one world. A group
// implements InitSystem, RunSystem, DestroySystem and PostDestroySystem
// itself, so it can be registered inside another group as a single
// run-phase unit. It does not implement PreInitSystem: a nested group runs
// its own PreInit phase from its Init, during the parent's Init phase. A
// nested group tears down fully (Destroy and PostDestroy phases) during
// the parent's destroy phase.
type Systems struct {
	world       *World
	name        string
	all         []any
	runSystems  []RunSystem
	listeners   []SystemsEventListener
	initialized bool
	destroyed   bool
}

// NewSystems creates an empty systems group for the world.
func NewSystems(world *World) *Systems {
	return NewNamedSystems(world, "systems")
}

// NewNamedSystems creates an empty systems group with a name used in debug
// reports.
func NewNamedSystems(world *World, name string) *Systems {
	return &Systems{
		world:      world,
		name:       name,
		all:        make([]any, 0, 16),
		runSystems: make([]RunSystem, 0, 16),
	}
}

// World returns the world the group is bound to.
func (self *Systems) World() *World {
	return self.world
}

// Name returns the group's debug name.
func (self *Systems) Name() string {
	return self.name
}

// Add registers a system at the end of the group. Returns the group for
// chaining.
func (self *Systems) Add(system any) *Systems {
	if DEBUG {
		if system == nil {
			panic(fmt.Sprintf("%s: cannot add nil system", self.name))
		}
		if self.initialized {
			panic(fmt.Sprintf("%s: cannot add systems after Init", self.name))
		}
	}
	self.all = append(self.all, system)
	if runSystem, ok := system.(RunSystem); ok {
		self.runSystems = append(self.runSystems, runSystem)
	}
	return self
}

// OneFrame inserts a cleanup pseudo-system at the current position of the
// run sequence: on every tick it detaches all components of type T from all
// entities carrying one.
func OneFrame[T any](systems *Systems) *Systems {
	return systems.Add(&delHereSystem[T]{world: systems.world})
}

// Init runs the PreInit phase, then the Init phase, in registration order.
func (self *Systems) Init() {
	if DEBUG && self.initialized {
		panic(fmt.Sprintf("%s: already initialized", self.name))
	}
	for _, system := range self.all {
		if preInit, ok := system.(PreInitSystem); ok {
			preInit.PreInit()
			if DEBUG && self.world.checkLeakedEntities() {
				panic(fmt.Sprintf("%s: empty entity detected in world after PreInit of %T", self.name, system))
			}
		}
	}
	for _, system := range self.all {
		if init, ok := system.(InitSystem); ok {
			init.Init()
			if DEBUG && self.world.checkLeakedEntities() {
				panic(fmt.Sprintf("%s: empty entity detected in world after Init of %T", self.name, system))
			}
		}
	}
	self.initialized = true
}

// Run invokes every RunSystem once, in registration order.
func (self *Systems) Run() {
	if DEBUG && !self.initialized {
		panic(fmt.Sprintf("%s: Run before Init", self.name))
	}
	for _, system := range self.runSystems {
		system.Run()
		if DEBUG {
			if self.world.checkLeakedEntities() {
				panic(fmt.Sprintf("%s: empty entity detected in world after Run of %T", self.name, system))
			}
			if self.world.checkLeakedFilters() {
				panic(fmt.Sprintf("%s: locked filter detected in world after Run of %T", self.name, system))
			}
		}
	}
}

// Destroy runs the Destroy phase in reverse registration order, then the
// PostDestroy phase.
func (self *Systems) Destroy() {
	if DEBUG && self.destroyed {
		panic(fmt.Sprintf("%s: already destroyed", self.name))
	}
	for i := len(self.all) - 1; i >= 0; i-- {
		if destroy, ok := self.all[i].(DestroySystem); ok {
			destroy.Destroy()
		}
	}
	for i := len(self.all) - 1; i >= 0; i-- {
		if postDestroy, ok := self.all[i].(PostDestroySystem); ok {
			postDestroy.PostDestroy()
		}
	}
	self.destroyed = true
	if DEBUG {
		for _, l := range self.listeners {
			l.OnSystemsDestroyed(self)
		}
	}
}

// PostDestroy makes a group usable as a PostDestroySystem inside a parent
// group. The group has nothing left to do here, teardown completed in
// Destroy.
func (self *Systems) PostDestroy() {}

// AddEventListener registers a debug listener.
func (self *Systems) AddEventListener(l SystemsEventListener) {
	if DEBUG && l == nil {
		panic(fmt.Sprintf("%s: invalid systems event listener", self.name))
	}
	self.listeners = append(self.listeners, l)
}

// RemoveEventListener drops a previously registered listener.
func (self *Systems) RemoveEventListener(l SystemsEventListener) {
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

// delHereSystem is the library-provided one-frame cleanup: each run it
// deletes every T through the include={T} filter.
type delHereSystem[T any] struct {
	world  *World
	filter *Filter
}

func (self *delHereSystem[T]) Init() {
	self.filter = GetFilter1[T](self.world)
}

func (self *delHereSystem[T]) Run() {
	if self.filter.IsEmpty() {
		return
	}
	it := self.filter.Iter()
	for it.Next() {
		Del[T](it.Entity())
	}
	it.Done()
}
