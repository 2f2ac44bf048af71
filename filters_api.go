package poolecs

// Handwritten arity helpers over World.GetFilter. Each one makes sure the
// pools of every referenced component type exist before the filter is
// built, so the raw Query path stays free of type parameters.

// GetFilter1 returns the filter with include {A}.
func GetFilter1[A any](world *World) *Filter {
	GetPool[A](world)
	return world.GetFilter(NewQuery(TypeIndexOf[A]()))
}

// GetFilter2 returns the filter with include {A, B}.
func GetFilter2[A, B any](world *World) *Filter {
	GetPool[A](world)
	GetPool[B](world)
	return world.GetFilter(NewQuery(TypeIndexOf[A](), TypeIndexOf[B]()))
}

// GetFilter3 returns the filter with include {A, B, C}.
func GetFilter3[A, B, C any](world *World) *Filter {
	GetPool[A](world)
	GetPool[B](world)
	GetPool[C](world)
	return world.GetFilter(NewQuery(TypeIndexOf[A](), TypeIndexOf[B](), TypeIndexOf[C]()))
}

// GetFilter4 returns the filter with include {A, B, C, D}.
func GetFilter4[A, B, C, D any](world *World) *Filter {
	GetPool[A](world)
	GetPool[B](world)
	GetPool[C](world)
	GetPool[D](world)
	return world.GetFilter(NewQuery(TypeIndexOf[A](), TypeIndexOf[B](), TypeIndexOf[C](), TypeIndexOf[D]()))
}

// GetFilter1Exc1 returns the filter with include {A}, exclude {X}.
func GetFilter1Exc1[A, X any](world *World) *Filter {
	GetPool[A](world)
	GetPool[X](world)
	return world.GetFilter(NewQuery(TypeIndexOf[A]()).Without(TypeIndexOf[X]()))
}

// GetFilter1Exc2 returns the filter with include {A}, exclude {X, Y}.
func GetFilter1Exc2[A, X, Y any](world *World) *Filter {
	GetPool[A](world)
	GetPool[X](world)
	GetPool[Y](world)
	return world.GetFilter(NewQuery(TypeIndexOf[A]()).Without(TypeIndexOf[X](), TypeIndexOf[Y]()))
}

// GetFilter2Exc1 returns the filter with include {A, B}, exclude {X}.
func GetFilter2Exc1[A, B, X any](world *World) *Filter {
	GetPool[A](world)
	GetPool[B](world)
	GetPool[X](world)
	return world.GetFilter(NewQuery(TypeIndexOf[A](), TypeIndexOf[B]()).Without(TypeIndexOf[X]()))
}

// GetFilter2Exc2 returns the filter with include {A, B}, exclude {X, Y}.
func GetFilter2Exc2[A, B, X, Y any](world *World) *Filter {
	GetPool[A](world)
	GetPool[B](world)
	GetPool[X](world)
	GetPool[Y](world)
	return world.GetFilter(NewQuery(TypeIndexOf[A](), TypeIndexOf[B]()).Without(TypeIndexOf[X](), TypeIndexOf[Y]()))
}
