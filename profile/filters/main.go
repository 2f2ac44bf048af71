// Profiling:
// go build ./profile/filters
// go tool pprof -http=":8000" -nodefraction=0.001 ./filters mem.pprof

package main

import (
	"github.com/edwinsyarief/poolecs"
	"github.com/pkg/profile"
)

type comp1 struct {
	V int64
	W int64
}

type comp2 struct {
	V int64
	W int64
}

func main() {
	rounds := 50
	iters := 10000
	entities := 1000
	p := profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook)
	run(rounds, iters, entities)
	p.Stop()
}

func run(rounds, iters, numEntities int) {
	for range rounds {
		w := poolecs.NewWorld()
		filter := poolecs.GetFilter2[comp1, comp2](w)
		for range numEntities {
			e := w.NewEntity()
			poolecs.Get[comp1](e)
			poolecs.Get[comp2](e)
		}
		for range iters {
			it := filter.Iter()
			for it.Next() {
				c1 := poolecs.FilterGet[comp1](filter, 0, it.Index())
				c2 := poolecs.FilterGet[comp2](filter, 1, it.Index())
				c1.V += c2.V
				c1.W += c2.W
			}
			it.Done()
		}
		w.Destroy()
	}
}
