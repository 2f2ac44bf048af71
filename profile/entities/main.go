// Profiling:
// go build ./profile/entities
// go tool pprof -http=":8000" -nodefraction=0.001 ./entities mem.pprof

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
		for range iters {
			entities := make([]poolecs.Entity, 0, numEntities)
			for range numEntities {
				e := w.NewEntity()
				c1 := poolecs.Get[comp1](e)
				c2 := poolecs.Get[comp2](e)
				c1.V += c2.V
				c1.W += c2.W
				entities = append(entities, e)
			}
			for _, e := range entities {
				e.Destroy()
			}
		}
		w.Destroy()
	}
}
