package poolecs

// Shared component types for the package tests.

type position struct {
	X, Y float32
}

type velocity struct {
	DX, DY float32
}

type health struct {
	HP int
}

type tag struct{}

// hiddenTag is excluded from filter index caching.
type hiddenTag struct {
	Marker int
}

func (hiddenTag) IgnoreInFilter() {}

// pooledBuffer declares a custom reset routine.
type pooledBuffer struct {
	Data   []byte
	Resets int
}

func (self *pooledBuffer) AutoReset(c *pooledBuffer) {
	if c.Data != nil {
		c.Data = c.Data[:0]
	}
	c.Resets++
}
