package sim

// Params are the run parameters every component reads.
type Params struct {
	MessageCount     int
	LossProb         float64
	CorruptProb      float64
	MeanInterarrival VTime
}

// Stats are the running counters of a simulation.
type Stats struct {
	Generated     int
	SentToChannel int
	Lost          int
	Corrupted     int
	Delivered     int
	Warnings      int
}

// A Context is the state shared by all the components of one simulation: the
// virtual clock, the run parameters and the running counters.
//
// Only the Scheduler moves the clock. Only the channel and the driver update
// the counters.
type Context struct {
	Params Params
	Stats  Stats

	now VTime
}

// NewContext creates a Context at time zero.
func NewContext(params Params) *Context {
	return &Context{Params: params}
}

// Now returns the current virtual time.
func (c *Context) Now() VTime {
	return c.now
}

func (c *Context) advanceTo(t VTime) {
	if t < c.now {
		Panicf("clock", "cannot move time back from %.6f to %.6f", c.now, t)
	}

	c.now = t
}
