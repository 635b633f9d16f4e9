// Package frame collapses bursts of redraw triggers into a single
// recomputation pass per display refresh.
package frame

// A Scheduler requests at most one future wakeup from the host. Gio
// windows satisfy this with Invalidate; hosts whose refresh primitive
// cannot be revoked may implement Cancel as a no-op, since a Coalescer
// ignores ticks it did not ask for.
type Scheduler interface {
	// Schedule requests that the host call the Coalescer's Tick at the
	// next display refresh. Calling it while a wakeup is already
	// outstanding must not queue a second one.
	Schedule()
	// Cancel revokes an outstanding wakeup, if the host supports that.
	Cancel()
}

// SchedulerFunc adapts a bare invalidate function (such as a Gio
// window's Invalidate method) into a Scheduler with a no-op Cancel.
type SchedulerFunc func()

func (f SchedulerFunc) Schedule() { f() }
func (f SchedulerFunc) Cancel()   {}

// Coalescer folds any number of Request calls arriving between display
// refreshes into exactly one invocation of the recompute pass. It is
// driven cooperatively: the host calls Tick once per refresh, and the
// Coalescer runs the pass only when at least one Request occurred since
// the previous tick. An idle Coalescer schedules no wakeups at all.
type Coalescer struct {
	sched   Scheduler
	run     func()
	pending bool
	stopped bool
}

// NewCoalescer returns a running Coalescer that invokes run from Tick.
// Both arguments are required; passing nil is a wiring bug and panics.
func NewCoalescer(sched Scheduler, run func()) *Coalescer {
	if sched == nil || run == nil {
		panic("frame: NewCoalescer requires a scheduler and a run function")
	}
	return &Coalescer{sched: sched, run: run}
}

// Request asks for one recompute pass at the next refresh. Any number of
// calls before that refresh coalesce into a single pass. Requests made
// while the Coalescer is stopped are dropped.
func (c *Coalescer) Request() {
	if c.stopped || c.pending {
		return
	}
	c.pending = true
	c.sched.Schedule()
}

// Tick runs the pass if one was requested. The pending flag is cleared
// before the pass runs, so a Request issued from inside the pass
// schedules one genuinely new wakeup rather than looping within the
// same tick.
func (c *Coalescer) Tick() {
	if c.stopped || !c.pending {
		return
	}
	c.pending = false
	c.run()
}

// Stop drops any pending pass, cancels its wakeup, and makes subsequent
// Requests inert until Start is called.
func (c *Coalescer) Stop() {
	if c.pending {
		c.sched.Cancel()
	}
	c.pending = false
	c.stopped = true
}

// Start re-enables a stopped Coalescer. Starting a running Coalescer
// does nothing.
func (c *Coalescer) Start() {
	c.stopped = false
}
