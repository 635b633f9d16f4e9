package frame

import "testing"

type countingScheduler struct {
	scheduled int
	canceled  int
}

func (c *countingScheduler) Schedule() { c.scheduled++ }
func (c *countingScheduler) Cancel()   { c.canceled++ }

func TestRequestsCoalesce(t *testing.T) {
	sched := &countingScheduler{}
	passes := 0
	c := NewCoalescer(sched, func() { passes++ })
	for i := 0; i < 50; i++ {
		c.Request()
	}
	if sched.scheduled != 1 {
		t.Errorf("expected 50 requests to schedule exactly 1 wakeup, got %d", sched.scheduled)
	}
	c.Tick()
	if passes != 1 {
		t.Errorf("expected exactly 1 pass, got %d", passes)
	}
	c.Tick()
	if passes != 1 {
		t.Errorf("tick without a request ran a pass, total %d", passes)
	}
}

func TestIdleSchedulesNothing(t *testing.T) {
	sched := &countingScheduler{}
	c := NewCoalescer(sched, func() { t.Error("pass ran without a request") })
	c.Tick()
	c.Tick()
	if sched.scheduled != 0 {
		t.Errorf("idle coalescer scheduled %d wakeups", sched.scheduled)
	}
}

func TestReentrantRequestSchedulesOneMorePass(t *testing.T) {
	sched := &countingScheduler{}
	passes := 0
	var c *Coalescer
	c = NewCoalescer(sched, func() {
		passes++
		if passes == 1 {
			// A pass-driven animation asks for a followup frame.
			c.Request()
			c.Request()
		}
	})
	c.Request()
	c.Tick()
	if passes != 1 {
		t.Fatalf("expected re-request to defer to the next tick, got %d passes", passes)
	}
	if sched.scheduled != 2 {
		t.Errorf("expected the re-request to schedule a genuinely new wakeup, got %d", sched.scheduled)
	}
	c.Tick()
	if passes != 2 {
		t.Errorf("expected exactly one followup pass, got %d total", passes)
	}
	c.Tick()
	if passes != 2 {
		t.Errorf("expected no further passes, got %d total", passes)
	}
}

func TestStopDropsPendingWork(t *testing.T) {
	sched := &countingScheduler{}
	passes := 0
	c := NewCoalescer(sched, func() { passes++ })
	c.Request()
	c.Stop()
	if sched.canceled != 1 {
		t.Errorf("expected stop to cancel the pending wakeup, got %d cancels", sched.canceled)
	}
	c.Tick()
	if passes != 0 {
		t.Errorf("stopped coalescer ran %d passes", passes)
	}
	c.Request()
	c.Tick()
	if passes != 0 {
		t.Errorf("requests while stopped must be inert, ran %d passes", passes)
	}
	c.Start()
	c.Request()
	c.Tick()
	if passes != 1 {
		t.Errorf("restarted coalescer should run again, got %d passes", passes)
	}
}

func TestNewCoalescerPanicsOnNil(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected nil arguments to panic")
		}
	}()
	NewCoalescer(nil, nil)
}
