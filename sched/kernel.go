package sched

import (
	"github.com/pkg/errors"
	"github.com/sarchlab/akita/v4/sim"
)

const maxDeltaCycles = 10000

// CommitHook observes every committed signal change.
type CommitHook func(name string, at Time, value any)

type timedEvent interface {
	sim.Event
	when() Time
}

type edgeEvent struct {
	*sim.EventBase
	at     Time
	rising bool
}

func (e *edgeEvent) when() Time { return e.at }

type timerEvent struct {
	*sim.EventBase
	at Time
	w  waiter
}

func (e *timerEvent) when() Time { return e.at }

type updater interface {
	commit()
}

// Kernel owns the clock, the akita engine and every task.
type Kernel struct {
	engine   sim.Engine
	period   Time
	now      Time
	end      Time
	clk      *Signal[bool]
	nextEdge uint64

	tasks     map[*Task]struct{}
	runnable  []*Task
	updates   []updater
	notified  []*Event
	deltaWake []waiter
	deferred  []timedEvent

	yield   chan struct{}
	stopped bool
	killed  bool
	err     error
	hooks   []CommitHook
	deltas  uint64
}

// NewKernel creates a kernel with a free-running clock of the given period.
// The first rising edge is at time zero.
func NewKernel(period Time) (*Kernel, error) {
	if period < 2 || period%2 != 0 {
		return nil, errors.Errorf("sched: clock period %dps must be even and at least 2ps", period)
	}
	k := &Kernel{
		engine: sim.NewSerialEngine(),
		period: period,
		tasks:  make(map[*Task]struct{}),
		yield:  make(chan struct{}),
	}
	k.clk = NewSignal(k, "clk", false)
	k.deferred = append(k.deferred, k.newEdgeEvent())
	return k, nil
}

func (k *Kernel) Clock() *Signal[bool] { return k.clk }
func (k *Kernel) Period() Time         { return k.period }
func (k *Kernel) Now() Time            { return k.now }

// Deltas returns the number of delta cycles executed so far.
func (k *Kernel) Deltas() uint64 { return k.deltas }

// Stopped reports whether the last run ended through Stop.
func (k *Kernel) Stopped() bool { return k.stopped }

// Err returns the error that halted the kernel, if any.
func (k *Kernel) Err() error { return k.err }

// OnCommit registers a hook called for every committed signal change.
func (k *Kernel) OnCommit(hook CommitHook) {
	k.hooks = append(k.hooks, hook)
}

// Stop ends the current run once the running delta cycles have settled.
func (k *Kernel) Stop() { k.stopped = true }

// RunCycles advances the simulation by n clock periods.
func (k *Kernel) RunCycles(n uint64) error {
	return k.RunUntil(k.now + Time(n)*k.period)
}

// RunUntil processes every event up to and including end, or until Stop is
// called or a task panics.
func (k *Kernel) RunUntil(end Time) error {
	if k.err != nil {
		return k.err
	}
	if end < k.now {
		return errors.Errorf("sched: cannot run backwards from %dps to %dps", k.now, end)
	}
	k.end = end
	k.stopped = false

	// Each run drains its engine; deferred events go onto a fresh one.
	k.engine = sim.NewSerialEngine()
	pending := k.deferred
	k.deferred = nil
	for _, e := range pending {
		k.schedule(e)
	}

	// Writes and spawns made between runs take effect at the current time.
	k.settle()

	if err := k.engine.Run(); err != nil && k.err == nil {
		k.err = errors.Wrap(err, "sched: engine")
	}
	if k.err != nil {
		return k.err
	}
	if !k.stopped {
		k.now = end
	}
	return nil
}

// Handle implements sim.Handler.
func (k *Kernel) Handle(e sim.Event) error {
	te, ok := e.(timedEvent)
	if !ok {
		return errors.Errorf("sched: unexpected event %T", e)
	}
	if k.stopped || k.err != nil {
		k.deferred = append(k.deferred, te)
		return nil
	}

	k.now = te.when()
	switch e := te.(type) {
	case *edgeEvent:
		k.clk.Write(e.rising)
		k.schedule(k.newEdgeEvent())
	case *timerEvent:
		k.wake(e.w, nil)
	}
	k.settle()
	return nil
}

// Shutdown terminates every live task. The kernel cannot run afterwards.
func (k *Kernel) Shutdown() {
	k.killed = true
	for t := range k.tasks {
		if !t.done {
			t.resume <- struct{}{}
			<-k.yield
		}
		delete(k.tasks, t)
	}
	k.runnable = nil
	if k.err == nil {
		k.err = errors.New("sched: kernel shut down")
	}
}

func (k *Kernel) newEdgeEvent() *edgeEvent {
	n := k.nextEdge
	k.nextEdge++
	at := Time(n) * (k.period / 2)
	return &edgeEvent{
		EventBase: sim.NewEventBase(at.seconds(), k),
		at:        at,
		rising:    n%2 == 0,
	}
}

func (k *Kernel) newTimerEvent(at Time, w waiter) *timerEvent {
	return &timerEvent{
		EventBase: sim.NewEventBase(at.seconds(), k),
		at:        at,
		w:         w,
	}
}

func (k *Kernel) schedule(e timedEvent) {
	if e.when() > k.end {
		k.deferred = append(k.deferred, e)
		return
	}
	k.engine.Schedule(e)
}

func (k *Kernel) wake(w waiter, src *Event) bool {
	if !w.live() {
		return false
	}
	w.t.token++
	w.t.wokenBy = src
	k.runnable = append(k.runnable, w.t)
	return true
}

func (k *Kernel) run(t *Task) {
	if t.done {
		return
	}
	t.resume <- struct{}{}
	<-k.yield
	if t.panicked != nil && k.err == nil {
		k.err = errors.Errorf("sched: task %q panicked: %v", t.name, t.panicked)
	}
	if t.done {
		delete(k.tasks, t)
	}
}

// settle runs delta cycles at the current time until nothing is left to do.
func (k *Kernel) settle() {
	for n := 0; k.err == nil; n++ {
		if n > maxDeltaCycles {
			k.err = errors.Errorf("sched: no convergence after %d delta cycles at %dps", maxDeltaCycles, k.now)
			return
		}

		for len(k.runnable) > 0 && k.err == nil {
			t := k.runnable[0]
			k.runnable = k.runnable[1:]
			k.run(t)
		}
		if k.err != nil {
			return
		}

		if len(k.updates) == 0 && len(k.notified) == 0 && len(k.deltaWake) == 0 {
			return
		}
		k.deltas++

		updates := k.updates
		k.updates = nil
		for _, u := range updates {
			u.commit()
		}
		notified := k.notified
		k.notified = nil
		for _, e := range notified {
			e.trigger()
		}
		wakes := k.deltaWake
		k.deltaWake = nil
		for _, w := range wakes {
			k.wake(w, nil)
		}
	}
}
