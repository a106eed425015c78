package sched

import "runtime"

// Task is a cooperatively scheduled line of execution. Its methods may only be
// called from the task's own function.
type Task struct {
	k      *Kernel
	name   string
	resume chan struct{}

	token    uint64
	wokenBy  *Event
	done     bool
	panicked any
}

// Spawn creates a task that starts in the next delta cycle. It may be called
// from another task or from outside the kernel between runs.
func (k *Kernel) Spawn(name string, fn func(t *Task)) *Task {
	t := &Task{
		k:      k,
		name:   name,
		resume: make(chan struct{}),
	}
	k.tasks[t] = struct{}{}
	go t.main(fn)
	k.runnable = append(k.runnable, t)
	return t
}

func (t *Task) main(fn func(t *Task)) {
	<-t.resume
	defer func() {
		if r := recover(); r != nil {
			t.panicked = r
		}
		t.done = true
		t.k.yield <- struct{}{}
	}()
	if t.k.killed {
		return
	}
	fn(t)
}

func (t *Task) Name() string    { return t.name }
func (t *Task) Kernel() *Kernel { return t.k }
func (t *Task) Now() Time       { return t.k.now }

// Done reports whether the task function has returned.
func (t *Task) Done() bool { return t.done }

func (t *Task) suspend() {
	k := t.k
	if k.killed {
		runtime.Goexit()
	}
	k.yield <- struct{}{}
	<-t.resume
	if k.killed {
		runtime.Goexit()
	}
}

// Wait suspends until e is triggered.
func (t *Task) Wait(e *Event) {
	e.add(waiter{t: t, token: t.token})
	t.suspend()
}

// WaitPosedge suspends until the next rising clock edge.
func (t *Task) WaitPosedge() { t.Wait(t.k.clk.posedge) }

// WaitNegedge suspends until the next falling clock edge.
func (t *Task) WaitNegedge() { t.Wait(t.k.clk.negedge) }

// WaitCycles suspends for n rising clock edges.
func (t *Task) WaitCycles(n int) {
	for i := 0; i < n; i++ {
		t.WaitPosedge()
	}
}

// WaitFor suspends for d. A zero duration yields for one delta cycle.
func (t *Task) WaitFor(d Time) {
	t.arm(d, waiter{t: t, token: t.token})
	t.suspend()
}

// WaitTimeout suspends until e is triggered or d has elapsed, whichever
// comes first. It reports whether e woke the task.
func (t *Task) WaitTimeout(d Time, e *Event) bool {
	w := waiter{t: t, token: t.token}
	e.add(w)
	t.arm(d, w)
	t.suspend()
	return t.wokenBy == e
}

func (t *Task) arm(d Time, w waiter) {
	k := t.k
	if d == 0 {
		k.deltaWake = append(k.deltaWake, w)
		return
	}
	k.schedule(k.newTimerEvent(k.now+d, w))
}
