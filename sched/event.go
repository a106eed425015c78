package sched

// Event is a notification point tasks can wait on. Notify is a delta
// notification: waiters run in the next delta cycle of the current time step.
type Event struct {
	k       *Kernel
	name    string
	waiters []waiter
	pending bool
}

type waiter struct {
	t     *Task
	token uint64
}

func (w waiter) live() bool {
	return !w.t.done && w.t.token == w.token
}

// NewEvent creates an event owned by the kernel.
func (k *Kernel) NewEvent(name string) *Event {
	return &Event{k: k, name: name}
}

func (e *Event) Name() string { return e.name }

// Notify schedules the event for the next delta cycle. Multiple notifies
// within one delta collapse into one.
func (e *Event) Notify() {
	if e.pending {
		return
	}
	e.pending = true
	e.k.notified = append(e.k.notified, e)
}

func (e *Event) add(w waiter) {
	live := e.waiters[:0]
	for _, o := range e.waiters {
		if o.live() {
			live = append(live, o)
		}
	}
	e.waiters = append(live, w)
}

func (e *Event) trigger() {
	e.pending = false
	waiters := e.waiters
	e.waiters = nil
	for _, w := range waiters {
		e.k.wake(w, e)
	}
}
