package sched

// Mutex is a cooperative gate between tasks. Waiters acquire it in the order
// they called Lock. The zero value is unlocked.
type Mutex struct {
	owner *Task
	queue []*Task
}

// Lock acquires the gate, suspending t until it is handed over.
func (m *Mutex) Lock(t *Task) {
	if m.owner == nil {
		m.owner = t
		return
	}
	if m.owner == t {
		panic("sched: recursive Mutex.Lock by task " + t.name)
	}
	m.queue = append(m.queue, t)
	t.suspend()
}

// TryLock acquires the gate only if it is free.
func (m *Mutex) TryLock(t *Task) bool {
	if m.owner != nil {
		return false
	}
	m.owner = t
	return true
}

// Unlock releases the gate and hands it to the longest waiting task.
func (m *Mutex) Unlock(t *Task) {
	if m.owner != t {
		panic("sched: Mutex.Unlock by task " + t.name + " which does not own it")
	}
	m.owner = nil
	for len(m.queue) > 0 {
		next := m.queue[0]
		m.queue = m.queue[1:]
		if next.done {
			continue
		}
		m.owner = next
		next.k.wake(waiter{t: next, token: next.token}, nil)
		return
	}
}

// Locked reports whether a task holds the gate.
func (m *Mutex) Locked() bool { return m.owner != nil }

// Waiting returns the number of tasks queued on the gate.
func (m *Mutex) Waiting() int { return len(m.queue) }
