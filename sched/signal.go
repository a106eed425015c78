package sched

// Signal is a wire with delta-cycle semantics: Write only records the next
// value, Read returns the value committed in the last update phase. A commit
// that changes the value notifies Changed, and for bool signals Posedge or
// Negedge.
type Signal[T comparable] struct {
	k       *Kernel
	name    string
	cur     T
	next    T
	pending bool

	changed *Event
	posedge *Event
	negedge *Event
}

// NewSignal creates a signal holding init.
func NewSignal[T comparable](k *Kernel, name string, init T) *Signal[T] {
	return &Signal[T]{
		k:       k,
		name:    name,
		cur:     init,
		next:    init,
		changed: k.NewEvent(name + ".changed"),
		posedge: k.NewEvent(name + ".posedge"),
		negedge: k.NewEvent(name + ".negedge"),
	}
}

func (s *Signal[T]) Name() string { return s.name }

// Read returns the committed value.
func (s *Signal[T]) Read() T { return s.cur }

// Write sets the value to be committed in the next update phase. The last
// write within a delta cycle wins.
func (s *Signal[T]) Write(v T) {
	s.next = v
	if !s.pending {
		s.pending = true
		s.k.updates = append(s.k.updates, s)
	}
}

func (s *Signal[T]) Changed() *Event { return s.changed }
func (s *Signal[T]) Posedge() *Event { return s.posedge }
func (s *Signal[T]) Negedge() *Event { return s.negedge }

func (s *Signal[T]) commit() {
	s.pending = false
	if s.next == s.cur {
		return
	}
	s.cur = s.next
	s.changed.Notify()
	if b, ok := any(s.cur).(bool); ok {
		if b {
			s.posedge.Notify()
		} else {
			s.negedge.Notify()
		}
	}
	for _, hook := range s.k.hooks {
		hook(s.name, s.k.now, s.cur)
	}
}
