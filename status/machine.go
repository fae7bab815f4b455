package status

// Change describes one applied transition.
type Change struct {
	From, To Status
}

// Machine is the only writer of the current Status. It is not safe for
// concurrent use; callers serialize access on their own control goroutine.
type Machine struct {
	current   Status
	observers []func(Change)
}

// NewMachine returns a machine in Unknown.
func NewMachine() *Machine {
	return &Machine{current: Unknown}
}

// Current returns the active status.
func (m *Machine) Current() Status {
	return m.current
}

// Observe registers fn. Observers are called synchronously, in registration
// order, after every applied change.
func (m *Machine) Observe(fn func(Change)) {
	m.observers = append(m.observers, fn)
}

// Request moves the machine to the given status. Requesting the current
// status is a no-op and notifies nobody. Illegal edges leave the state
// unchanged and return an *InvalidTransitionError.
func (m *Machine) Request(to Status) error {
	from := m.current
	if from == to {
		return nil
	}

	if !CanTransition(from, to) {
		return &InvalidTransitionError{From: from, To: to}
	}

	m.apply(from, to)
	return nil
}

// Reset forces the machine back into Unknown regardless of the table.
func (m *Machine) Reset() {
	if m.current == Unknown {
		return
	}
	m.apply(m.current, Unknown)
}

func (m *Machine) apply(from, to Status) {
	m.current = to
	change := Change{From: from, To: to}
	for _, fn := range m.observers {
		fn(change)
	}
}
