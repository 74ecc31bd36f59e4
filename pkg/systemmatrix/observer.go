package systemmatrix

import "sort"

// OnChange registers fn to be called after every committed edit or undo.
// The returned function removes the registration.
func (m *Matrix) OnChange(fn func()) (cancel func()) {
	if m.observers == nil {
		return func() {}
	}
	id := m.nextObserver
	m.nextObserver++
	m.observers[id] = fn
	return func() { delete(m.observers, id) }
}

// notify calls the observers in registration order.
func (m *Matrix) notify() {
	ids := make([]int, 0, len(m.observers))
	for id := range m.observers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		if fn, ok := m.observers[id]; ok {
			fn()
		}
	}
}
