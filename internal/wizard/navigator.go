package wizard

import "sync"

// Navigator owns the current page. It is safe for concurrent use.
type Navigator struct {
	mu      sync.Mutex
	current Fragment
	history []Fragment
}

// NewNavigator starts at the page named by raw (Welcome if unrecognized).
func NewNavigator(raw string) *Navigator {
	f := ParseFragment(raw)
	return &Navigator{current: f, history: []Fragment{f}}
}

// Current returns the current page.
func (n *Navigator) Current() Fragment {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Go moves to the page named by raw and returns it. No prerequisite step is
// checked.
func (n *Navigator) Go(raw string) Fragment {
	return n.GoTo(ParseFragment(raw))
}

// GoTo moves to f. An invalid f moves to Welcome.
func (n *Navigator) GoTo(f Fragment) Fragment {
	if !f.Valid() {
		f = Welcome
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if f != n.current {
		n.current = f
		n.history = append(n.history, f)
	}
	return f
}

// Next moves to the suggested next page.
func (n *Navigator) Next() Fragment {
	return n.GoTo(n.Current().Next())
}

// Prev moves to the previous page in wizard order.
func (n *Navigator) Prev() Fragment {
	return n.GoTo(n.Current().Prev())
}

// Apply follows a save result. A zero Next leaves the page unchanged.
func (n *Navigator) Apply(r Result) Fragment {
	if r.Next == "" {
		return n.Current()
	}
	return n.GoTo(r.Next)
}

// History returns every page visited, oldest first. Consecutive visits to the
// same page are recorded once.
func (n *Navigator) History() []Fragment {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Fragment, len(n.history))
	copy(out, n.history)
	return out
}
