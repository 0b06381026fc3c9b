package wizard

import "strings"

// Fragment identifies a wizard page.
type Fragment string

const (
	Welcome      Fragment = "welcome"
	Integrations Fragment = "integrations"
	Agents       Fragment = "agents"
	Optimization Fragment = "optimization"
	Recipes      Fragment = "recipes"
	Review       Fragment = "review"
	Launch       Fragment = "launch"
	Dashboard    Fragment = "dashboard"
)

var fragments = []Fragment{
	Welcome, Integrations, Agents, Optimization, Recipes, Review, Launch, Dashboard,
}

var titles = map[Fragment]string{
	Welcome:      "Welcome",
	Integrations: "Integrations",
	Agents:       "Agents",
	Optimization: "Optimization",
	Recipes:      "Recipes",
	Review:       "Review",
	Launch:       "Launch",
	Dashboard:    "Dashboard",
}

// Fragments returns every page in wizard order.
func Fragments() []Fragment {
	out := make([]Fragment, len(fragments))
	copy(out, fragments)
	return out
}

// ParseFragment resolves a location fragment. It accepts "agents",
// "#agents" and "#/agents"; anything unrecognized, including the empty
// string, resolves to Welcome.
func ParseFragment(raw string) Fragment {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "#")
	s = strings.TrimPrefix(s, "/")
	s = strings.ToLower(strings.TrimSuffix(s, "/"))
	f := Fragment(s)
	if f.Valid() {
		return f
	}
	return Welcome
}

// Valid reports whether f names a page.
func (f Fragment) Valid() bool {
	_, ok := titles[f]
	return ok
}

// Title is the page heading.
func (f Fragment) Title() string {
	if t, ok := titles[f]; ok {
		return t
	}
	return string(f)
}

// Index is the zero-based position of f in wizard order, or -1.
func (f Fragment) Index() int {
	for i, g := range fragments {
		if g == f {
			return i
		}
	}
	return -1
}

// Next is the suggested page after f. Dashboard has no successor and
// returns itself.
func (f Fragment) Next() Fragment {
	i := f.Index()
	if i < 0 {
		return Welcome
	}
	if i == len(fragments)-1 {
		return f
	}
	return fragments[i+1]
}

// Prev is the page before f. Welcome returns itself.
func (f Fragment) Prev() Fragment {
	i := f.Index()
	if i <= 0 {
		return Welcome
	}
	return fragments[i-1]
}

// Hash renders f the way it appears in a location bar.
func (f Fragment) Hash() string {
	return "#/" + string(f)
}
