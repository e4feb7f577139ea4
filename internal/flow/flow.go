// Package flow models the portal's client-side navigation rules:
// single-choice selection gates, lazily loaded portal tabs, and the
// per-screen pending-operation guard.
package flow

// Selection is a single-choice gate. Continue is allowed only while a
// choice is set; clearing the choice re-disables it.
type Selection struct {
	id string
}

// Set records the chosen id.
func (s *Selection) Set(id string) {
	s.id = id
}

// Clear removes the current choice.
func (s *Selection) Clear() {
	s.id = ""
}

// ID returns the current choice, empty when none.
func (s *Selection) ID() string {
	return s.id
}

// CanContinue reports whether the continue action is enabled.
func (s *Selection) CanContinue() bool {
	return s.id != ""
}

// Tab identifies one of the portal tabs.
type Tab string

const (
	TabStudents  Tab = "students"
	TabCalendar  Tab = "calendar"
	TabDocuments Tab = "documents"
)

// Tabs tracks which portal tabs have loaded their entity list for the
// current class. A tab loads on first activation and again whenever the
// class changes.
type Tabs struct {
	classID string
	loaded  map[Tab]bool
}

// NewTabs starts a tab set for a class with nothing loaded.
func NewTabs(classID string) *Tabs {
	return &Tabs{classID: classID, loaded: make(map[Tab]bool)}
}

// SetClass switches the tab set to another class, invalidating every
// loaded tab. Setting the same class is a no-op.
func (t *Tabs) SetClass(classID string) {
	if classID == t.classID {
		return
	}
	t.classID = classID
	t.loaded = make(map[Tab]bool)
}

// Activate marks a tab active and reports whether its list must be
// fetched.
func (t *Tabs) Activate(tab Tab) bool {
	if t.loaded[tab] {
		return false
	}
	t.loaded[tab] = true
	return true
}

// Guard is the single pending-operation latch for a screen. It only
// tracks that an operation is in flight; it deliberately does not
// de-duplicate overlapping submissions, but gives later hardening one
// place to do so.
type Guard struct {
	busy bool
}

// Begin marks an operation in flight and reports whether one already was.
func (g *Guard) Begin() bool {
	was := g.busy
	g.busy = true
	return !was
}

// Done clears the latch.
func (g *Guard) Done() {
	g.busy = false
}

// Busy reports whether an operation is in flight.
func (g *Guard) Busy() bool {
	return g.busy
}
