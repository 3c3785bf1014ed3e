// Package collapse decides how field sections are wrapped: always open,
// toggleable, or mounted but hidden.
package collapse

import "sync"

// Section is the presentation state of one field wrapper.
type Section struct {
	Path       string
	Expanded   bool
	Toggleable bool
	Hidden     bool
	Required   bool
}

// Initial computes the starting state. Root and required fields are always
// expanded; optional fields start collapsed whatever their value.
func Initial(path string, required, hidden bool) Section {
	always := path == "" || required
	return Section{
		Path:       path,
		Expanded:   always,
		Toggleable: !always,
		Hidden:     hidden,
		Required:   required,
	}
}

// Toggle flips an optional section; fixed sections are returned unchanged.
func (s Section) Toggle() Section {
	if s.Toggleable {
		s.Expanded = !s.Expanded
	}
	return s
}

// ShowDescription reports whether the description belongs in the header,
// which is the case while the section body is collapsed.
func (s Section) ShowDescription() bool {
	return !s.Expanded
}

// Tracker remembers user toggles per path for the lifetime of a session so
// re-rendered forms keep their open sections.
type Tracker struct {
	mu       sync.RWMutex
	expanded map[string]bool
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{expanded: make(map[string]bool)}
}

// Set records the expanded flag for path.
func (t *Tracker) Set(path string, expanded bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.expanded[path] = expanded
}

// Apply overlays a recorded toggle on s.
func (t *Tracker) Apply(s Section) Section {
	if t == nil || !s.Toggleable {
		return s
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	if expanded, ok := t.expanded[s.Path]; ok {
		s.Expanded = expanded
	}
	return s
}

// Snapshot copies the recorded toggles.
func (t *Tracker) Snapshot() map[string]bool {
	out := make(map[string]bool)
	if t == nil {
		return out
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	for k, v := range t.expanded {
		out[k] = v
	}
	return out
}
