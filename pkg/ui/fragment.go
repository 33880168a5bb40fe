package ui

// Fragment describes one fragment of the foreground activity, as reported
// by the host's fragment manager accessor. Only the dual-fragment merge
// patterns consume these.
type Fragment struct {
	ID          string
	ContainerID string
	Class       string
	View        *View // root view of the fragment, nil when not attached
	Active      bool
	Hidden      bool
	Detached    bool
}

// Showing reports whether the fragment is attached and visible.
func (f *Fragment) Showing() bool {
	return f.Active && !f.Hidden && !f.Detached && f.View != nil
}

// FragmentManager exposes the fragments of the foreground activity.
type FragmentManager interface {
	// ByPredicate returns fragments matching pred.
	ByPredicate(pred func(*Fragment) bool) []*Fragment
	// ByID returns the fragment with the given id, or nil.
	ByID(id string) *Fragment
	// Active returns the active fragments.
	Active() []*Fragment
}

// StaticFragments is a FragmentManager over a fixed list, used by hosts
// that snapshot fragment state alongside the UI dump, and by tests.
type StaticFragments []*Fragment

// ByPredicate implements FragmentManager.
func (s StaticFragments) ByPredicate(pred func(*Fragment) bool) []*Fragment {
	var out []*Fragment
	for _, f := range s {
		if pred(f) {
			out = append(out, f)
		}
	}
	return out
}

// ByID implements FragmentManager.
func (s StaticFragments) ByID(id string) *Fragment {
	for _, f := range s {
		if f.ID == id {
			return f
		}
	}
	return nil
}

// Active implements FragmentManager.
func (s StaticFragments) Active() []*Fragment {
	return s.ByPredicate(func(f *Fragment) bool { return f.Active })
}
