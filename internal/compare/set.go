// Package compare implements the bounded side-by-side comparison set. The set
// is a plain value owned by the calling session layer: Add and Remove return
// a new set and never touch process-wide state, so the bound and the
// no-duplicate rule are enforceable in one place and trivially testable.
package compare

// MaxEntries bounds the number of quotes a buyer can view side by side.
const MaxEntries = 3

// Entry identifies one quote in the comparison set. Two entries collide when
// they reference the same provider for the same vehicle.
type Entry struct {
	VehicleID  string `json:"vehicle_id"`
	ProviderID string `json:"provider_id"`
}

// Set is an ordered collection of at most MaxEntries distinct entries.
type Set struct {
	Entries []Entry `json:"entries"`
}

// Contains reports whether e is already in the set.
func (s Set) Contains(e Entry) bool {
	for _, have := range s.Entries {
		if have == e {
			return true
		}
	}
	return false
}

// Add returns the set with e appended. It is a no-op when e is already
// present or the set is full; callers detect the no-op by comparing sizes.
func Add(s Set, e Entry) Set {
	if len(s.Entries) >= MaxEntries || s.Contains(e) {
		return s
	}
	out := Set{Entries: make([]Entry, 0, len(s.Entries)+1)}
	out.Entries = append(out.Entries, s.Entries...)
	out.Entries = append(out.Entries, e)
	return out
}

// Remove returns the set without e, preserving order. No-op when e is absent.
func Remove(s Set, e Entry) Set {
	if !s.Contains(e) {
		return s
	}
	out := Set{Entries: make([]Entry, 0, len(s.Entries)-1)}
	for _, have := range s.Entries {
		if have != e {
			out.Entries = append(out.Entries, have)
		}
	}
	return out
}
