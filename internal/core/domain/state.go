package domain

import "strconv"

// State is the per-invocation context shared by the rules of one run.
// It owns the uniqueness counter for name/ps values and the count of
// escapes that could not be decoded. A State must not be shared between
// concurrent runs.
type State struct {
	counts         map[string]int
	emitted        map[string]struct{}
	decodeFailures int
}

// NewState returns an empty State.
func NewState() *State {
	return &State{
		counts:  make(map[string]int),
		emitted: make(map[string]struct{}),
	}
}

// Unique returns value if it has not been emitted yet, otherwise the first
// value_N (N counted per value) that has not been emitted. The returned
// value is recorded as emitted.
func (s *State) Unique(value string) string {
	if _, seen := s.emitted[value]; !seen {
		s.emitted[value] = struct{}{}
		return value
	}
	for {
		s.counts[value]++
		candidate := value + "_" + strconv.Itoa(s.counts[value])
		if _, seen := s.emitted[candidate]; !seen {
			s.emitted[candidate] = struct{}{}
			return candidate
		}
	}
}

// Emitted reports how many distinct values have been recorded.
func (s *State) Emitted() int {
	return len(s.emitted)
}

// RecordDecodeFailure counts an escape sequence left untouched.
func (s *State) RecordDecodeFailure() {
	s.decodeFailures++
}

// DecodeFailures returns the number of escape sequences left untouched.
func (s *State) DecodeFailures() int {
	return s.decodeFailures
}
