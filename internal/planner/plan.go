package planner

// Plan is the materialized invalidation output for one content change: the
// deduplicated path and tag sets to purge. Plans are built fresh per event
// and never persisted.
type Plan struct {
	Paths []string
	Tags  []string
}

// Empty reports whether the plan carries nothing to invalidate. An empty
// plan is valid; dispatchers skip it without error.
func (p Plan) Empty() bool {
	return len(p.Paths) == 0 && len(p.Tags) == 0
}

// stringSet deduplicates while preserving insertion order so plans stay
// deterministic for tests and debug output.
type stringSet struct {
	seen   map[string]struct{}
	values []string
}

func newStringSet() *stringSet {
	return &stringSet{seen: make(map[string]struct{})}
}

func (s *stringSet) add(value string) {
	if value == "" {
		return
	}
	if _, ok := s.seen[value]; ok {
		return
	}
	s.seen[value] = struct{}{}
	s.values = append(s.values, value)
}

func (s *stringSet) addAll(values []string) {
	for _, value := range values {
		s.add(value)
	}
}

func (s *stringSet) slice() []string {
	return s.values
}
