package collections

// OrderedSet is a set that remembers insertion order. Rule
// continuation uses it to union selector lists without reordering or
// duplicating selectors.
type OrderedSet[T comparable] struct {
	seen  map[T]struct{}
	items []T
}

// NewOrderedSet creates an OrderedSet with the given initial values.
func NewOrderedSet[T comparable](vs ...T) *OrderedSet[T] {
	s := &OrderedSet[T]{seen: map[T]struct{}{}}
	s.Add(vs...)
	return s
}

// Add appends values not already present, keeping first-seen order.
func (s *OrderedSet[T]) Add(vs ...T) {
	for _, v := range vs {
		if _, ok := s.seen[v]; ok {
			continue
		}
		s.seen[v] = struct{}{}
		s.items = append(s.items, v)
	}
}

// Has checks if the set contains the given value.
func (s *OrderedSet[T]) Has(v T) bool {
	_, ok := s.seen[v]
	return ok
}

// Len returns the number of values in the set.
func (s *OrderedSet[T]) Len() int {
	return len(s.items)
}

// Members returns the values in insertion order. The slice is shared;
// callers must not mutate it.
func (s *OrderedSet[T]) Members() []T {
	return s.items
}
