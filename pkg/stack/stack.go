package stack

type Stack[T any] struct {
	a []T
}

// New creates a new stack holding elm, bottom first
func New[T any](elm ...T) *Stack[T] {
	s := Stack[T]{a: make([]T, 0, len(elm))}
	s.a = append(s.a, elm...)
	return &s
}

// Push adds an element to the top of the stack
func (s *Stack[T]) Push(elm T) {
	s.a = append(s.a, elm)
}

// Pop removes and returns the top element of the stack
func (s *Stack[T]) Pop() (T, bool) {
	var zero T
	if len(s.a) < 1 {
		return zero, false
	}

	elm := s.a[len(s.a)-1]
	s.a = s.a[:len(s.a)-1]

	return elm, true
}

// Peek returns the top element of the stack without removing it
func (s *Stack[T]) Peek() (T, bool) {
	var zero T
	if len(s.a) < 1 {
		return zero, false
	}

	return s.a[len(s.a)-1], true
}

// At returns the element at depth i, 0 being the bottom
func (s *Stack[T]) At(i int) T {
	return s.a[i]
}

// Truncate drops every element at depth n and above
func (s *Stack[T]) Truncate(n int) {
	if n < 0 {
		n = 0
	}
	if n < len(s.a) {
		s.a = s.a[:n]
	}
}

// Get the size of the stack
func (s *Stack[T]) Size() int {
	return len(s.a)
}

// Clone returns an independent copy of the stack
func (s *Stack[T]) Clone() *Stack[T] {
	return New(s.a...)
}

// Array returns a copy of the elements, bottom first
func (s *Stack[T]) Array() []T {
	return append([]T(nil), s.a...)
}
