package recast

// Stack is a growable LIFO buffer reused across the passes of a build step.
type Stack[T any] struct {
	data []T
}

func NewStack[T any](capacity int) *Stack[T] {
	return &Stack[T]{data: make([]T, 0, capacity)}
}

func (s *Stack[T]) Push(value T) {
	s.data = append(s.data, value)
}

func (s *Stack[T]) Pop() T {
	e := s.data[len(s.data)-1]
	s.data = s.data[:len(s.data)-1]
	return e
}

func (s *Stack[T]) Len() int {
	return len(s.data)
}

func (s *Stack[T]) Empty() bool {
	return len(s.data) == 0
}

// Clear empties the stack and keeps the backing storage.
func (s *Stack[T]) Clear() {
	s.data = s.data[:0]
}

func (s *Stack[T]) Index(index int) T {
	return s.data[index]
}

func (s *Stack[T]) SetByIndex(index int, value T) {
	s.data[index] = value
}

func (s *Stack[T]) Data() []T {
	return s.data
}
