// Package util provides a collection of domain-agnostic utility functions and cross-platform helpers.
package util

// Stack is a generic LIFO used for navigation history.
type Stack[T any] struct {
	items []T
}

// Push places item on top of the stack.
func (s *Stack[T]) Push(item T) {
	s.items = append(s.items, item)
}

// Pop removes and returns the top item, or the zero value when empty.
func (s *Stack[T]) Pop() (item T) {
	if len(s.items) == 0 {
		return
	}
	last := len(s.items) - 1
	item, s.items = s.items[last], s.items[:last]
	return
}

// Peek returns the top item without removing it, or the zero value when empty.
func (s *Stack[T]) Peek() (item T) {
	if len(s.items) > 0 {
		item = s.items[len(s.items)-1]
	}
	return
}

// Items returns the stack contents from bottom to top.
func (s *Stack[T]) Items() []T {
	return append([]T(nil), s.items...)
}

// Len reports the number of stacked items.
func (s *Stack[T]) Len() int {
	return len(s.items)
}

// Clear empties the stack.
func (s *Stack[T]) Clear() {
	s.items = nil
}
