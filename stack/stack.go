// Package stack
//
// (C) Copyright OrinDB
//
// Original Author: Alex Gaetano Padula
//
// Licensed under the Mozilla Public License, v. 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// https://www.mozilla.org/en-US/MPL/2.0/
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package stack

import (
	"errors"
	"sync"
)

// ErrEmptyContainer is returned by PopOrErr when there is nothing to pop
var ErrEmptyContainer = errors.New("stack is empty")

// Stack is a LIFO container safe for concurrent use.
// The zero value is an empty stack ready to use.
// A Stack must not be copied after first use, use Clone instead.
type Stack[T any] struct {
	mu   sync.RWMutex
	data []T // Top of the stack is the last element
}

// New creates a new empty stack
func New[T any]() *Stack[T] {
	return &Stack[T]{}
}

// Clone returns an independent copy of the stack.
// Elements are copied by assignment while holding a read lock on s.
func (s *Stack[T]) Clone() *Stack[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c := &Stack[T]{}
	if len(s.data) > 0 {
		c.data = make([]T, len(s.data))
		copy(c.data, s.data)
	}

	return c
}

// CloneFunc is like Clone but copies every element through fn,
// for element types that need a deep copy.
func (s *Stack[T]) CloneFunc(fn func(T) T) *Stack[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c := &Stack[T]{}
	if len(s.data) > 0 {
		c.data = make([]T, len(s.data))
		for i, v := range s.data {
			c.data[i] = fn(v)
		}
	}

	return c
}

// Push adds a value to the top of the stack
func (s *Stack[T]) Push(value T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = append(s.data, value)
}

// Emplace adds a value to the top of the stack, same as Push
func (s *Stack[T]) Emplace(value T) {
	s.Push(value)
}

// Pop removes the top value and returns it boxed in a new pointer.
// It returns nil, false if the stack is empty.
func (s *Stack[T]) Pop() (*T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.take()
	if !ok {
		return nil, false
	}

	return &v, true
}

// PopInto removes the top value and writes it to out.
// If the stack is empty out is left untouched and false is returned.
// A nil out discards the value.
func (s *Stack[T]) PopInto(out *T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.take()
	if !ok {
		return false
	}

	if out != nil {
		*out = v
	}

	return true
}

// PopOrErr is like Pop but returns ErrEmptyContainer if the stack is empty
func (s *Stack[T]) PopOrErr() (*T, error) {
	v, ok := s.Pop()
	if !ok {
		return nil, ErrEmptyContainer
	}

	return v, nil
}

// Empty reports whether the stack holds no values.
// The result may be stale as soon as it is returned.
func (s *Stack[T]) Empty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.data) == 0
}

// Len returns the number of values in the stack
func (s *Stack[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.data)
}

// take removes the top value, the caller must hold the write lock
func (s *Stack[T]) take() (T, bool) {
	var zero T

	n := len(s.data)
	if n == 0 {
		return zero, false
	}

	v := s.data[n-1]
	s.data[n-1] = zero // Clear the slot, the stack keeps no alias of v
	s.data = s.data[:n-1]

	return v, true
}
