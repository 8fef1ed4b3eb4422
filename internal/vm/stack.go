package vm

import "strange/internal/value"

// Stack is an unbounded LIFO of values. Pop and Top on an empty stack
// report ErrStackUnderflow instead of returning a zero value.
type Stack []value.Value

func (s *Stack) Push(v value.Value) {
	*s = append(*s, v)
}

func (s *Stack) Pop() (value.Value, error) {
	n := len(*s)
	if n == 0 {
		return value.Value{}, fail(ErrStackUnderflow, "pop on empty stack")
	}
	v := (*s)[n-1]
	*s = (*s)[:n-1]
	return v, nil
}

// Pop2 pops b then a and returns them in push order (a, b).
func (s *Stack) Pop2() (value.Value, value.Value, error) {
	b, err := s.Pop()
	if err != nil {
		return value.Value{}, value.Value{}, err
	}
	a, err := s.Pop()
	if err != nil {
		return value.Value{}, value.Value{}, err
	}
	return a, b, nil
}

func (s *Stack) Top() (value.Value, error) {
	n := len(*s)
	if n == 0 {
		return value.Value{}, fail(ErrStackUnderflow, "top of empty stack")
	}
	return (*s)[n-1], nil
}

func (s *Stack) Len() int {
	return len(*s)
}
