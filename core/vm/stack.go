package vm

import (
	"sync"

	"github.com/holiman/uint256"
)

// maxStackDepth is the maximum number of Words a single frame's stack may
// hold at once.
const maxStackDepth = 1024

// stack is the EVM's 256-bit-word operand stack. It grows from index 0 and
// Push appends to the end, matching the teacher's convention that the top of
// stack is the last element of the backing slice.
type stack struct {
	data []*Word
}

var stackPool = sync.Pool{
	New: func() any {
		return &stack{data: make([]*Word, 0, 16)}
	},
}

func newStack() *stack {
	return stackPool.Get().(*stack)
}

func returnStack(s *stack) {
	s.data = s.data[:0]
	stackPool.Put(s)
}

func (s *stack) Len() int {
	return len(s.data)
}

func (s *stack) push(d *Word) {
	s.data = append(s.data, d)
}

func (s *stack) pop() (ret Word) {
	n := len(s.data) - 1
	ret = *s.data[n]
	s.data = s.data[:n]
	return
}

// peek returns the top of stack without removing it.
func (s *stack) peek() *Word {
	return s.data[len(s.data)-1]
}

// Back returns the n'th element from the top, where Back(0) is the top.
func (s *stack) Back(n int) *Word {
	return s.data[len(s.data)-n-1]
}

func (s *stack) swap(n int) {
	top := len(s.data) - 1
	s.data[top], s.data[top-n] = s.data[top-n], s.data[top]
}

func (s *stack) dup(n int) {
	s.push(new(uint256.Int).Set(s.Back(n - 1)))
}

// Data returns the raw backing slice, bottom first, for tracing.
func (s *stack) Data() []*Word {
	return s.data
}
