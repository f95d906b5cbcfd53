package buffer

import (
	"github.com/KoltIP/runtime/hostabi"
	"github.com/KoltIP/runtime/internal/wasm"
)

// Stack is an ordered sequence of Buffers with logical depth d >= 1. The
// buffer at position d-1 is the current target of all appends (§3/§4.B).
// Slot 0 (the base buffer) is never popped.
type Stack struct {
	slots    []*Buffer
	depth    int
	capacity int
	enc      hostabi.Encoder
}

// NewStack constructs a Stack with one base buffer already pushed
// (depth == 1), each slot allocated on demand with the given capacity.
func NewStack(capacity int, enc hostabi.Encoder) *Stack {
	s := &Stack{capacity: capacity, enc: enc}
	s.slots = append(s.slots, New(capacity, enc))
	s.depth = 1
	return s
}

// Current returns the buffer at the top of the stack.
func (s *Stack) Current() *Buffer {
	return s.slots[s.depth-1]
}

// Size returns the size of the current buffer.
func (s *Stack) Size() int {
	return s.Current().Size()
}

// Depth returns the current logical depth (>= 1).
func (s *Stack) Depth() int {
	return s.depth
}

// Push begins a nested region: it allocates a fresh buffer (or reuses the
// next slot if one was already allocated by a previous push/pop cycle)
// and increments depth.
func (s *Stack) Push() *Buffer {
	if s.depth == len(s.slots) {
		s.slots = append(s.slots, New(s.capacity, s.enc))
	} else {
		s.slots[s.depth].Clear()
	}
	top := s.slots[s.depth]
	s.depth++
	return top
}

// Pop ends the current nested region. If writeLengthPrefixedToParent is
// true, the popped buffer's length is written as ULEB128 followed by its
// bytes into the now-current (parent) buffer. Otherwise the popped bytes
// are returned verbatim to the caller. Popping the base slot (depth == 1)
// fails with ErrStackEmpty.
func (s *Stack) Pop(writeLengthPrefixedToParent bool) ([]byte, error) {
	if s.depth <= 1 {
		return nil, wasm.ErrStackEmpty
	}
	popped := s.slots[s.depth-1]
	s.depth--
	body := popped.Bytes()
	if !writeLengthPrefixedToParent {
		return body, nil
	}
	parent := s.Current()
	if _, err := parent.AppendULeb(uint64(len(body))); err != nil {
		return nil, err
	}
	if _, err := parent.AppendBytes(body); err != nil {
		return nil, err
	}
	return body, nil
}

// Clear resets the stack to depth 1 with an empty base buffer, keeping
// allocated slots for reuse by subsequent compilations.
func (s *Stack) Clear() {
	for _, slot := range s.slots {
		slot.Clear()
	}
	s.depth = 1
}
