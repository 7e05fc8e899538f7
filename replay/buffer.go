// Package replay implements the experience-replay buffer used by the agent:
// a fixed-capacity FIFO store of environment transitions with uniform
// random sampling.
package replay

import (
	"errors"
	"fmt"
	"math/rand"
)

// ErrInsufficientData is returned when a sample asks for more transitions
// than the buffer currently holds.
var ErrInsufficientData = errors.New("replay: not enough transitions buffered")

// Transition is one observed (state, action, next state, reward, done)
// record. Transitions are immutable once stored; the buffer copies the
// state slices on insert.
type Transition struct {
	State     []float64
	Action    int
	NextState []float64
	Reward    float64
	Done      bool
}

// Batch is the separated form of a sampled batch: five parallel slices
// aligned by index, the shape a gradient step consumes.
type Batch struct {
	States     [][]float64
	Actions    []int
	NextStates [][]float64
	Rewards    []float64
	Dones      []bool
}

// Buffer is a bounded FIFO store of transitions backed by a pre-allocated
// ring: once full, each insert evicts the oldest entry. Not safe for
// concurrent use; the training loop owns it exclusively.
type Buffer struct {
	slots []Transition
	next  int // write cursor
	size  int
	rng   *rand.Rand
}

// NewBuffer creates a buffer holding at most capacity transitions. The rng
// drives sampling and must not be shared concurrently.
func NewBuffer(capacity int, rng *rand.Rand) *Buffer {
	if capacity < 1 {
		panic(fmt.Sprintf("replay: capacity must be positive, got %d", capacity))
	}
	return &Buffer{
		slots: make([]Transition, capacity),
		rng:   rng,
	}
}

// Add appends one transition, evicting the oldest when at capacity.
// State slices are copied so later mutation by the caller cannot reach
// stored records. Always succeeds, O(1).
func (b *Buffer) Add(t Transition) {
	t.State = append([]float64(nil), t.State...)
	t.NextState = append([]float64(nil), t.NextState...)

	b.slots[b.next] = t
	b.next = (b.next + 1) % len(b.slots)
	if b.size < len(b.slots) {
		b.size++
	}
}

// Len returns the current occupancy, bounded by capacity.
func (b *Buffer) Len() int { return b.size }

// Cap returns the configured capacity.
func (b *Buffer) Cap() int { return len(b.slots) }

// Sample draws k distinct transitions uniformly at random without
// replacement. The returned order carries no temporal meaning. Fails with
// ErrInsufficientData when k exceeds the current occupancy.
func (b *Buffer) Sample(k int) ([]Transition, error) {
	idx, err := b.sampleIndexes(k)
	if err != nil {
		return nil, err
	}

	out := make([]Transition, k)
	for i, j := range idx {
		out[i] = b.slots[j]
	}
	return out, nil
}

// SampleBatch draws k transitions like Sample but returns them in the
// separated parallel-slice form.
func (b *Buffer) SampleBatch(k int) (Batch, error) {
	idx, err := b.sampleIndexes(k)
	if err != nil {
		return Batch{}, err
	}

	batch := Batch{
		States:     make([][]float64, k),
		Actions:    make([]int, k),
		NextStates: make([][]float64, k),
		Rewards:    make([]float64, k),
		Dones:      make([]bool, k),
	}
	for i, j := range idx {
		t := b.slots[j]
		batch.States[i] = t.State
		batch.Actions[i] = t.Action
		batch.NextStates[i] = t.NextState
		batch.Rewards[i] = t.Reward
		batch.Dones[i] = t.Done
	}
	return batch, nil
}

// sampleIndexes picks k distinct slot indexes via a partial Fisher-Yates
// shuffle over the occupied range.
func (b *Buffer) sampleIndexes(k int) ([]int, error) {
	if k > b.size {
		return nil, fmt.Errorf("%w: want %d, have %d", ErrInsufficientData, k, b.size)
	}

	idx := make([]int, b.size)
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < k; i++ {
		j := i + b.rng.Intn(b.size-i)
		idx[i], idx[j] = idx[j], idx[i]
	}
	return idx[:k], nil
}
