package replay

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBuffer(t *testing.T, capacity int) *Buffer {
	t.Helper()
	return NewBuffer(capacity, rand.New(rand.NewSource(42)))
}

// transition builds a record whose reward doubles as its identity.
func transition(id int) Transition {
	return Transition{
		State:     []float64{float64(id), 0},
		Action:    id % 3,
		NextState: []float64{float64(id), 1},
		Reward:    float64(id),
	}
}

func TestBufferFIFOEviction(t *testing.T) {
	const capacity, inserts = 5, 12

	b := newTestBuffer(t, capacity)
	for i := 0; i < inserts; i++ {
		b.Add(transition(i))
	}

	assert.Equal(t, capacity, b.Len())

	all, err := b.Sample(capacity)
	require.NoError(t, err)

	// Only the newest `capacity` records survive.
	seen := map[float64]bool{}
	for _, tr := range all {
		seen[tr.Reward] = true
		assert.GreaterOrEqual(t, tr.Reward, float64(inserts-capacity))
	}
	assert.Len(t, seen, capacity)
}

func TestBufferLenBelowCapacity(t *testing.T) {
	b := newTestBuffer(t, 10)
	b.Add(transition(0))
	b.Add(transition(1))

	assert.Equal(t, 2, b.Len())
	assert.Equal(t, 10, b.Cap())
}

func TestSampleDistinct(t *testing.T) {
	b := newTestBuffer(t, 20)
	for i := 0; i < 20; i++ {
		b.Add(transition(i))
	}

	for trial := 0; trial < 50; trial++ {
		got, err := b.Sample(8)
		require.NoError(t, err)
		require.Len(t, got, 8)

		seen := map[float64]bool{}
		for _, tr := range got {
			assert.False(t, seen[tr.Reward], "duplicate transition in one batch")
			seen[tr.Reward] = true
		}
	}
}

func TestSampleInsufficientData(t *testing.T) {
	b := newTestBuffer(t, 10)
	b.Add(transition(0))

	_, err := b.Sample(2)
	assert.ErrorIs(t, err, ErrInsufficientData)

	_, err = b.SampleBatch(2)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestSampleBatchAligned(t *testing.T) {
	b := newTestBuffer(t, 10)
	for i := 0; i < 10; i++ {
		tr := transition(i)
		tr.Done = i == 9
		b.Add(tr)
	}

	batch, err := b.SampleBatch(10)
	require.NoError(t, err)

	for i := range batch.Rewards {
		id := batch.Rewards[i]
		assert.Equal(t, []float64{id, 0}, batch.States[i])
		assert.Equal(t, []float64{id, 1}, batch.NextStates[i])
		assert.Equal(t, int(id)%3, batch.Actions[i])
		assert.Equal(t, id == 9, batch.Dones[i])
	}
}

func TestAddCopiesState(t *testing.T) {
	b := newTestBuffer(t, 4)

	state := []float64{1, 2}
	b.Add(Transition{State: state, NextState: []float64{3, 4}})
	state[0] = 99

	got, err := b.Sample(1)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, got[0].State)
}

func TestNewBufferBadCapacity(t *testing.T) {
	assert.Panics(t, func() { NewBuffer(0, rand.New(rand.NewSource(1))) })
}
