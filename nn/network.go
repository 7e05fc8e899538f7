// Package nn implements the small feed-forward value network the agent
// trains: ReLU hidden layers, linear output, Huber loss with clipped
// gradients, plain SGD. Weights live in gonum matrices; the online and
// target copies of a network never share storage.
package nn

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Network is a multi-layer perceptron mapping a state vector to one value
// per action. Not safe for concurrent mutation; the training loop owns the
// online copy and the target copy is only written by a hard sync.
type Network struct {
	sizes   []int        // layer widths: input, hidden..., output
	weights []*mat.Dense // weights[l] is sizes[l+1] x sizes[l]
	biases  []*mat.VecDense
}

// New creates a network with the given layer widths, initialized with
// He-scaled Gaussian weights drawn from rng and zero biases.
func New(sizes []int, rng *rand.Rand) (*Network, error) {
	if len(sizes) < 2 {
		return nil, fmt.Errorf("nn: need at least input and output layers, got %d", len(sizes))
	}
	for _, s := range sizes {
		if s < 1 {
			return nil, fmt.Errorf("nn: layer widths must be positive, got %v", sizes)
		}
	}

	n := &Network{
		sizes:   append([]int(nil), sizes...),
		weights: make([]*mat.Dense, len(sizes)-1),
		biases:  make([]*mat.VecDense, len(sizes)-1),
	}
	for l := 0; l < len(sizes)-1; l++ {
		rows, cols := sizes[l+1], sizes[l]
		std := math.Sqrt(2.0 / float64(cols))
		data := make([]float64, rows*cols)
		for i := range data {
			data[i] = rng.NormFloat64() * std
		}
		n.weights[l] = mat.NewDense(rows, cols, data)
		n.biases[l] = mat.NewVecDense(rows, nil)
	}
	return n, nil
}

// Sizes returns the layer widths.
func (n *Network) Sizes() []int {
	return append([]int(nil), n.sizes...)
}

// InputSize returns the expected state-vector length.
func (n *Network) InputSize() int { return n.sizes[0] }

// OutputSize returns the number of action values produced.
func (n *Network) OutputSize() int { return n.sizes[len(n.sizes)-1] }

// Forward computes the action values for one state.
func (n *Network) Forward(state []float64) []float64 {
	if len(state) != n.sizes[0] {
		panic(fmt.Sprintf("nn: state length %d, network expects %d", len(state), n.sizes[0]))
	}

	a := mat.NewVecDense(len(state), append([]float64(nil), state...))
	for l := range n.weights {
		z := mat.NewVecDense(n.sizes[l+1], nil)
		z.MulVec(n.weights[l], a)
		z.AddVec(z, n.biases[l])
		if l < len(n.weights)-1 {
			reluInPlace(z.RawVector().Data)
		}
		a = z
	}
	return a.RawVector().Data
}

// Clone returns a deep copy with independently owned parameters.
func (n *Network) Clone() *Network {
	c := &Network{
		sizes:   append([]int(nil), n.sizes...),
		weights: make([]*mat.Dense, len(n.weights)),
		biases:  make([]*mat.VecDense, len(n.biases)),
	}
	for l := range n.weights {
		c.weights[l] = mat.DenseCopyOf(n.weights[l])
		c.biases[l] = mat.VecDenseCopyOf(n.biases[l])
	}
	return c
}

// CopyFrom overwrites this network's parameters with src's (hard sync).
// The two networks must share an architecture; their storage stays
// separate.
func (n *Network) CopyFrom(src *Network) error {
	if !equalSizes(n.sizes, src.sizes) {
		return fmt.Errorf("nn: cannot sync %v from %v", n.sizes, src.sizes)
	}
	for l := range n.weights {
		n.weights[l].Copy(src.weights[l])
		n.biases[l].CopyVec(src.biases[l])
	}
	return nil
}

func equalSizes(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func reluInPlace(v []float64) {
	for i, x := range v {
		if x < 0 {
			v[i] = 0
		}
	}
}
