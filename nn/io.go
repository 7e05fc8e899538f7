package nn

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrModelNotFound means the path did not resolve to valid saved
	// parameters (missing, unreadable or corrupt file).
	ErrModelNotFound = errors.New("nn: model not found")

	// ErrConfigMismatch means the saved parameters were produced by a
	// different architecture than the one configured.
	ErrConfigMismatch = errors.New("nn: saved model does not match configured architecture")
)

// snapshot is the on-disk form of a network: layer widths plus row-major
// weight and bias data per layer.
type snapshot struct {
	Sizes   []int       `json:"sizes"`
	Weights [][]float64 `json:"weights"`
	Biases  [][]float64 `json:"biases"`
}

// Save writes the network's parameters to path as JSON.
func (n *Network) Save(path string) error {
	snap := snapshot{Sizes: n.Sizes()}
	for l := range n.weights {
		raw := n.weights[l].RawMatrix()
		snap.Weights = append(snap.Weights, append([]float64(nil), raw.Data...))
		snap.Biases = append(snap.Biases, append([]float64(nil), n.biases[l].RawVector().Data...))
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal model: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write model: %w", err)
	}
	return nil
}

// Load reads saved parameters from path and returns a network built from
// them. sizes is the architecture the caller expects; a saved model with
// different layer widths fails with ErrConfigMismatch rather than being
// silently adapted.
func Load(path string, sizes []int) (*Network, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrModelNotFound, path, err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrModelNotFound, path, err)
	}
	if len(snap.Sizes) < 2 || len(snap.Weights) != len(snap.Sizes)-1 || len(snap.Biases) != len(snap.Sizes)-1 {
		return nil, fmt.Errorf("%w: %s: malformed snapshot", ErrModelNotFound, path)
	}

	if !equalSizes(snap.Sizes, sizes) {
		return nil, fmt.Errorf("%w: saved %v, configured %v", ErrConfigMismatch, snap.Sizes, sizes)
	}

	n := &Network{
		sizes:   append([]int(nil), snap.Sizes...),
		weights: make([]*mat.Dense, len(snap.Sizes)-1),
		biases:  make([]*mat.VecDense, len(snap.Sizes)-1),
	}
	for l := 0; l < len(snap.Sizes)-1; l++ {
		rows, cols := snap.Sizes[l+1], snap.Sizes[l]
		if len(snap.Weights[l]) != rows*cols || len(snap.Biases[l]) != rows {
			return nil, fmt.Errorf("%w: %s: layer %d has wrong parameter count", ErrModelNotFound, path, l)
		}
		n.weights[l] = mat.NewDense(rows, cols, append([]float64(nil), snap.Weights[l]...))
		n.biases[l] = mat.NewVecDense(rows, append([]float64(nil), snap.Biases[l]...))
	}
	return n, nil
}
