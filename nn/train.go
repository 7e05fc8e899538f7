package nn

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Huber computes the smooth-L1 loss of a residual with unit transition
// point: quadratic inside [-1, 1], linear outside.
func Huber(d float64) float64 {
	if math.Abs(d) <= 1 {
		return 0.5 * d * d
	}
	return math.Abs(d) - 0.5
}

// huberGrad is the derivative of Huber with respect to the residual.
func huberGrad(d float64) float64 {
	return clamp(d, -1, 1)
}

func clamp(v, lo, hi float64) float64 {
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	default:
		return v
	}
}

// Step performs one SGD update against a batch. For each sample i, the
// value predicted for the taken action actions[i] is pulled toward
// targets[i] under Huber loss. Gradients are averaged over the batch and
// clipped per element to [-clip, clip] before the update.
//
// Step returns the mean batch loss. A non-finite loss aborts the update
// and is returned as an error: continuing on corrupted gradients would
// silently wreck the policy.
func (n *Network) Step(states [][]float64, actions []int, targets []float64, lr, clip float64) (float64, error) {
	if len(states) == 0 {
		return 0, fmt.Errorf("nn: empty batch")
	}
	if len(actions) != len(states) || len(targets) != len(states) {
		return 0, fmt.Errorf("nn: batch misaligned: %d states, %d actions, %d targets",
			len(states), len(actions), len(targets))
	}

	layers := len(n.weights)
	gradW := make([]*mat.Dense, layers)
	gradB := make([]*mat.VecDense, layers)
	for l := 0; l < layers; l++ {
		r, c := n.weights[l].Dims()
		gradW[l] = mat.NewDense(r, c, nil)
		gradB[l] = mat.NewVecDense(r, nil)
	}

	loss := 0.0
	for i, state := range states {
		act := actions[i]
		if act < 0 || act >= n.OutputSize() {
			return 0, fmt.Errorf("nn: action %d out of range [0,%d)", act, n.OutputSize())
		}
		loss += n.accumulate(state, act, targets[i], gradW, gradB)
	}
	loss /= float64(len(states))

	if math.IsNaN(loss) || math.IsInf(loss, 0) {
		return loss, fmt.Errorf("nn: non-finite loss %v, update aborted", loss)
	}

	// Average, clip, apply.
	scale := 1.0 / float64(len(states))
	for l := 0; l < layers; l++ {
		gradW[l].Apply(func(_, _ int, v float64) float64 {
			return clamp(v*scale, -clip, clip)
		}, gradW[l])

		bdata := gradB[l].RawVector().Data
		for i, v := range bdata {
			bdata[i] = clamp(v*scale, -clip, clip)
		}

		var dw mat.Dense
		dw.Scale(-lr, gradW[l])
		n.weights[l].Add(n.weights[l], &dw)

		var db mat.VecDense
		db.ScaleVec(-lr, gradB[l])
		n.biases[l].AddVec(n.biases[l], &db)
	}

	return loss, nil
}

// accumulate runs one forward/backward pass and adds the sample's weight
// and bias gradients into the accumulators. Returns the sample loss.
func (n *Network) accumulate(state []float64, action int, target float64, gradW []*mat.Dense, gradB []*mat.VecDense) float64 {
	if len(state) != n.sizes[0] {
		panic(fmt.Sprintf("nn: state length %d, network expects %d", len(state), n.sizes[0]))
	}

	layers := len(n.weights)

	// Forward pass, keeping each layer's activation. pre[l] holds layer
	// l+1's pre-activation; acts[l] the post-activation input to layer l.
	acts := make([]*mat.VecDense, layers+1)
	pre := make([]*mat.VecDense, layers)
	acts[0] = mat.NewVecDense(len(state), append([]float64(nil), state...))

	for l := 0; l < layers; l++ {
		z := mat.NewVecDense(n.sizes[l+1], nil)
		z.MulVec(n.weights[l], acts[l])
		z.AddVec(z, n.biases[l])
		pre[l] = z

		if l < layers-1 {
			a := mat.VecDenseCopyOf(z)
			reluInPlace(a.RawVector().Data)
			acts[l+1] = a
		} else {
			acts[l+1] = z
		}
	}

	residual := acts[layers].AtVec(action) - target

	// Output delta is zero everywhere except the taken action.
	delta := mat.NewVecDense(n.OutputSize(), nil)
	delta.SetVec(action, huberGrad(residual))

	for l := layers - 1; l >= 0; l-- {
		var outer mat.Dense
		outer.Outer(1, delta, acts[l])
		gradW[l].Add(gradW[l], &outer)
		gradB[l].AddVec(gradB[l], delta)

		if l == 0 {
			break
		}
		prev := mat.NewVecDense(n.sizes[l], nil)
		prev.MulVec(n.weights[l].T(), delta)

		// ReLU gate: gradient only flows through active units.
		pdata := prev.RawVector().Data
		zdata := pre[l-1].RawVector().Data
		for i := range pdata {
			if zdata[i] <= 0 {
				pdata[i] = 0
			}
		}
		delta = prev
	}

	return Huber(residual)
}
