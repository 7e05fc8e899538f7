// Package portfolio converts an action sequence and a close-price sequence
// into a realized portfolio-value trajectory.
package portfolio

import (
	"errors"
	"fmt"
)

// ErrLengthMismatch is returned when the action and price sequences do not
// have the same length.
var ErrLengthMismatch = errors.New("portfolio: action and price sequences must have the same length")

// Run replays an action sequence against aligned close prices and returns
// the portfolio-value trajectory, starting from initialBalance.
//
// The position is single-unit and all-in: a BUY converts the entire cash
// value to shares at the current close, a SELL liquidates the entire
// position. Valuation is forward-looking by one bar while a position is
// open: a BUY at bar i is valued at the close of bar i+1, modeling
// execution at the next bar rather than trading on the same bar's own
// close. At the final index no further price exists, so the value is not
// advanced (a BUY on the last bar appends nothing).
//
// The trajectory has one entry per realized valuation event, not one per
// action. Run is deterministic and has no side effects.
func Run(actions []Action, closes []float64, initialBalance float64) ([]float64, error) {
	if len(actions) != len(closes) {
		return nil, fmt.Errorf("%w: %d actions, %d prices", ErrLengthMismatch, len(actions), len(closes))
	}

	values := []float64{initialBalance}
	owns := false
	shares := 0.0
	last := len(actions) - 1

	for i, action := range actions {
		switch {
		case action == Buy && !owns:
			owns = true
			shares = values[len(values)-1] / closes[i]
			if i < last {
				values = append(values, shares*closes[i+1])
			}

		case action == Sell && owns:
			values = append(values, shares*closes[i])
			owns = false
			shares = 0

		case (action == Buy || action == Hold) && owns:
			if i < last {
				values = append(values, shares*closes[i+1])
			}

		case (action == Sell || action == Hold) && !owns:
			values = append(values, values[len(values)-1])

		default:
			return nil, fmt.Errorf("portfolio: unknown action %v at index %d", action, i)
		}
	}

	return values, nil
}

// MaximumReturn computes the final balance of a perfect trader that captures
// every upward close-to-close move and sits out every downward one. It is an
// upper bound on what any action sequence over the same prices can realize.
func MaximumReturn(closes []float64, initialBalance float64) float64 {
	balance := initialBalance
	for i := 0; i+1 < len(closes); i++ {
		if closes[i+1] > closes[i] && closes[i] > 0 {
			balance *= closes[i+1] / closes[i]
		}
	}
	return balance
}
