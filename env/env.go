// Package env provides the trading environment the agent interacts with:
// a reset/step loop over a historical bar series that turns actions into
// portfolio-performance rewards.
package env

import (
	"fmt"
	"math"

	talib "github.com/markcheno/go-talib"

	"github.com/rustyeddy/qtrader/market"
	"github.com/rustyeddy/qtrader/portfolio"
)

// Env is the contract the agent requires of an environment.
type Env interface {
	// Reset restarts the episode and returns the initial observation.
	Reset() []float64
	// Step applies one action and returns the next observation, the
	// reward and whether the episode is over.
	Step(action portfolio.Action) (next []float64, reward float64, done bool)
	// ObservationSize is the fixed length of the observation vector.
	ObservationSize() int
}

// Talib indicator periods for the observation features.
const (
	emaFastPeriod = 5
	emaSlowPeriod = 10
	rsiPeriod     = 7

	// warmup is the minimum history length fed to talib so the indicator
	// values at the end of the window are past their unstable lead-in.
	warmup = 2 * emaSlowPeriod
)

// holdPenalty is subtracted from the reward for every step the agent sits
// unchanged past the hold window, nudging it off indefinite inaction.
const holdPenalty = 0.001

// Options configures a Trading environment.
type Options struct {
	Lookback       int     // observation window length in bars
	HoldWindow     int     // steps of inaction tolerated before penalty
	MaxSteps       int     // step budget per episode; <=0 means run to data end
	InitialBalance float64 // starting cash
}

// Trading is a deterministic environment over one bar series. The
// observation is the lookback window of closes normalized to the current
// close, plus an EMA-ratio and an RSI feature. The reward is the change in
// marked portfolio value over the step, scaled by the initial balance.
type Trading struct {
	closes []float64
	opts   Options

	cursor  int // index of the current bar
	step    int
	cash    float64
	shares  float64
	holdAge int
	done    bool
}

// NewTrading builds an environment over the series. The series needs at
// least two bars so at least one step has a next price.
func NewTrading(s market.Series, opts Options) (*Trading, error) {
	if s.Len() < 2 {
		return nil, fmt.Errorf("env: need at least 2 bars, got %d", s.Len())
	}
	if opts.Lookback < 2 {
		return nil, fmt.Errorf("env: lookback must be at least 2, got %d", opts.Lookback)
	}
	if opts.HoldWindow < 1 {
		return nil, fmt.Errorf("env: hold window must be positive, got %d", opts.HoldWindow)
	}
	if opts.InitialBalance <= 0 {
		return nil, fmt.Errorf("env: initial balance must be positive, got %v", opts.InitialBalance)
	}

	t := &Trading{
		closes: s.Closes(),
		opts:   opts,
	}
	t.Reset()
	return t, nil
}

func (t *Trading) ObservationSize() int {
	// lookback closes + EMA ratio + RSI
	return t.opts.Lookback + 2
}

func (t *Trading) Reset() []float64 {
	t.cursor = 0
	t.step = 0
	t.cash = t.opts.InitialBalance
	t.shares = 0
	t.holdAge = 0
	t.done = false
	return t.observe()
}

// Step applies the action at the current bar, advances to the next bar and
// rewards the resulting change in portfolio value. Calling Step after the
// episode is done returns the terminal observation unchanged.
func (t *Trading) Step(action portfolio.Action) ([]float64, float64, bool) {
	if t.done {
		return t.observe(), 0, true
	}

	price := t.closes[t.cursor]
	before := t.value(price)

	switch action {
	case portfolio.Buy:
		if t.shares == 0 {
			t.shares = t.cash / price
			t.cash = 0
			t.holdAge = 0
		} else {
			t.holdAge++
		}
	case portfolio.Sell:
		if t.shares > 0 {
			t.cash = t.shares * price
			t.shares = 0
			t.holdAge = 0
		} else {
			t.holdAge++
		}
	case portfolio.Hold:
		t.holdAge++
	default:
		// Closed enum; anything else is a programming error.
		panic(fmt.Sprintf("env: unknown action %v", action))
	}

	t.cursor++
	t.step++

	after := t.value(t.closes[t.cursor])
	reward := (after - before) / t.opts.InitialBalance
	if t.holdAge > t.opts.HoldWindow {
		reward -= holdPenalty
	}

	if t.cursor >= len(t.closes)-1 {
		t.done = true
	}
	if t.opts.MaxSteps > 0 && t.step >= t.opts.MaxSteps {
		t.done = true
	}

	return t.observe(), reward, t.done
}

// value marks the portfolio at the given price.
func (t *Trading) value(price float64) float64 {
	return t.cash + t.shares*price
}

// observe builds the observation for the current bar. Short history is
// left-padded with the earliest close so the vector length never varies.
func (t *Trading) observe() []float64 {
	L := t.opts.Lookback
	obs := make([]float64, 0, L+2)

	window := t.history(L)
	current := window[len(window)-1]
	for _, c := range window {
		obs = append(obs, c/current-1)
	}

	hist := t.history(warmup)
	fast := lastValid(talib.Ema(hist, emaFastPeriod))
	slow := lastValid(talib.Ema(hist, emaSlowPeriod))
	emaRatio := 0.0
	if slow != 0 {
		emaRatio = fast/slow - 1
	}
	obs = append(obs, emaRatio)

	rsi := lastValid(talib.Rsi(hist, rsiPeriod))
	if math.IsNaN(rsi) {
		rsi = 50
	}
	obs = append(obs, rsi/100)

	return obs
}

// history returns the n closes ending at the current bar, left-padded with
// the first close when the cursor has not seen n bars yet.
func (t *Trading) history(n int) []float64 {
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		j := t.cursor - (n - 1 - i)
		if j < 0 {
			j = 0
		}
		out[i] = t.closes[j]
	}
	return out
}

// lastValid returns the last finite, non-zero-prefix value of a talib
// output series, which pads its unstable lead-in with zeros.
func lastValid(series []float64) float64 {
	for i := len(series) - 1; i >= 0; i-- {
		v := series[i]
		if v != 0 && !math.IsNaN(v) {
			return v
		}
	}
	return 0
}
