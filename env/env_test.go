package env

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/qtrader/market"
	"github.com/rustyeddy/qtrader/portfolio"
)

func testSeries(t *testing.T, closes ...float64) market.Series {
	t.Helper()
	s := market.Series{Ticker: "TEST"}
	day := time.Date(2016, 1, 4, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		s.Bars = append(s.Bars, market.Bar{
			Date:  day.AddDate(0, 0, i),
			Open:  c,
			High:  c,
			Low:   c,
			Close: c,
		})
	}
	return s
}

func defaultOpts() Options {
	return Options{
		Lookback:       4,
		HoldWindow:     3,
		MaxSteps:       0,
		InitialBalance: 1000,
	}
}

func TestNewTradingValidation(t *testing.T) {
	s := testSeries(t, 100, 101, 102)

	_, err := NewTrading(testSeries(t, 100), defaultOpts())
	assert.Error(t, err)

	opts := defaultOpts()
	opts.Lookback = 1
	_, err = NewTrading(s, opts)
	assert.Error(t, err)

	opts = defaultOpts()
	opts.InitialBalance = 0
	_, err = NewTrading(s, opts)
	assert.Error(t, err)
}

func TestObservationShape(t *testing.T) {
	e, err := NewTrading(testSeries(t, 100, 101, 102, 103, 104), defaultOpts())
	require.NoError(t, err)

	obs := e.Reset()
	assert.Len(t, obs, e.ObservationSize())
	assert.Equal(t, 4+2, e.ObservationSize())

	next, _, _ := e.Step(portfolio.Hold)
	assert.Len(t, next, e.ObservationSize())
}

func TestEpisodeEndsAtDataEnd(t *testing.T) {
	e, err := NewTrading(testSeries(t, 100, 101, 102, 103), defaultOpts())
	require.NoError(t, err)
	e.Reset()

	steps := 0
	done := false
	for !done {
		_, _, done = e.Step(portfolio.Hold)
		steps++
		require.LessOrEqual(t, steps, 10, "episode never terminated")
	}

	// 4 bars leave 3 transitions.
	assert.Equal(t, 3, steps)
}

func TestEpisodeStepBudget(t *testing.T) {
	opts := defaultOpts()
	opts.MaxSteps = 2

	e, err := NewTrading(testSeries(t, 100, 101, 102, 103, 104, 105), opts)
	require.NoError(t, err)
	e.Reset()

	_, _, done := e.Step(portfolio.Hold)
	assert.False(t, done)
	_, _, done = e.Step(portfolio.Hold)
	assert.True(t, done)
}

func TestStepAfterDone(t *testing.T) {
	e, err := NewTrading(testSeries(t, 100, 101), defaultOpts())
	require.NoError(t, err)
	e.Reset()

	_, _, done := e.Step(portfolio.Hold)
	require.True(t, done)

	obs, reward, done := e.Step(portfolio.Buy)
	assert.True(t, done)
	assert.Zero(t, reward)
	assert.Len(t, obs, e.ObservationSize())
}

func TestBuyRewardTracksPrice(t *testing.T) {
	e, err := NewTrading(testSeries(t, 100, 110, 121), defaultOpts())
	require.NoError(t, err)
	e.Reset()

	// Buy at 100, marked at 110 next bar: +10% of initial balance.
	_, reward, _ := e.Step(portfolio.Buy)
	assert.InDelta(t, 0.1, reward, 1e-9)

	// Held position appreciates 110 -> 121.
	_, reward, _ = e.Step(portfolio.Hold)
	assert.InDelta(t, 0.11, reward, 1e-9)
}

func TestFlatHoldIsPenalizedPastWindow(t *testing.T) {
	opts := defaultOpts()
	opts.HoldWindow = 1

	e, err := NewTrading(testSeries(t, 100, 100, 100, 100, 100), opts)
	require.NoError(t, err)
	e.Reset()

	_, r1, _ := e.Step(portfolio.Hold)
	assert.Zero(t, r1)

	// Second consecutive hold exceeds the window.
	_, r2, _ := e.Step(portfolio.Hold)
	assert.InDelta(t, -holdPenalty, r2, 1e-12)
}

func TestDeterministicRollout(t *testing.T) {
	series := testSeries(t, 100, 103, 99, 104, 101, 107, 102)
	actions := []portfolio.Action{portfolio.Buy, portfolio.Hold, portfolio.Sell, portfolio.Buy, portfolio.Hold, portfolio.Sell}

	run := func() ([]float64, []float64) {
		e, err := NewTrading(series, defaultOpts())
		require.NoError(t, err)
		obs := e.Reset()
		var rewards []float64
		for _, a := range actions {
			var r float64
			obs, r, _ = e.Step(a)
			rewards = append(rewards, r)
		}
		return obs, rewards
	}

	obs1, rewards1 := run()
	obs2, rewards2 := run()
	assert.Equal(t, obs1, obs2)
	assert.Equal(t, rewards1, rewards2)
}

func TestSellRealizesCash(t *testing.T) {
	e, err := NewTrading(testSeries(t, 100, 110, 90), defaultOpts())
	require.NoError(t, err)
	e.Reset()

	e.Step(portfolio.Buy)
	// Sell at 110 locks in the gain before the drop to 90.
	_, reward, _ := e.Step(portfolio.Sell)
	assert.Zero(t, reward)
}
