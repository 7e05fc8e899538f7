package agent

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/qtrader/env"
	"github.com/rustyeddy/qtrader/market"
	"github.com/rustyeddy/qtrader/nn"
	"github.com/rustyeddy/qtrader/portfolio"
)

func syntheticSeries(t *testing.T, n int) market.Series {
	t.Helper()
	s := market.Series{Ticker: "SYN"}
	day := time.Date(2016, 1, 4, 0, 0, 0, 0, time.UTC)
	price := 100.0
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < n; i++ {
		price *= 1 + (rng.Float64()-0.48)*0.02
		s.Bars = append(s.Bars, market.Bar{
			Date: day.AddDate(0, 0, i), Open: price, High: price, Low: price, Close: price,
		})
	}
	return s
}

func testConfig() Config {
	cfg := Default()
	cfg.HiddenDims = []int{16, 16}
	cfg.LookbackWindow = 4
	cfg.BufferSize = 20
	cfg.BatchSize = 10
	return cfg
}

func newTestAgent(t *testing.T, cfg Config, series market.Series) *Agent {
	t.Helper()
	e, err := env.NewTrading(series, env.Options{
		Lookback:       cfg.LookbackWindow,
		HoldWindow:     cfg.HoldWindow,
		MaxSteps:       cfg.NSteps,
		InitialBalance: cfg.InitialBalance,
	})
	require.NoError(t, err)

	a, err := New(cfg, e, rand.New(rand.NewSource(3)), nil)
	require.NoError(t, err)
	return a
}

func TestEpsilonSchedule(t *testing.T) {
	cfg := Default()

	assert.InDelta(t, cfg.EpsilonStart, cfg.Epsilon(0), 1e-9)
	assert.InDelta(t, cfg.EpsilonEnd, cfg.Epsilon(1_000_000), 1e-6)

	prev := cfg.Epsilon(0)
	for step := 1; step < 2000; step += 50 {
		cur := cfg.Epsilon(step)
		assert.LessOrEqual(t, cur, prev)
		prev = cur
	}
}

func TestTargetSyncMatchesOnline(t *testing.T) {
	a := newTestAgent(t, testConfig(), syntheticSeries(t, 30))

	state := a.env.Reset()

	// Drift the online network away from the freshly cloned target.
	_, err := a.online.Step([][]float64{state}, []int{0}, []float64{2}, 0.05, 100)
	require.NoError(t, err)
	assert.NotEqual(t, a.online.Forward(state), a.target.Forward(state))

	a.syncTarget()
	assert.Equal(t, a.online.Forward(state), a.target.Forward(state))
}

func TestSelectActionGreedyIsDeterministic(t *testing.T) {
	a := newTestAgent(t, testConfig(), syntheticSeries(t, 30))
	state := a.env.Reset()

	first := a.SelectAction(state, 0)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, a.SelectAction(state, 0))
	}
}

func TestSelectActionExploresAllActions(t *testing.T) {
	a := newTestAgent(t, testConfig(), syntheticSeries(t, 30))
	state := a.env.Reset()

	seen := map[portfolio.Action]bool{}
	for i := 0; i < 200; i++ {
		seen[a.SelectAction(state, 1)] = true
	}
	assert.Len(t, seen, portfolio.NumActions)
}

func TestTrainThenTestEndToEnd(t *testing.T) {
	cfg := testConfig()
	modelPath := filepath.Join(t.TempDir(), "policy.json")

	a := newTestAgent(t, cfg, syntheticSeries(t, 20))

	rewards, err := a.Train(context.Background(), 1, modelPath)
	require.NoError(t, err)
	require.Len(t, rewards, 1)

	_, err = os.Stat(modelPath)
	require.NoError(t, err, "model file was not written")

	testEnv, err := env.NewTrading(syntheticSeries(t, 5), env.Options{
		Lookback:       cfg.LookbackWindow,
		HoldWindow:     cfg.HoldWindow,
		InitialBalance: cfg.InitialBalance,
	})
	require.NoError(t, err)

	actions, err := a.Test(context.Background(), modelPath, testEnv)
	require.NoError(t, err)

	assert.NotEmpty(t, actions)
	assert.LessOrEqual(t, len(actions), 5)
	for _, act := range actions {
		assert.Contains(t, []portfolio.Action{portfolio.Buy, portfolio.Hold, portfolio.Sell}, act)
	}
}

func TestTrainMultipleEpisodes(t *testing.T) {
	a := newTestAgent(t, testConfig(), syntheticSeries(t, 40))

	rewards, err := a.Train(context.Background(), 3, "")
	require.NoError(t, err)
	assert.Len(t, rewards, 3)
}

func TestTrainCancelled(t *testing.T) {
	a := newTestAgent(t, testConfig(), syntheticSeries(t, 40))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Train(ctx, 5, "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTestMissingModel(t *testing.T) {
	a := newTestAgent(t, testConfig(), syntheticSeries(t, 30))

	testEnv, err := env.NewTrading(syntheticSeries(t, 10), env.Options{
		Lookback:       a.cfg.LookbackWindow,
		HoldWindow:     a.cfg.HoldWindow,
		InitialBalance: a.cfg.InitialBalance,
	})
	require.NoError(t, err)

	_, err = a.Test(context.Background(), filepath.Join(t.TempDir(), "missing.json"), testEnv)
	assert.ErrorIs(t, err, nn.ErrModelNotFound)
}

func TestSaveActions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "actions.csv")

	err := SaveActions(path, []portfolio.Action{portfolio.Buy, portfolio.Hold, portfolio.Sell})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "0\n1\n2\n", string(data))
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, Default().Validate())

	bad := Default()
	bad.BatchSize = bad.BufferSize + 1
	assert.Error(t, bad.Validate())

	bad = Default()
	bad.TargetSyncUnit = "hours"
	assert.Error(t, bad.Validate())

	bad = Default()
	bad.EpsilonEnd = bad.EpsilonStart + 0.1
	assert.Error(t, bad.Validate())

	bad = Default()
	bad.HiddenDims = nil
	assert.Error(t, bad.Validate())
}
