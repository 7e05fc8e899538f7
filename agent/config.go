package agent

import (
	"fmt"
	"math"
)

// Target-network sync units. The sync period is ambiguous in most DQN
// write-ups, so the unit is explicit configuration rather than a
// hard-coded interpretation.
const (
	SyncPerEpisodes = "episodes"
	SyncPerSteps    = "steps"
)

// Config holds the agent's hyperparameters. It is supplied once at
// construction and never mutated by training; the exploration rate is
// derived from it and the global step counter.
type Config struct {
	BufferSize     int     `json:"buffer_size" yaml:"buffer_size"`
	BatchSize      int     `json:"batch_size" yaml:"batch_size"`
	HiddenDims     []int   `json:"hidden_dims" yaml:"hidden_dims"`
	LearningRate   float64 `json:"learning_rate" yaml:"learning_rate"`
	Gamma          float64 `json:"gamma" yaml:"gamma"`
	EpsilonStart   float64 `json:"epsilon_start" yaml:"epsilon_start"`
	EpsilonEnd     float64 `json:"epsilon_end" yaml:"epsilon_end"`
	EpsilonDecay   float64 `json:"epsilon_decay" yaml:"epsilon_decay"`
	TargetSync     int     `json:"target_sync" yaml:"target_sync"`
	TargetSyncUnit string  `json:"target_sync_unit" yaml:"target_sync_unit"`
	GradientClip   float64 `json:"gradient_clip" yaml:"gradient_clip"`
	LookbackWindow int     `json:"lookback_window" yaml:"lookback_window"`
	HoldWindow     int     `json:"hold_window" yaml:"hold_window"`
	NSteps         int     `json:"n_steps" yaml:"n_steps"`
	InitialBalance float64 `json:"initial_balance" yaml:"initial_balance"`
}

// Default returns the stock hyperparameters used for daily-bar equity
// data.
func Default() Config {
	return Config{
		BufferSize:     20,
		BatchSize:      10,
		HiddenDims:     []int{512, 512},
		LearningRate:   0.0001,
		Gamma:          0.7,
		EpsilonStart:   0.9,
		EpsilonEnd:     0.05,
		EpsilonDecay:   500,
		TargetSync:     5,
		TargetSyncUnit: SyncPerEpisodes,
		GradientClip:   100,
		LookbackWindow: 60,
		HoldWindow:     5,
		NSteps:         10,
		InitialBalance: 1000,
	}
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.BufferSize < 1 {
		return fmt.Errorf("buffer_size must be positive")
	}
	if c.BatchSize < 1 || c.BatchSize > c.BufferSize {
		return fmt.Errorf("batch_size must be in [1, buffer_size]")
	}
	if len(c.HiddenDims) == 0 {
		return fmt.Errorf("hidden_dims must name at least one layer")
	}
	for _, d := range c.HiddenDims {
		if d < 1 {
			return fmt.Errorf("hidden_dims must be positive, got %v", c.HiddenDims)
		}
	}
	if c.LearningRate <= 0 {
		return fmt.Errorf("learning_rate must be positive")
	}
	if c.Gamma < 0 || c.Gamma > 1 {
		return fmt.Errorf("gamma must be in [0, 1]")
	}
	if c.EpsilonStart < 0 || c.EpsilonStart > 1 || c.EpsilonEnd < 0 || c.EpsilonEnd > 1 {
		return fmt.Errorf("epsilon bounds must be in [0, 1]")
	}
	if c.EpsilonEnd > c.EpsilonStart {
		return fmt.Errorf("epsilon_end must not exceed epsilon_start")
	}
	if c.EpsilonDecay <= 0 {
		return fmt.Errorf("epsilon_decay must be positive")
	}
	if c.TargetSync < 1 {
		return fmt.Errorf("target_sync must be positive")
	}
	if c.TargetSyncUnit != SyncPerEpisodes && c.TargetSyncUnit != SyncPerSteps {
		return fmt.Errorf("target_sync_unit must be %q or %q", SyncPerEpisodes, SyncPerSteps)
	}
	if c.GradientClip <= 0 {
		return fmt.Errorf("gradient_clip must be positive")
	}
	if c.LookbackWindow < 2 {
		return fmt.Errorf("lookback_window must be at least 2")
	}
	if c.HoldWindow < 1 {
		return fmt.Errorf("hold_window must be positive")
	}
	if c.NSteps < 1 {
		return fmt.Errorf("n_steps must be positive")
	}
	if c.InitialBalance <= 0 {
		return fmt.Errorf("initial_balance must be positive")
	}
	return nil
}

// Epsilon is the exploration rate after step global environment steps:
// it decays smoothly from EpsilonStart toward EpsilonEnd, ignoring
// episode boundaries.
func (c Config) Epsilon(step int) float64 {
	return c.EpsilonEnd + (c.EpsilonStart-c.EpsilonEnd)*math.Exp(-float64(step)/c.EpsilonDecay)
}
