// Package agent implements the Deep Q-Network agent: epsilon-greedy
// action selection over an online value network, experience replay, and
// a periodically hard-synced target network for stable TD targets.
package agent

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/rustyeddy/qtrader/env"
	"github.com/rustyeddy/qtrader/journal"
	"github.com/rustyeddy/qtrader/nn"
	"github.com/rustyeddy/qtrader/pkg/id"
	"github.com/rustyeddy/qtrader/portfolio"
	"github.com/rustyeddy/qtrader/replay"
)

// Agent owns the online/target network pair, the replay buffer and the
// training state. Single-threaded: environment stepping, sampling and
// gradient updates run strictly in sequence.
type Agent struct {
	cfg     Config
	env     env.Env
	online  *nn.Network
	target  *nn.Network
	buffer  *replay.Buffer
	rng     *rand.Rand
	journal journal.Journal
	runID   string

	steps   int // global environment steps, drives the epsilon schedule
	updates int // gradient updates, drives step-unit target sync
}

// New constructs an agent over the given environment. The journal may be
// nil. The rng drives exploration, weight init and replay sampling, so a
// fixed seed makes a training run reproducible.
func New(cfg Config, e env.Env, rng *rand.Rand, j journal.Journal) (*Agent, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("agent config: %w", err)
	}
	if e == nil {
		return nil, fmt.Errorf("agent: environment is required")
	}
	if j == nil {
		j = journal.Nop{}
	}

	online, err := nn.New(networkSizes(cfg, e.ObservationSize()), rng)
	if err != nil {
		return nil, err
	}

	return &Agent{
		cfg:     cfg,
		env:     e,
		online:  online,
		target:  online.Clone(),
		buffer:  replay.NewBuffer(cfg.BufferSize, rng),
		rng:     rng,
		journal: j,
		runID:   id.New(),
	}, nil
}

func networkSizes(cfg Config, obsSize int) []int {
	sizes := append([]int{obsSize}, cfg.HiddenDims...)
	return append(sizes, portfolio.NumActions)
}

// RunID identifies this agent's journal records.
func (a *Agent) RunID() string { return a.runID }

// SelectAction picks an action for the state: uniformly at random with
// probability eps, otherwise the argmax of the online network's values.
func (a *Agent) SelectAction(state []float64, eps float64) portfolio.Action {
	if eps > 0 && a.rng.Float64() < eps {
		return portfolio.Action(a.rng.Intn(portfolio.NumActions))
	}
	return argmax(a.online.Forward(state))
}

// Train runs the given number of episodes against the environment and
// returns the per-episode cumulative rewards. When modelPath is non-empty
// the online network's parameters are saved there at the end.
//
// Each step selects an action epsilon-greedily, stores the transition,
// and, once the buffer holds a full batch, performs one gradient update
// toward the TD target computed from the target network. The target
// network is hard-synced from the online one every TargetSync episodes or
// gradient steps, per TargetSyncUnit. The context is checked once per
// step.
func (a *Agent) Train(ctx context.Context, episodes int, modelPath string) ([]float64, error) {
	if episodes < 1 {
		return nil, fmt.Errorf("agent: episodes must be positive, got %d", episodes)
	}

	rewards := make([]float64, 0, episodes)

	for ep := 0; ep < episodes; ep++ {
		state := a.env.Reset()

		var total, lossSum float64
		var lossCount, stepsThisEpisode int

		for t := 0; t < a.cfg.NSteps; t++ {
			select {
			case <-ctx.Done():
				return rewards, ctx.Err()
			default:
			}

			action := a.SelectAction(state, a.cfg.Epsilon(a.steps))
			next, reward, done := a.env.Step(action)

			a.buffer.Add(replay.Transition{
				State:     state,
				Action:    int(action),
				NextState: next,
				Reward:    reward,
				Done:      done,
			})

			// Skip the update, not the episode, until a full batch is
			// buffered.
			if a.buffer.Len() >= a.cfg.BatchSize {
				loss, err := a.optimize()
				if err != nil {
					return rewards, fmt.Errorf("episode %d step %d: %w", ep, t, err)
				}
				lossSum += loss
				lossCount++
				a.updates++

				if a.cfg.TargetSyncUnit == SyncPerSteps && a.updates%a.cfg.TargetSync == 0 {
					a.syncTarget()
				}
			}

			a.steps++
			total += reward
			state = next
			stepsThisEpisode++

			if done {
				break
			}
		}

		if a.cfg.TargetSyncUnit == SyncPerEpisodes && (ep+1)%a.cfg.TargetSync == 0 {
			a.syncTarget()
		}

		meanLoss := 0.0
		if lossCount > 0 {
			meanLoss = lossSum / float64(lossCount)
		}
		if err := a.journal.RecordEpisode(journal.EpisodeRecord{
			RunID:    a.runID,
			Episode:  ep,
			Steps:    stepsThisEpisode,
			Reward:   total,
			Epsilon:  a.cfg.Epsilon(a.steps),
			MeanLoss: meanLoss,
			Time:     time.Now().UTC(),
		}); err != nil {
			return rewards, fmt.Errorf("journal episode %d: %w", ep, err)
		}

		rewards = append(rewards, total)
	}

	if modelPath != "" {
		if err := a.online.Save(modelPath); err != nil {
			return rewards, err
		}
	}
	return rewards, nil
}

// optimize samples one batch and performs one gradient step on the online
// network. The TD target is reward alone on terminal transitions,
// otherwise reward + gamma * max over the target network's values for the
// next state.
func (a *Agent) optimize() (float64, error) {
	batch, err := a.buffer.SampleBatch(a.cfg.BatchSize)
	if err != nil {
		return 0, err
	}

	targets := make([]float64, len(batch.Rewards))
	for i := range targets {
		y := batch.Rewards[i]
		if !batch.Dones[i] {
			y += a.cfg.Gamma * maxValue(a.target.Forward(batch.NextStates[i]))
		}
		targets[i] = y
	}

	return a.online.Step(batch.States, batch.Actions, targets, a.cfg.LearningRate, a.cfg.GradientClip)
}

// syncTarget hard-copies the online parameters into the target network.
func (a *Agent) syncTarget() {
	// Architectures always match; a failure here is a bug.
	if err := a.target.CopyFrom(a.online); err != nil {
		panic(err)
	}
}

// Test loads saved parameters from modelPath and runs one fully greedy
// rollout (no exploration) over the supplied environment, returning the
// realized action sequence. Loading failures surface as
// nn.ErrModelNotFound or nn.ErrConfigMismatch.
func (a *Agent) Test(ctx context.Context, modelPath string, e env.Env) ([]portfolio.Action, error) {
	net, err := nn.Load(modelPath, networkSizes(a.cfg, e.ObservationSize()))
	if err != nil {
		return nil, err
	}

	var actions []portfolio.Action
	state := e.Reset()
	for {
		select {
		case <-ctx.Done():
			return actions, ctx.Err()
		default:
		}

		action := argmax(net.Forward(state))
		actions = append(actions, action)

		next, _, done := e.Step(action)
		state = next
		if done {
			return actions, nil
		}
	}
}

// SaveActions writes one action code per line, the format the plotting
// tooling consumes.
func SaveActions(path string, actions []portfolio.Action) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save actions: %w", err)
	}
	defer f.Close()

	for _, a := range actions {
		if _, err := fmt.Fprintf(f, "%d\n", int(a)); err != nil {
			return fmt.Errorf("save actions: %w", err)
		}
	}
	return nil
}

func argmax(values []float64) portfolio.Action {
	best := 0
	for i := 1; i < len(values); i++ {
		if values[i] > values[best] {
			best = i
		}
	}
	return portfolio.Action(best)
}

func maxValue(values []float64) float64 {
	best := values[0]
	for _, v := range values[1:] {
		if v > best {
			best = v
		}
	}
	return best
}
