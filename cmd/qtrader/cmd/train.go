package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/qtrader/agent"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train a DQN agent on historical stock data",
	Long: `Train runs the DQN training loop over the training partition of the
dataset and saves the learned policy network.

Example:
  qtrader train --data datasets/IBM.csv --model models/policy.json --episodes 10`,
	RunE: runTrain,
}

var (
	trainDataPath   string
	trainConfigPath string
	trainModelPath  string
	trainEpisodes   int
	trainSeed       int64
)

func init() {
	rootCmd.AddCommand(trainCmd)

	trainCmd.Flags().StringVarP(&trainDataPath, "data", "d", "", "path to daily bar CSV (date,open,high,low,close[,volume])")
	trainCmd.Flags().StringVarP(&trainConfigPath, "config", "c", "", "path to config file (YAML or JSON)")
	trainCmd.Flags().StringVarP(&trainModelPath, "model", "m", "models/policy.json", "where to save the trained network")
	trainCmd.Flags().IntVarP(&trainEpisodes, "episodes", "e", 10, "number of training episodes")
	trainCmd.Flags().Int64Var(&trainSeed, "seed", 0, "RNG seed (0 seeds from the clock)")
}

func runTrain(cobraCmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(trainConfigPath, trainDataPath)
	if err != nil {
		return err
	}

	train, _, err := loadSplit(cfg)
	if err != nil {
		return err
	}
	if train.Len() < 2 {
		return fmt.Errorf("training partition has %d bars, need at least 2", train.Len())
	}

	j, err := openJournal(cfg.Journal)
	if err != nil {
		return err
	}
	defer j.Close()

	e, err := newEnv(cfg.Agent, train, cfg.Agent.NSteps)
	if err != nil {
		return err
	}

	a, err := agent.New(cfg.Agent, e, newRNG(trainSeed), j)
	if err != nil {
		return err
	}

	fmt.Printf("Training on %s: %d bars, %d episodes (run %s)\n",
		train.Ticker, train.Len(), trainEpisodes, a.RunID())

	rewards, err := a.Train(cobraCmd.Context(), trainEpisodes, trainModelPath)
	for i, r := range rewards {
		fmt.Printf("Episode %d\treward %.4f\n", i, r)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Saved model to %s\n", trainModelPath)
	return nil
}
