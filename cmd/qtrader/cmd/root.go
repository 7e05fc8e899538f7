package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "qtrader",
	Short: "A Deep Q-Network trading agent for historical stock data",
	Long: `Qtrader trains and evaluates a reinforcement-learning trading agent
over historical daily stock bars.

It provides tools for:
  - Training a DQN agent with experience replay and a target network
  - Evaluating a trained policy with a greedy rollout
  - Simulating the resulting portfolio-value trajectory
  - Journaling episodes and trades to CSV or SQLite
  - Rendering equity-curve charts`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
