package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/qtrader/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage qtrader configuration files",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cobraCmd *cobra.Command, args []string) error {
		path := "qtrader.yaml"
		if len(args) > 0 {
			path = args[0]
		}
		if err := config.Default().SaveToFile(path); err != nil {
			return err
		}
		fmt.Printf("Wrote default config to %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show <path>",
	Short: "Validate and print a configuration file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cobraCmd *cobra.Command, args []string) error {
		cfg, err := config.LoadFromFile(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Data:    %s (split %s)\n", cfg.Data.CSV, cfg.Data.SplitDate)
		fmt.Printf("Journal: %s\n", cfg.Journal.Type)
		fmt.Printf("Agent:   buffer=%d batch=%d hidden=%v lr=%g gamma=%g\n",
			cfg.Agent.BufferSize, cfg.Agent.BatchSize, cfg.Agent.HiddenDims,
			cfg.Agent.LearningRate, cfg.Agent.Gamma)
		fmt.Printf("         eps=%g..%g decay=%g sync=%d/%s clip=%g\n",
			cfg.Agent.EpsilonStart, cfg.Agent.EpsilonEnd, cfg.Agent.EpsilonDecay,
			cfg.Agent.TargetSync, cfg.Agent.TargetSyncUnit, cfg.Agent.GradientClip)
		fmt.Printf("         lookback=%d hold=%d n_steps=%d balance=%g\n",
			cfg.Agent.LookbackWindow, cfg.Agent.HoldWindow, cfg.Agent.NSteps,
			cfg.Agent.InitialBalance)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}
