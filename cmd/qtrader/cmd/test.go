package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/qtrader/agent"
	"github.com/rustyeddy/qtrader/journal"
	"github.com/rustyeddy/qtrader/market"
	"github.com/rustyeddy/qtrader/portfolio"
	"github.com/rustyeddy/qtrader/report"
)

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Evaluate a trained policy with a greedy rollout",
	Long: `Test loads a trained policy network, runs one greedy (no exploration)
rollout over the test partition of the dataset and simulates the resulting
portfolio.

Example:
  qtrader test --data datasets/IBM.csv --model models/policy.json --chart equity.html`,
	RunE: runTest,
}

var (
	testDataPath    string
	testConfigPath  string
	testModelPath   string
	testActionsPath string
	testChartPath   string
	testVerbose     bool
	testSeed        int64
)

func init() {
	rootCmd.AddCommand(testCmd)

	testCmd.Flags().StringVarP(&testDataPath, "data", "d", "", "path to daily bar CSV (date,open,high,low,close[,volume])")
	testCmd.Flags().StringVarP(&testConfigPath, "config", "c", "", "path to config file (YAML or JSON)")
	testCmd.Flags().StringVarP(&testModelPath, "model", "m", "models/policy.json", "path to the trained network")
	testCmd.Flags().StringVar(&testActionsPath, "actions", "", "optional path to write the action sequence, one code per line")
	testCmd.Flags().StringVar(&testChartPath, "chart", "", "optional path to write an equity-curve HTML chart")
	testCmd.Flags().BoolVarP(&testVerbose, "verbose", "v", false, "print the action sequence and the maximum-return bound")
	testCmd.Flags().Int64Var(&testSeed, "seed", 0, "RNG seed (0 seeds from the clock)")
}

func runTest(cobraCmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(testConfigPath, testDataPath)
	if err != nil {
		return err
	}

	_, test, err := loadSplit(cfg)
	if err != nil {
		return err
	}
	if test.Len() < 2 {
		return fmt.Errorf("test partition has %d bars, need at least 2", test.Len())
	}

	j, err := openJournal(cfg.Journal)
	if err != nil {
		return err
	}
	defer j.Close()

	// No step budget at evaluation time: roll to the end of the data.
	e, err := newEnv(cfg.Agent, test, 0)
	if err != nil {
		return err
	}

	a, err := agent.New(cfg.Agent, e, newRNG(testSeed), j)
	if err != nil {
		return err
	}

	actions, err := a.Test(cobraCmd.Context(), testModelPath, e)
	if err != nil {
		return err
	}

	closes := test.Closes()[:len(actions)]
	values, err := portfolio.Run(actions, closes, cfg.Agent.InitialBalance)
	if err != nil {
		return err
	}

	recordTrades(j, a.RunID(), test, actions, cfg.Agent.InitialBalance)

	if testActionsPath != "" {
		if err := agent.SaveActions(testActionsPath, actions); err != nil {
			return err
		}
		fmt.Printf("Saved actions to %s\n", testActionsPath)
	}
	if testChartPath != "" {
		title := fmt.Sprintf("%s portfolio", test.Ticker)
		if err := report.WriteEquityChart(testChartPath, title, values); err != nil {
			return err
		}
		fmt.Printf("Saved chart to %s\n", testChartPath)
	}

	if testVerbose {
		for i, act := range actions {
			fmt.Printf("%s\t%s\n", test.Bars[i].Date.Format("2006-01-02"), act)
		}
		fmt.Printf("Maximum possible return: $%.2f\n",
			portfolio.MaximumReturn(test.Closes(), cfg.Agent.InitialBalance))
	}

	fmt.Printf("Steps: %d\tFinal portfolio value: $%.2f\n", len(actions), values[len(values)-1])
	return nil
}

// recordTrades journals the executed buys and sells of the rollout.
func recordTrades(j journal.Journal, runID string, test market.Series, actions []portfolio.Action, balance float64) {
	owns := false
	cash := balance
	shares := 0.0
	closes := test.Closes()

	for i, act := range actions {
		rec := journal.TradeRecord{
			RunID: runID,
			Index: i,
			Price: closes[i],
			Time:  time.Now().UTC(),
		}
		switch {
		case act == portfolio.Buy && !owns:
			shares = cash / closes[i]
			owns = true
			rec.Action = act.String()
			rec.Value = cash
		case act == portfolio.Sell && owns:
			cash = shares * closes[i]
			shares = 0
			owns = false
			rec.Action = act.String()
			rec.Value = cash
		default:
			continue
		}
		// Journal failures should not abort an otherwise good rollout.
		_ = j.RecordTrade(rec)
	}
}
