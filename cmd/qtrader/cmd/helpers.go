package cmd

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/rustyeddy/qtrader/agent"
	"github.com/rustyeddy/qtrader/config"
	"github.com/rustyeddy/qtrader/env"
	"github.com/rustyeddy/qtrader/journal"
	"github.com/rustyeddy/qtrader/market"
)

// loadConfig reads the config file when given, otherwise starts from
// defaults. A --data flag overrides the configured dataset path.
func loadConfig(configPath, dataPath string) (*config.Config, error) {
	var cfg *config.Config
	if configPath != "" {
		loaded, err := config.LoadFromFile(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = config.Default()
	}

	if dataPath != "" {
		cfg.Data.CSV = dataPath
	}
	return cfg, nil
}

// loadSplit loads the dataset and returns its train and test partitions.
// Without a split date the whole series lands in both.
func loadSplit(cfg *config.Config) (train, test market.Series, err error) {
	series, err := market.LoadCSV(cfg.Data.CSV)
	if err != nil {
		return market.Series{}, market.Series{}, err
	}

	cutoff, err := cfg.Data.SplitTime()
	if err != nil {
		return market.Series{}, market.Series{}, err
	}
	if cutoff.IsZero() {
		return series, series, nil
	}

	train, test = market.Split(series, cutoff)
	return train, test, nil
}

// openJournal builds the configured journal backend.
func openJournal(jc config.JournalConfig) (journal.Journal, error) {
	switch jc.Type {
	case "csv":
		return journal.NewCSV(jc.EpisodesFile, jc.TradesFile)
	case "sqlite":
		return journal.NewSQLite(jc.DBPath)
	case "none", "":
		return journal.Nop{}, nil
	default:
		return nil, fmt.Errorf("unknown journal type %q", jc.Type)
	}
}

// newEnv builds a trading environment over the series. maxSteps <= 0
// lets the episode run to the end of the data.
func newEnv(cfg agent.Config, series market.Series, maxSteps int) (*env.Trading, error) {
	return env.NewTrading(series, env.Options{
		Lookback:       cfg.LookbackWindow,
		HoldWindow:     cfg.HoldWindow,
		MaxSteps:       maxSteps,
		InitialBalance: cfg.InitialBalance,
	})
}

// newRNG seeds from the flag, or from the clock when the seed is zero.
func newRNG(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}
