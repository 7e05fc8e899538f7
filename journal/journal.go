// Package journal records what a training or evaluation run did: one row
// per episode and one row per executed trade, to CSV files or a SQLite
// database.
package journal

import "time"

// EpisodeRecord summarizes one training episode.
type EpisodeRecord struct {
	RunID    string
	Episode  int
	Steps    int
	Reward   float64
	Epsilon  float64
	MeanLoss float64
	Time     time.Time
}

// TradeRecord is one executed buy or sell during an evaluation rollout.
type TradeRecord struct {
	RunID  string
	Index  int // bar index within the rollout
	Action string
	Price  float64
	Value  float64 // portfolio value after the trade
	Time   time.Time
}

type Journal interface {
	RecordEpisode(EpisodeRecord) error
	RecordTrade(TradeRecord) error
	Close() error
}

// Nop is a Journal that discards everything.
type Nop struct{}

func (Nop) RecordEpisode(EpisodeRecord) error { return nil }
func (Nop) RecordTrade(TradeRecord) error     { return nil }
func (Nop) Close() error                      { return nil }
