package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

type CSVJournal struct {
	episodes *csv.Writer
	trades   *csv.Writer
	ef, tf   *os.File
}

func NewCSV(episodesPath, tradesPath string) (*CSVJournal, error) {
	ef, err := os.Create(episodesPath)
	if err != nil {
		return nil, err
	}
	tf, err := os.Create(tradesPath)
	if err != nil {
		ef.Close()
		return nil, err
	}

	ew := csv.NewWriter(ef)
	tw := csv.NewWriter(tf)

	if err := ew.Write([]string{"run_id", "episode", "steps", "reward", "epsilon", "mean_loss", "time"}); err != nil {
		return nil, err
	}
	if err := tw.Write([]string{"run_id", "index", "action", "price", "value", "time"}); err != nil {
		return nil, err
	}

	ew.Flush()
	if err := ew.Error(); err != nil {
		return nil, err
	}
	tw.Flush()
	if err := tw.Error(); err != nil {
		return nil, err
	}

	return &CSVJournal{ew, tw, ef, tf}, nil
}

func (j *CSVJournal) RecordEpisode(e EpisodeRecord) error {
	j.episodes.Write([]string{
		e.RunID,
		strconv.Itoa(e.Episode),
		strconv.Itoa(e.Steps),
		strconv.FormatFloat(e.Reward, 'f', -1, 64),
		strconv.FormatFloat(e.Epsilon, 'f', -1, 64),
		strconv.FormatFloat(e.MeanLoss, 'f', -1, 64),
		e.Time.Format(time.RFC3339),
	})
	j.episodes.Flush()
	return j.episodes.Error()
}

func (j *CSVJournal) RecordTrade(t TradeRecord) error {
	j.trades.Write([]string{
		t.RunID,
		strconv.Itoa(t.Index),
		t.Action,
		strconv.FormatFloat(t.Price, 'f', -1, 64),
		strconv.FormatFloat(t.Value, 'f', -1, 64),
		t.Time.Format(time.RFC3339),
	})
	j.trades.Flush()
	return j.trades.Error()
}

func (j *CSVJournal) Close() error {
	j.episodes.Flush()
	j.trades.Flush()

	err := j.episodes.Error()
	if e := j.trades.Error(); err == nil {
		err = e
	}
	if e := j.ef.Close(); err == nil {
		err = e
	}
	if e := j.tf.Close(); err == nil {
		err = e
	}
	return err
}
