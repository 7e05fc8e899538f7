package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) RecordEpisode(e EpisodeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO episodes
		(run_id, episode, steps, reward, epsilon, mean_loss, time)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.RunID, e.Episode, e.Steps, e.Reward, e.Epsilon, e.MeanLoss, e.Time,
	)
	return err
}

func (j *SQLiteJournal) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(run_id, bar_index, action, price, value, time)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.RunID, t.Index, t.Action, t.Price, t.Value, t.Time,
	)
	return err
}

// ListEpisodes returns the episode records of a run in episode order.
func (j *SQLiteJournal) ListEpisodes(runID string) ([]EpisodeRecord, error) {
	rows, err := j.db.Query(`
		SELECT run_id, episode, steps, reward, epsilon, mean_loss, time
		FROM episodes WHERE run_id = ? ORDER BY episode`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EpisodeRecord
	for rows.Next() {
		var e EpisodeRecord
		if err := rows.Scan(&e.RunID, &e.Episode, &e.Steps, &e.Reward, &e.Epsilon, &e.MeanLoss, &e.Time); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ListTrades returns the trade records of a run in bar order.
func (j *SQLiteJournal) ListTrades(runID string) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT run_id, bar_index, action, price, value, time
		FROM trades WHERE run_id = ? ORDER BY bar_index`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var t TradeRecord
		if err := rows.Scan(&t.RunID, &t.Index, &t.Action, &t.Price, &t.Value, &t.Time); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
