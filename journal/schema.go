package journal

const Schema = `
CREATE TABLE IF NOT EXISTS episodes (
	run_id TEXT NOT NULL,
	episode INTEGER NOT NULL,
	steps INTEGER NOT NULL,
	reward REAL NOT NULL,
	epsilon REAL NOT NULL,
	mean_loss REAL NOT NULL,
	time DATETIME NOT NULL,
	PRIMARY KEY (run_id, episode)
);

CREATE TABLE IF NOT EXISTS trades (
	run_id TEXT NOT NULL,
	bar_index INTEGER NOT NULL,
	action TEXT NOT NULL,
	price REAL NOT NULL,
	value REAL NOT NULL,
	time DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_episodes_run ON episodes(run_id);
CREATE INDEX IF NOT EXISTS idx_trades_run ON trades(run_id);
`
