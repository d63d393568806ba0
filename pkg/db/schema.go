package db

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;
PRAGMA temp_store = MEMORY;

-- Runs: one row per (run, dataset) with the coordinator's summary
CREATE TABLE IF NOT EXISTS runs (
    run_id TEXT NOT NULL,
    dataset TEXT NOT NULL,
    workers INTEGER NOT NULL,
    top_n INTEGER NOT NULL,
    trim_rule TEXT NOT NULL,
    transport TEXT NOT NULL,
    hashtag_total INTEGER DEFAULT 0,
    language_total INTEGER DEFAULT 0,
    distinct_hashtags INTEGER DEFAULT 0,
    distinct_languages INTEGER DEFAULT 0,
    elapsed_ms INTEGER DEFAULT 0,

    -- Top entries as JSON arrays: ["token:count", ...]
    top_hashtags TEXT,
    top_languages TEXT,

    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (run_id, dataset)
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);

-- Ranked entries: full rankings in position order
CREATE TABLE IF NOT EXISTS ranked_entries (
    run_id TEXT NOT NULL,
    dataset TEXT NOT NULL,
    kind TEXT NOT NULL,          -- hashtag, language
    position INTEGER NOT NULL,
    token TEXT NOT NULL,
    count INTEGER NOT NULL,
    PRIMARY KEY (run_id, dataset, kind, position),
    FOREIGN KEY (run_id, dataset) REFERENCES runs(run_id, dataset) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_ranked_token ON ranked_entries(kind, token);
`
