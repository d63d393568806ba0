package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MrDoghead/COMP90024-project1/models"
)

// Ranking kinds stored in ranked_entries.kind.
const (
	KindHashtag  = "hashtag"
	KindLanguage = "language"
)

// ErrRunNotFound is returned when no row matches a run ID.
var ErrRunNotFound = errors.New("run not found")

// Run is the stored summary of one dataset in one ranking run.
type Run struct {
	RunID             string
	Dataset           string
	Workers           int
	TopN              int
	Trim              string
	Transport         string
	HashtagTotal      int
	LanguageTotal     int
	DistinctHashtags  int
	DistinctLanguages int
	ElapsedMS         int64
	TopHashtags       []string // "token:count"
	TopLanguages      []string
	CreatedAt         time.Time
}

// InsertRun records a run summary. Re-inserting the same (run, dataset) replaces it.
func (db *DB) InsertRun(r Run) error {
	tags, err := marshalKeywords(r.TopHashtags)
	if err != nil {
		return err
	}
	langs, err := marshalKeywords(r.TopLanguages)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		INSERT INTO runs (run_id, dataset, workers, top_n, trim_rule, transport,
		                  hashtag_total, language_total, distinct_hashtags, distinct_languages,
		                  elapsed_ms, top_hashtags, top_languages)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, dataset) DO UPDATE SET
			workers = excluded.workers,
			top_n = excluded.top_n,
			trim_rule = excluded.trim_rule,
			transport = excluded.transport,
			hashtag_total = excluded.hashtag_total,
			language_total = excluded.language_total,
			distinct_hashtags = excluded.distinct_hashtags,
			distinct_languages = excluded.distinct_languages,
			elapsed_ms = excluded.elapsed_ms,
			top_hashtags = excluded.top_hashtags,
			top_languages = excluded.top_languages
	`, r.RunID, r.Dataset, r.Workers, r.TopN, r.Trim, r.Transport,
		r.HashtagTotal, r.LanguageTotal, r.DistinctHashtags, r.DistinctLanguages,
		r.ElapsedMS, tags, langs)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// InsertRanking replaces the stored ranking of the given kind for (run, dataset).
// The run row must exist.
func (db *DB) InsertRanking(runID, dataset, kind string, entries []models.RankedEntry) error {
	if kind != KindHashtag && kind != KindLanguage {
		return fmt.Errorf("unknown ranking kind %q", kind)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() // no-op after Commit

	if _, err := tx.Exec(`DELETE FROM ranked_entries WHERE run_id = ? AND dataset = ? AND kind = ?`,
		runID, dataset, kind); err != nil {
		return fmt.Errorf("failed to clear ranking: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO ranked_entries (run_id, dataset, kind, position, token, count)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare ranking insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range entries {
		if _, err := stmt.Exec(runID, dataset, kind, i, e.Token, e.Count); err != nil {
			return fmt.Errorf("failed to insert ranked entry %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ranking: %w", err)
	}
	return nil
}

const runColumns = `
	run_id, dataset, workers, top_n, trim_rule, transport,
	hashtag_total, language_total, distinct_hashtags, distinct_languages,
	elapsed_ms, top_hashtags, top_languages, created_at
`

// ListRuns retrieves run summaries ordered by most recent first.
// created_at has one-second resolution, so rowid orders rows inserted within the same second.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY created_at DESC, rowid DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

// GetRun returns every dataset summary stored under runID.
func (db *DB) GetRun(runID string) ([]Run, error) {
	rows, err := db.Query(`SELECT `+runColumns+` FROM runs WHERE run_id = ? ORDER BY dataset`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	defer rows.Close()

	runs, err := scanRuns(rows)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return runs, nil
}

// GetRanking returns a stored ranking in position order.
func (db *DB) GetRanking(runID, dataset, kind string) ([]models.RankedEntry, error) {
	rows, err := db.Query(`
		SELECT token, count
		FROM ranked_entries
		WHERE run_id = ? AND dataset = ? AND kind = ?
		ORDER BY position
	`, runID, dataset, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to get ranking: %w", err)
	}
	defer rows.Close()

	entries := []models.RankedEntry{}
	for rows.Next() {
		var e models.RankedEntry
		if err := rows.Scan(&e.Token, &e.Count); err != nil {
			return nil, fmt.Errorf("failed to scan ranked entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func scanRuns(rows *sql.Rows) ([]Run, error) {
	var runs []Run
	for rows.Next() {
		var r Run
		var tags, langs sql.NullString
		if err := rows.Scan(&r.RunID, &r.Dataset, &r.Workers, &r.TopN, &r.Trim, &r.Transport,
			&r.HashtagTotal, &r.LanguageTotal, &r.DistinctHashtags, &r.DistinctLanguages,
			&r.ElapsedMS, &tags, &langs, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.TopHashtags = unmarshalKeywords(tags.String)
		r.TopLanguages = unmarshalKeywords(langs.String)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func marshalKeywords(keywords []string) (string, error) {
	if keywords == nil {
		keywords = []string{}
	}
	data, err := json.Marshal(keywords)
	if err != nil {
		return "", fmt.Errorf("failed to marshal keywords: %w", err)
	}
	return string(data), nil
}

// unmarshalKeywords tolerates NULL and malformed columns by returning an empty list.
func unmarshalKeywords(s string) []string {
	keywords := []string{}
	if s == "" {
		return keywords
	}
	_ = json.Unmarshal([]byte(s), &keywords)
	return keywords
}
