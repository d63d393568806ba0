package db

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/MrDoghead/COMP90024-project1/models"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	// Use in-memory database for tests
	database := &DB{path: ":memory:"}
	var err error
	database.DB, err = openDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := database.InitSchema(); err != nil {
		t.Fatalf("failed to initialize schema: %v", err)
	}

	return database
}

func sampleRun(runID, dataset string) Run {
	return Run{
		RunID:             runID,
		Dataset:           dataset,
		Workers:           4,
		TopN:              10,
		Trim:              "row",
		Transport:         "local",
		HashtagTotal:      3,
		LanguageTotal:     3,
		DistinctHashtags:  2,
		DistinctLanguages: 2,
		ElapsedMS:         42,
		TopHashtags:       []string{"x:2", "y:1"},
		TopLanguages:      []string{"en:2", "fr:1"},
	}
}

func TestInsertRun_GetRun(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if err := db.InsertRun(sampleRun("run-1", "b.json")); err != nil {
		t.Fatalf("InsertRun() error = %v", err)
	}
	if err := db.InsertRun(sampleRun("run-1", "a.json")); err != nil {
		t.Fatalf("InsertRun() error = %v", err)
	}

	runs, err := db.GetRun("run-1")
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("GetRun() returned %d rows, want 2", len(runs))
	}
	if runs[0].Dataset != "a.json" || runs[1].Dataset != "b.json" {
		t.Errorf("datasets = [%s %s], want sorted [a.json b.json]", runs[0].Dataset, runs[1].Dataset)
	}

	got := runs[0]
	if got.Workers != 4 || got.TopN != 10 || got.Trim != "row" || got.ElapsedMS != 42 {
		t.Errorf("GetRun() summary = %+v", got)
	}
	if !reflect.DeepEqual(got.TopHashtags, []string{"x:2", "y:1"}) {
		t.Errorf("TopHashtags = %v", got.TopHashtags)
	}
	if !reflect.DeepEqual(got.TopLanguages, []string{"en:2", "fr:1"}) {
		t.Errorf("TopLanguages = %v", got.TopLanguages)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt is zero")
	}
}

func TestInsertRun_Replaces(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	run := sampleRun("run-1", "a.json")
	if err := db.InsertRun(run); err != nil {
		t.Fatalf("InsertRun() error = %v", err)
	}
	run.Workers = 8
	run.TopHashtags = nil
	if err := db.InsertRun(run); err != nil {
		t.Fatalf("InsertRun() second call error = %v", err)
	}

	runs, err := db.GetRun("run-1")
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("GetRun() returned %d rows, want 1", len(runs))
	}
	if runs[0].Workers != 8 {
		t.Errorf("Workers = %d, want 8", runs[0].Workers)
	}
	if len(runs[0].TopHashtags) != 0 {
		t.Errorf("TopHashtags = %v, want empty", runs[0].TopHashtags)
	}
}

func TestGetRun_NotFound(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	_, err := db.GetRun("missing")
	if !errors.Is(err, ErrRunNotFound) {
		t.Errorf("GetRun() error = %v, want ErrRunNotFound", err)
	}
}

func TestInsertRanking_GetRanking(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if err := db.InsertRun(sampleRun("run-1", "a.json")); err != nil {
		t.Fatalf("InsertRun() error = %v", err)
	}

	tests := []struct {
		name    string
		kind    string
		entries []models.RankedEntry
		wantErr bool
	}{
		{
			name:    "hashtags",
			kind:    KindHashtag,
			entries: []models.RankedEntry{{Token: "x", Count: 2}, {Token: "y", Count: 1}},
		},
		{
			name:    "languages",
			kind:    KindLanguage,
			entries: []models.RankedEntry{{Token: "en", Count: 2}, {Token: "fr", Count: 1}},
		},
		{
			name:    "empty ranking",
			kind:    KindHashtag,
			entries: []models.RankedEntry{},
		},
		{
			name:    "unknown kind",
			kind:    "mention",
			entries: []models.RankedEntry{{Token: "a", Count: 1}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := db.InsertRanking("run-1", "a.json", tt.kind, tt.entries)
			if (err != nil) != tt.wantErr {
				t.Fatalf("InsertRanking() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}

			got, err := db.GetRanking("run-1", "a.json", tt.kind)
			if err != nil {
				t.Fatalf("GetRanking() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.entries) {
				t.Errorf("GetRanking() = %v, want %v", got, tt.entries)
			}
		})
	}
}

func TestInsertRanking_RequiresRun(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	err := db.InsertRanking("nope", "a.json", KindHashtag, []models.RankedEntry{{Token: "x", Count: 1}})
	if err == nil {
		t.Error("InsertRanking() without a run row succeeded, want foreign key error")
	}
}

func TestListRuns(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	for _, id := range []string{"run-1", "run-2", "run-3"} {
		if err := db.InsertRun(sampleRun(id, "a.json")); err != nil {
			t.Fatalf("InsertRun(%s) error = %v", id, err)
		}
	}

	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{name: "no limit", limit: 0, want: 3},
		{name: "limit 2", limit: 2, want: 2},
		{name: "limit above count", limit: 10, want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runs, err := db.ListRuns(tt.limit)
			if err != nil {
				t.Fatalf("ListRuns() error = %v", err)
			}
			if len(runs) != tt.want {
				t.Errorf("ListRuns(%d) returned %d runs, want %d", tt.limit, len(runs), tt.want)
			}
		})
	}
}

func TestOpen_CreatesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if db.Path() != path {
		t.Errorf("Path() = %q, want %q", db.Path(), path)
	}
	if err := db.InsertRun(sampleRun("run-1", "a.json")); err != nil {
		t.Fatalf("InsertRun() error = %v", err)
	}
	db.Close()

	// Reopening an existing file must keep its rows.
	db, err = Open(path)
	if err != nil {
		t.Fatalf("Open() second call error = %v", err)
	}
	defer db.Close()

	if _, err := db.GetRun("run-1"); err != nil {
		t.Errorf("GetRun() after reopen error = %v", err)
	}
}

func TestListRuns_SameSecondLatestFirst(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	for _, id := range []string{"0000-first", "ffff-second"} {
		if err := db.InsertRun(sampleRun(id, "a.json")); err != nil {
			t.Fatalf("InsertRun(%s) error = %v", id, err)
		}
	}
	if _, err := db.Exec(`UPDATE runs SET created_at = '2026-01-01 00:00:00'`); err != nil {
		t.Fatalf("failed to pin created_at: %v", err)
	}

	runs, err := db.ListRuns(1)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 1 || runs[0].RunID != "ffff-second" {
		t.Errorf("ListRuns(1) = %+v, want ffff-second", runs)
	}

	// Same order when the later run sorts first by ID.
	if err := db.InsertRun(sampleRun("aaaa-third", "a.json")); err != nil {
		t.Fatalf("InsertRun() error = %v", err)
	}
	if _, err := db.Exec(`UPDATE runs SET created_at = '2026-01-01 00:00:00'`); err != nil {
		t.Fatalf("failed to pin created_at: %v", err)
	}
	runs, err = db.ListRuns(0)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	var got []string
	for _, r := range runs {
		got = append(got, r.RunID)
	}
	if want := []string{"aaaa-third", "ffff-second", "0000-first"}; !reflect.DeepEqual(got, want) {
		t.Errorf("ListRuns() order = %v, want %v", got, want)
	}
}
