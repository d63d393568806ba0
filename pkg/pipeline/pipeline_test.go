package pipeline

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/MrDoghead/COMP90024-project1/models"
	"github.com/MrDoghead/COMP90024-project1/pkg/extractor"
	"github.com/MrDoghead/COMP90024-project1/pkg/gather"
	"github.com/MrDoghead/COMP90024-project1/pkg/partition"
)

const scenario = `{"doc":{"entities":{"hashtags":[{"text":"x"}]},"lang":"en"}}
this line is not json
{"doc":{"entities":{"hashtags":[{"text":"x"},{"text":"y"}]},"lang":"en"}}
{"doc":{"lang":"fr"}}
`

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeDataset(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tiny.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write dataset: %v", err)
	}
	return path
}

func TestRunLocal_Scenario(t *testing.T) {
	path := writeDataset(t, scenario)

	res, err := RunLocal(context.Background(), quietLogger(), Job{Dataset: path, TopN: 10, Extractor: extractor.New()}, 2)
	if err != nil {
		t.Fatalf("RunLocal() error = %v", err)
	}

	wantTags := models.FrequencyMap{"x": 2, "y": 1}
	wantLangs := models.FrequencyMap{"en": 2, "fr": 1}
	if !reflect.DeepEqual(res.Global.Hashtags, wantTags) {
		t.Errorf("global hashtags = %v, want %v", res.Global.Hashtags, wantTags)
	}
	if !reflect.DeepEqual(res.Global.Languages, wantLangs) {
		t.Errorf("global languages = %v, want %v", res.Global.Languages, wantLangs)
	}

	res1, err := RunLocal(context.Background(), quietLogger(), Job{Dataset: path, TopN: 1, Extractor: extractor.New()}, 2)
	if err != nil {
		t.Fatalf("RunLocal() error = %v", err)
	}
	if want := []models.RankedEntry{{Token: "x", Count: 2}}; !reflect.DeepEqual(res1.TopHashtags, want) {
		t.Errorf("top-1 hashtags = %v, want %v", res1.TopHashtags, want)
	}

	res2, err := RunLocal(context.Background(), quietLogger(), Job{Dataset: path, TopN: 2, Extractor: extractor.New()}, 2)
	if err != nil {
		t.Fatalf("RunLocal() error = %v", err)
	}
	if want := []models.RankedEntry{{Token: "en", Count: 2}, {Token: "fr", Count: 1}}; !reflect.DeepEqual(res2.TopLanguages, want) {
		t.Errorf("top-2 languages = %v, want %v", res2.TopLanguages, want)
	}
}

func TestRunLocal_SameResultForAnyWorkerCount(t *testing.T) {
	var sb strings.Builder
	sb.WriteString(`{"total_rows":200,"offset":0,"rows":[` + "\n")
	tags := []string{"auspol", "covid19", "melbourne", "AFL", "afl"}
	langs := []string{"en", "en", "es", "und", "ja", "en"}
	for i := 0; i < 200; i++ {
		sb.WriteString(`{"id":"` + string(rune('a'+i%26)) + `","doc":{"entities":{"hashtags":[{"text":"` +
			tags[i%len(tags)] + `"}]},"lang":"` + langs[i%len(langs)] + `"}},` + "\r\n")
	}
	sb.WriteString("]}\n")
	path := writeDataset(t, sb.String())

	job := Job{Dataset: path, TopN: 3, Extractor: extractor.New()}
	base, err := RunLocal(context.Background(), quietLogger(), job, 1)
	if err != nil {
		t.Fatalf("RunLocal(1) error = %v", err)
	}
	if base.Global.Hashtags["afl"] != 80 {
		t.Errorf("afl = %d, want 80 (case folded)", base.Global.Hashtags["afl"])
	}

	for size := 2; size <= 6; size++ {
		res, err := RunLocal(context.Background(), quietLogger(), job, size)
		if err != nil {
			t.Fatalf("RunLocal(%d) error = %v", size, err)
		}
		if !reflect.DeepEqual(res.Global, base.Global) {
			t.Errorf("size %d global = %+v, want %+v", size, res.Global, base.Global)
		}
		if !reflect.DeepEqual(res.TopHashtags, base.TopHashtags) {
			t.Errorf("size %d ranking = %v, want %v", size, res.TopHashtags, base.TopHashtags)
		}
		if res.Workers != size {
			t.Errorf("Workers = %d, want %d", res.Workers, size)
		}
	}
}

func TestRunLocal_MissingDataset(t *testing.T) {
	job := Job{Dataset: filepath.Join(t.TempDir(), "missing.json"), TopN: 10, Extractor: extractor.New()}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := RunLocal(ctx, quietLogger(), job, 3); err == nil {
		t.Error("RunLocal() error = nil for missing dataset")
	}
}

func TestRunLocal_InvalidSize(t *testing.T) {
	if _, err := RunLocal(context.Background(), quietLogger(), Job{Extractor: extractor.New()}, 0); err == nil {
		t.Error("RunLocal() accepted zero workers")
	}
}

func TestRun_OverHTTP(t *testing.T) {
	path := writeDataset(t, scenario)
	job := Job{Dataset: path, TopN: 5, Extractor: extractor.New()}

	srv, err := gather.NewServer("127.0.0.1:0", 2, quietLogger())
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	workerID := partition.Identity{Rank: 1, Size: 2}
	client, err := gather.NewClient(srv.Addr(), workerID, quietLogger())
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	errc := make(chan error, 1)
	go func() {
		res, err := Run(ctx, quietLogger(), job, workerID, client)
		if res != nil {
			t.Errorf("worker got result %+v, want nil", res)
		}
		errc <- err
	}()

	res, err := Run(ctx, quietLogger(), job, partition.Identity{Rank: 0, Size: 2}, srv)
	if err != nil {
		t.Fatalf("coordinator Run() error = %v", err)
	}
	if err := <-errc; err != nil {
		t.Fatalf("worker Run() error = %v", err)
	}

	want := []models.RankedEntry{{Token: "x", Count: 2}, {Token: "y", Count: 1}}
	if !reflect.DeepEqual(res.TopHashtags, want) {
		t.Errorf("TopHashtags = %v, want %v", res.TopHashtags, want)
	}
}
