package rank

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/MrDoghead/COMP90024-project1/models"
	"github.com/MrDoghead/COMP90024-project1/pkg/caching"
	"github.com/MrDoghead/COMP90024-project1/pkg/db"
	"github.com/MrDoghead/COMP90024-project1/pkg/gather"
	"github.com/MrDoghead/COMP90024-project1/pkg/mapreduce"
	"github.com/MrDoghead/COMP90024-project1/pkg/mongostore"
	"github.com/MrDoghead/COMP90024-project1/pkg/partition"
	"github.com/MrDoghead/COMP90024-project1/pkg/pipeline"
	"github.com/MrDoghead/COMP90024-project1/pkg/report"
	"github.com/MrDoghead/COMP90024-project1/pkg/storage"
)

const summaryKeywords = 25

// RankAction ranks every dataset in one process, using goroutines as workers.
func RankAction(c *cli.Context) error {
	logger := newLogger(c)

	cfg, err := configFromFlags(c)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), ExitConfig)
	}
	if cfg.Workers <= 0 {
		return cli.Exit(fmt.Sprintf("Error: workers must be > 0, got %d", cfg.Workers), ExitConfig)
	}
	ex, err := newExtractor(cfg, logger)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), ExitConfig)
	}
	if err := checkDatasets(cfg, logger); err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), ExitConfig)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	runID := uuid.NewString()
	logger.Info("Starting run", "run_id", runID, "datasets", len(cfg.Datasets), "workers", cfg.Workers, "trim", ex.TrimRule().String())

	var cache *caching.Cache
	if cfg.CacheDir != "" {
		if cache, err = caching.NewCache(cfg.CacheDir, cfg.CacheTTL); err != nil {
			return cli.Exit(fmt.Sprintf("Error: %v", err), ExitConfig)
		}
	}

	results := make([]*pipeline.Result, 0, len(cfg.Datasets))
	for i, dataset := range cfg.Datasets {
		job := pipeline.Job{Dataset: dataset, Round: roundName(i, dataset), TopN: cfg.TopN, Extractor: ex}
		res, err := rankLocal(ctx, logger, cfg, cache, job)
		if err != nil {
			return cli.Exit(fmt.Sprintf("Error: dataset %s: %v", dataset, err), ExitRuntime)
		}
		results = append(results, res)
	}

	return publish(ctx, logger, cfg, runID, "local", ex.TrimRule().String(), results)
}

// rankLocal runs one job in-process, going through the tally cache when one is configured.
func rankLocal(ctx context.Context, logger *slog.Logger, cfg *models.Config, cache *caching.Cache, job pipeline.Job) (*pipeline.Result, error) {
	if cache == nil {
		return pipeline.RunLocal(ctx, logger, job, cfg.Workers)
	}

	s := &storage.Storage{}
	stats, err := s.GetFileStats(job.Dataset)
	if err != nil {
		return nil, err
	}
	key := caching.DatasetKey(job.Dataset, stats.SizeBytes, stats.ModTime, job.Extractor.TrimRule().String(), cfg.DetectLanguage)

	if global, ok := cache.Get(key); ok {
		logger.Info("Using cached tally", "dataset", job.Dataset)
		return pipeline.NewResult(job.Dataset, cfg.Workers, global, job.TopN), nil
	}

	res, err := pipeline.RunLocal(ctx, logger, job, cfg.Workers)
	if err != nil {
		return nil, err
	}
	if err := cache.Set(key, res.Global); err != nil {
		logger.Warn("Failed to cache tally", "dataset", job.Dataset, "error", err)
	}
	return res, nil
}

// WorkerAction plays one rank of a multi-process group. Every rank runs the same
// command; only the coordinator prints and stores the rankings.
func WorkerAction(c *cli.Context) error {
	logger := newLogger(c)

	cfg, err := configFromFlags(c)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), ExitConfig)
	}
	id, err := partition.NewIdentity(c.Int("rank"), c.Int("size"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), ExitConfig)
	}
	ex, err := newExtractor(cfg, logger)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), ExitConfig)
	}
	if err := checkDatasets(cfg, logger); err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), ExitConfig)
	}

	runID := c.String("run-id")
	if runID == "" {
		if cfg.Transport.Kind == "kafka" && id.Size > 1 {
			return cli.Exit("Error: --run-id is required with the kafka transport", ExitConfig)
		}
		runID = uuid.NewString()
	}
	logger = logger.With("rank", id.Rank, "size", id.Size, "run_id", runID)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, err := newGatherer(cfg, id, runID, logger)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), ExitRuntime)
	}
	defer g.Close()

	results := make([]*pipeline.Result, 0, len(cfg.Datasets))
	for i, dataset := range cfg.Datasets {
		job := pipeline.Job{Dataset: dataset, Round: roundName(i, dataset), TopN: cfg.TopN, Extractor: ex}
		res, err := pipeline.Run(ctx, logger, job, id, g)
		if err != nil {
			return cli.Exit(fmt.Sprintf("Error: dataset %s: %v", dataset, err), ExitRuntime)
		}
		if res != nil {
			results = append(results, res)
		}
	}

	if !id.IsCoordinator() {
		logger.Info("Worker finished", "datasets", len(cfg.Datasets))
		return nil
	}
	return publish(ctx, logger, cfg, runID, cfg.Transport.Kind, ex.TrimRule().String(), results)
}

// newGatherer opens the transport selected in cfg for one rank.
func newGatherer(cfg *models.Config, id partition.Identity, runID string, logger *slog.Logger) (gather.Gatherer, error) {
	if id.Size == 1 {
		g, err := gather.NewGroup(1)
		if err != nil {
			return nil, err
		}
		return g.Member(id)
	}

	switch cfg.Transport.Kind {
	case "http":
		if id.IsCoordinator() {
			return gather.NewServer(cfg.Transport.ListenAddr, id.Size, logger)
		}
		return gather.NewClient(cfg.Transport.Coordinator, id, logger)
	case "kafka":
		return gather.NewKafka(gather.KafkaConfig{
			Brokers: cfg.Transport.KafkaBrokers,
			Topic:   cfg.Transport.KafkaTopic,
			RunID:   runID,
		}, id, logger)
	default:
		return nil, fmt.Errorf("unknown transport %q (want http or kafka)", cfg.Transport.Kind)
	}
}

// publish prints the rankings and hands them to the configured stores.
func publish(ctx context.Context, logger *slog.Logger, cfg *models.Config, runID, transport, trim string, results []*pipeline.Result) error {
	reports := make([]report.Report, 0, len(results))
	for _, res := range results {
		r := report.New(res.Dataset, cfg.TopN, res.TopHashtags, res.TopLanguages)
		r.RunID = runID
		r.Workers = res.Workers
		reports = append(reports, r)
		logger.Info("Dataset ranked", "dataset", res.Dataset, "elapsed", res.Elapsed.String(),
			"hashtag_total", res.Global.Hashtags.Total(), "language_total", res.Global.Languages.Total())
	}

	if err := writeReports(cfg, reports); err != nil {
		return cli.Exit(fmt.Sprintf("Error: failed to write report: %v", err), ExitRuntime)
	}

	var errs []error
	if !cfg.DisableDB {
		if err := saveRuns(cfg.DBPath, runID, transport, trim, cfg.TopN, results); err != nil {
			errs = append(errs, err)
		} else {
			logger.Info("Run stored", "run_id", runID, "db", cfg.DBPath)
		}
	}
	if cfg.MongoURI != "" {
		if err := saveCounts(ctx, cfg.MongoURI, runID, results); err != nil {
			errs = append(errs, err)
		} else {
			logger.Info("Counts stored in mongodb", "run_id", runID)
		}
	}
	if len(errs) > 0 {
		return cli.Exit(fmt.Sprintf("Error: %v", errors.Join(errs...)), ExitRuntime)
	}
	return nil
}

func writeReports(cfg *models.Config, reports []report.Report) error {
	if cfg.Output == "" {
		return report.Write(os.Stdout, cfg.Format, reports)
	}

	var buf bytes.Buffer
	if err := report.Write(&buf, cfg.Format, reports); err != nil {
		return err
	}
	s := &storage.Storage{}
	return s.SaveFile(cfg.Output, buf.Bytes())
}

func saveRuns(path, runID, transport, trim string, topN int, results []*pipeline.Result) error {
	database, err := db.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	for _, res := range results {
		run := db.Run{
			RunID:             runID,
			Dataset:           res.Dataset,
			Workers:           res.Workers,
			TopN:              topN,
			Trim:              trim,
			Transport:         transport,
			HashtagTotal:      res.Global.Hashtags.Total(),
			LanguageTotal:     res.Global.Languages.Total(),
			DistinctHashtags:  len(res.Global.Hashtags),
			DistinctLanguages: len(res.Global.Languages),
			ElapsedMS:         res.Elapsed.Milliseconds(),
			TopHashtags:       mapreduce.TopKeywords(res.Global.Hashtags, summaryKeywords),
			TopLanguages:      mapreduce.TopKeywords(res.Global.Languages, summaryKeywords),
		}
		if err := database.InsertRun(run); err != nil {
			return err
		}
		if err := database.InsertRanking(runID, res.Dataset, db.KindHashtag, res.TopHashtags); err != nil {
			return err
		}
		if err := database.InsertRanking(runID, res.Dataset, db.KindLanguage, res.TopLanguages); err != nil {
			return err
		}
	}
	return nil
}

func saveCounts(ctx context.Context, uri, runID string, results []*pipeline.Result) error {
	store, err := mongostore.Open(ctx, uri, mongostore.DefaultDatabase)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = store.Close(closeCtx)
	}()

	for _, res := range results {
		if err := store.Save(ctx, runID, res.Dataset, res.Global); err != nil {
			return err
		}
	}
	return nil
}
