package rank

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/MrDoghead/COMP90024-project1/models"
	"github.com/MrDoghead/COMP90024-project1/pkg/extractor"
	"github.com/MrDoghead/COMP90024-project1/pkg/langdetect"
	"github.com/MrDoghead/COMP90024-project1/pkg/storage"
)

// Exit codes returned through cli.Exit.
const (
	ExitConfig  = 1
	ExitRuntime = 2
)

func newLogger(c *cli.Context) *slog.Logger {
	logLevel := slog.LevelInfo
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

// configFromFlags loads the YAML config and applies every flag the user set on top.
func configFromFlags(c *cli.Context) (*models.Config, error) {
	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}

	if c.IsSet("dataset") {
		cfg.Datasets = c.StringSlice("dataset")
	}
	// Positional arguments are datasets too.
	if c.NArg() > 0 {
		cfg.Datasets = append(cfg.Datasets, c.Args().Slice()...)
	}
	if c.IsSet("top") {
		cfg.TopN = c.Int("top")
	}
	if c.IsSet("workers") {
		cfg.Workers = c.Int("workers")
	}
	if c.IsSet("trim") {
		cfg.Trim = c.String("trim")
	}
	if c.IsSet("format") {
		cfg.Format = c.String("format")
	}
	if c.IsSet("output") {
		cfg.Output = c.String("output")
	}
	if c.IsSet("detect-lang") {
		cfg.DetectLanguage = c.Bool("detect-lang")
	}
	if c.IsSet("min-confidence") {
		cfg.MinConfidence = c.Float64("min-confidence")
	}
	if c.IsSet("db") {
		cfg.DBPath = c.String("db")
	}
	if c.IsSet("no-db") {
		cfg.DisableDB = c.Bool("no-db")
	}
	if c.IsSet("mongo-uri") {
		cfg.MongoURI = c.String("mongo-uri")
	}
	if c.IsSet("cache-dir") {
		cfg.CacheDir = c.String("cache-dir")
	}
	if c.IsSet("cache-ttl") {
		cfg.CacheTTL = c.Duration("cache-ttl")
	}
	if c.IsSet("transport") {
		cfg.Transport.Kind = c.String("transport")
	}
	if c.IsSet("listen") {
		cfg.Transport.ListenAddr = c.String("listen")
	}
	if c.IsSet("coordinator") {
		cfg.Transport.Coordinator = c.String("coordinator")
	}
	if c.IsSet("kafka-brokers") {
		cfg.Transport.KafkaBrokers = c.StringSlice("kafka-brokers")
	}
	if c.IsSet("kafka-topic") {
		cfg.Transport.KafkaTopic = c.String("kafka-topic")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newExtractor builds the line extractor described by cfg.
func newExtractor(cfg *models.Config, logger *slog.Logger) (*extractor.Extractor, error) {
	rule, err := extractor.ParseTrimRule(cfg.Trim)
	if err != nil {
		return nil, err
	}

	opts := []extractor.Option{extractor.WithTrimRule(rule)}
	if cfg.DetectLanguage {
		logger.Info("Building language detector", "min_confidence", cfg.MinConfidence)
		opts = append(opts, extractor.WithLanguageDetector(langdetect.New(cfg.MinConfidence)))
	}
	return extractor.New(opts...), nil
}

// checkDatasets stats every dataset so a typo fails before any scanning starts.
func checkDatasets(cfg *models.Config, logger *slog.Logger) error {
	s := &storage.Storage{}
	for _, dataset := range cfg.Datasets {
		stats, err := s.GetFileStats(dataset)
		if err != nil {
			return fmt.Errorf("dataset %s: %w", dataset, err)
		}
		logger.Info("Dataset found", "dataset", dataset, "size_bytes", stats.SizeBytes,
			"modified", stats.ModTime.Format("2006-01-02 15:04:05"))
	}
	return nil
}

// roundName keeps gather rounds of different datasets apart within one run.
func roundName(index int, dataset string) string {
	return fmt.Sprintf("%d:%s", index, dataset)
}
