package rank

import (
	"github.com/urfave/cli/v2"

	"github.com/MrDoghead/COMP90024-project1/models"
)

// CommonFlags are shared by rank and worker.
func CommonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Value:   models.DefaultConfigPath,
			Usage:   "YAML config file; flags override its values",
			EnvVars: []string{"TWEETRANK_CONFIG"},
		},
		&cli.StringSliceFlag{
			Name:    "dataset",
			Aliases: []string{"d"},
			Usage:   "line-delimited JSON dump to rank (repeatable)",
		},
		&cli.IntFlag{
			Name:    "top",
			Aliases: []string{"k"},
			Value:   models.DefaultTopN,
			Usage:   "number of entries per ranking",
		},
		&cli.StringFlag{
			Name:  "trim",
			Value: models.DefaultTrim,
			Usage: "line trim rule: row, fixed:N or none",
		},
		&cli.StringFlag{
			Name:  "format",
			Value: "text",
			Usage: "output format: text, yaml or json",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "write the report to this file instead of stdout",
		},
		&cli.BoolFlag{
			Name:  "detect-lang",
			Usage: "detect the language of doc.text when doc.lang is missing",
		},
		&cli.Float64Flag{
			Name:  "min-confidence",
			Value: 0.5,
			Usage: "minimum detector confidence used with --detect-lang",
		},
		&cli.StringFlag{
			Name:    "db",
			Value:   models.DefaultDBPath,
			Usage:   "SQLite run history file",
			EnvVars: []string{"TWEETRANK_DB"},
		},
		&cli.BoolFlag{
			Name:  "no-db",
			Usage: "do not record the run in the history database",
		},
		&cli.StringFlag{
			Name:    "mongo-uri",
			Usage:   "also add global counts to MongoDB at this URI",
			EnvVars: []string{"TWEETRANK_MONGO_URI"},
		},
		&cli.BoolFlag{
			Name:    "quiet",
			Aliases: []string{"q"},
			Usage:   "only log errors",
		},
	}
}

// RankFlags are the flags of the single-process rank command.
func RankFlags() []cli.Flag {
	return append(CommonFlags(),
		&cli.IntFlag{
			Name:    "workers",
			Aliases: []string{"w"},
			Value:   models.DefaultWorkers,
			Usage:   "number of goroutine workers",
		},
		&cli.StringFlag{
			Name:  "cache-dir",
			Usage: "reuse global tallies of unchanged datasets from this directory",
		},
		&cli.DurationFlag{
			Name:  "cache-ttl",
			Value: models.DefaultCacheTTL,
			Usage: "maximum age of a cached tally, 0 keeps entries forever",
		},
	)
}

// WorkerFlags are the flags of one rank in a multi-process group. Rank and size fall
// back to the variables MPI launchers export.
func WorkerFlags() []cli.Flag {
	return append(CommonFlags(),
		&cli.IntFlag{
			Name:    "rank",
			Usage:   "this worker's rank, 0 is the coordinator",
			EnvVars: []string{"TWEETRANK_RANK", "OMPI_COMM_WORLD_RANK", "PMI_RANK"},
		},
		&cli.IntFlag{
			Name:    "size",
			Value:   1,
			Usage:   "number of workers in the group",
			EnvVars: []string{"TWEETRANK_SIZE", "OMPI_COMM_WORLD_SIZE", "PMI_SIZE"},
		},
		&cli.StringFlag{
			Name:  "transport",
			Value: "http",
			Usage: "gather transport: http or kafka",
		},
		&cli.StringFlag{
			Name:  "listen",
			Value: models.DefaultListenAddr,
			Usage: "coordinator listen address (http transport)",
		},
		&cli.StringFlag{
			Name:    "coordinator",
			Usage:   "coordinator address for ranks > 0 (http transport)",
			EnvVars: []string{"TWEETRANK_COORDINATOR"},
		},
		&cli.StringSliceFlag{
			Name:    "kafka-brokers",
			Usage:   "kafka broker addresses (kafka transport)",
			EnvVars: []string{"TWEETRANK_KAFKA_BROKERS"},
		},
		&cli.StringFlag{
			Name:  "kafka-topic",
			Value: models.DefaultKafkaTopic,
			Usage: "topic shared by all ranks (kafka transport)",
		},
		&cli.StringFlag{
			Name:    "run-id",
			Usage:   "run identifier shared by every rank",
			EnvVars: []string{"TWEETRANK_RUN_ID"},
		},
	)
}
