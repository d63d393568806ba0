package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/MrDoghead/COMP90024-project1/internal/rank"
	"github.com/MrDoghead/COMP90024-project1/internal/runs"
	"github.com/MrDoghead/COMP90024-project1/models"
	"github.com/MrDoghead/COMP90024-project1/pkg/help"
)

var version = "dev"

func main() {
	historyFlags := []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			Value:   models.DefaultDBPath,
			Usage:   "SQLite run history file",
			EnvVars: []string{"TWEETRANK_DB"},
		},
	}

	app := &cli.App{
		Name:    "tweetrank",
		Usage:   "rank hashtags and languages across line-delimited tweet dumps",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:      "rank",
				Usage:     "rank datasets in one process using goroutine workers",
				ArgsUsage: "[dataset...]",
				Flags:     rank.RankFlags(),
				Action:    rank.RankAction,
			},
			{
				Name:      "worker",
				Usage:     "run one rank of a multi-process group",
				ArgsUsage: "[dataset...]",
				Flags:     rank.WorkerFlags(),
				Action:    rank.WorkerAction,
			},
			{
				Name:  "runs",
				Usage: "list stored runs",
				Flags: append(historyFlags, &cli.IntFlag{
					Name:  "limit",
					Value: 20,
					Usage: "maximum number of rows, 0 for all",
				}),
				Action: runs.RunsAction,
			},
			{
				Name:      "show",
				Usage:     "print the stored rankings of a run (latest if no ID given)",
				ArgsUsage: "[run-id]",
				Flags: append(historyFlags,
					&cli.StringFlag{
						Name:  "format",
						Value: "text",
						Usage: "output format: text, yaml or json",
					},
					&cli.StringFlag{
						Name:    "mongo-uri",
						Usage:   "also print cumulative counts stored in MongoDB",
						EnvVars: []string{"TWEETRANK_MONGO_URI"},
					},
				),
				Action: runs.ShowAction,
			},
			{
				Name:  "quickstart",
				Usage: "print a YAML cheat sheet",
				Action: func(c *cli.Context) error {
					fmt.Print(help.ColdstartYAML)
					return nil
				},
			},
		},
	}

	// Actions exit through cli.Exit with their own codes; anything else is a usage error.
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(rank.ExitConfig)
	}
}
