package runs

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	dbpkg "github.com/MrDoghead/COMP90024-project1/pkg/db"
	"github.com/MrDoghead/COMP90024-project1/pkg/mongostore"
	"github.com/MrDoghead/COMP90024-project1/pkg/report"
)

// countReader is the part of mongostore.Store that show needs.
type countReader interface {
	Top(ctx context.Context, collection, dataset string, n int64) ([]mongostore.Count, error)
}

func RunsAction(c *cli.Context) error {
	database, err := dbpkg.Open(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	runs, err := database.ListRuns(c.Int("limit"))
	if err != nil {
		return err
	}
	return printRuns(os.Stdout, runs)
}

// ShowAction prints the stored rankings of a run, or of the latest run when no ID is given
func ShowAction(c *cli.Context) error {
	database, err := dbpkg.Open(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	runID, err := GetRunIDOrLatest(c, database)
	if err != nil {
		return err
	}

	reports, err := loadReports(database, runID)
	if err != nil {
		return err
	}
	if err := report.Write(os.Stdout, c.String("format"), reports); err != nil {
		return err
	}

	uri := c.String("mongo-uri")
	if uri == "" {
		return nil
	}
	store, err := mongostore.Open(c.Context, uri, mongostore.DefaultDatabase)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = store.Close(closeCtx)
	}()

	cumulative, err := loadCumulative(c.Context, store, reports)
	if err != nil {
		return err
	}
	fmt.Println("\nCumulative counts across all stored runs:")
	return report.Write(os.Stdout, c.String("format"), cumulative)
}

// loadCumulative reads the running totals of every dataset in reports, ranked to the same depth.
func loadCumulative(ctx context.Context, counts countReader, reports []report.Report) ([]report.Report, error) {
	cumulative := make([]report.Report, 0, len(reports))
	for _, r := range reports {
		tags, err := counts.Top(ctx, mongostore.HashtagsCollection, r.Dataset, int64(r.TopN))
		if err != nil {
			return nil, err
		}
		langs, err := counts.Top(ctx, mongostore.LanguagesCollection, r.Dataset, int64(r.TopN))
		if err != nil {
			return nil, err
		}
		cumulative = append(cumulative, report.New(r.Dataset, r.TopN, mongostore.Ranking(tags), mongostore.Ranking(langs)))
	}
	return cumulative, nil
}

// GetRunIDOrLatest returns the run ID from args, or the latest run if not provided
func GetRunIDOrLatest(c *cli.Context, database *dbpkg.DB) (string, error) {
	if c.NArg() > 0 {
		return c.Args().First(), nil
	}

	runs, err := database.ListRuns(1)
	if err != nil {
		return "", fmt.Errorf("failed to get latest run: %w", err)
	}
	if len(runs) == 0 {
		return "", fmt.Errorf("no runs found. Run 'tweetrank rank <dataset>' first")
	}
	return runs[0].RunID, nil
}

func printRuns(w io.Writer, runs []dbpkg.Run) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs found")
		return err
	}

	fmt.Fprintf(w, "%-36s %-20s %-8s %-10s %-10s %-10s %s\n",
		"Run ID", "Created", "Workers", "Transport", "Hashtags", "Languages", "Dataset")
	fmt.Fprintln(w, strings.Repeat("-", 120))

	for _, r := range runs {
		fmt.Fprintf(w, "%-36s %-20s %-8d %-10s %-10d %-10d %s\n",
			r.RunID,
			r.CreatedAt.Format("2006-01-02 15:04:05"),
			r.Workers,
			r.Transport,
			r.HashtagTotal,
			r.LanguageTotal,
			r.Dataset,
		)
		if len(r.TopHashtags) > 0 {
			fmt.Fprintf(w, "    top: %s\n", strings.Join(head(r.TopHashtags, 5), ", "))
		}
	}

	fmt.Fprintf(w, "\nTotal: %d runs\n", len(runs))
	_, err := fmt.Fprintf(w, "\nTip: Use 'tweetrank show <run-id>' to see rankings\n")
	return err
}

func loadReports(database *dbpkg.DB, runID string) ([]report.Report, error) {
	runs, err := database.GetRun(runID)
	if err != nil {
		return nil, err
	}

	reports := make([]report.Report, 0, len(runs))
	for _, r := range runs {
		tags, err := database.GetRanking(r.RunID, r.Dataset, dbpkg.KindHashtag)
		if err != nil {
			return nil, err
		}
		langs, err := database.GetRanking(r.RunID, r.Dataset, dbpkg.KindLanguage)
		if err != nil {
			return nil, err
		}
		rep := report.New(r.Dataset, r.TopN, tags, langs)
		rep.RunID = r.RunID
		rep.Workers = r.Workers
		reports = append(reports, rep)
	}
	return reports, nil
}

func head(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
