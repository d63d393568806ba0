// Package pipeline runs partition, tally, gather, reduce and rank for one dataset.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/MrDoghead/COMP90024-project1/models"
	"github.com/MrDoghead/COMP90024-project1/pkg/extractor"
	"github.com/MrDoghead/COMP90024-project1/pkg/gather"
	"github.com/MrDoghead/COMP90024-project1/pkg/mapreduce"
	"github.com/MrDoghead/COMP90024-project1/pkg/partition"
	"github.com/MrDoghead/COMP90024-project1/pkg/tally"
)

// Job defines one dataset to rank.
type Job struct {
	Dataset   string
	Round     string // gather round name; defaults to Dataset
	TopN      int
	Extractor *extractor.Extractor
}

func (j Job) round() string {
	if j.Round != "" {
		return j.Round
	}
	return j.Dataset
}

// Result holds the coordinator's view of a finished job.
type Result struct {
	Dataset      string
	Workers      int
	Global       *models.Tally
	TopHashtags  []models.RankedEntry
	TopLanguages []models.RankedEntry
	Elapsed      time.Duration
}

// Run executes the job as the worker id. Every worker of the group must call Run with
// the same job. Only the coordinator gets a Result; other workers get nil, nil once the
// gather barrier has passed.
func Run(ctx context.Context, logger *slog.Logger, job Job, id partition.Identity, g gather.Gatherer) (*Result, error) {
	if job.Extractor == nil {
		return nil, errors.New("job has no extractor")
	}
	startTime := time.Now()

	logger.Info("Starting local tally", "rank", id.Rank, "size", id.Size, "dataset", job.Dataset, "trim", job.Extractor.TrimRule().String())
	local, stats, err := tally.ScanFile(ctx, job.Dataset, id, job.Extractor)
	if err != nil {
		return nil, fmt.Errorf("rank %d: %w", id.Rank, err)
	}
	logger.Info("Local tally finished", "rank", id.Rank, "lines", stats.Lines, "owned", stats.Owned,
		"with_data", stats.WithData, "hashtags", len(local.Hashtags), "languages", len(local.Languages))

	parts, err := g.Gather(ctx, job.round(), local)
	if err != nil {
		return nil, fmt.Errorf("rank %d: gather failed: %w", id.Rank, err)
	}
	if !id.IsCoordinator() {
		logger.Info("Tally delivered to coordinator", "rank", id.Rank, "dataset", job.Dataset)
		return nil, nil
	}

	global := mapreduce.ReduceTallies(parts)
	logger.Info("Reduce phase complete", "dataset", job.Dataset, "workers", len(parts),
		"hashtags", len(global.Hashtags), "languages", len(global.Languages))

	res := NewResult(job.Dataset, id.Size, global, job.TopN)
	res.Elapsed = time.Since(startTime)
	return res, nil
}

// NewResult ranks an already reduced global tally.
func NewResult(dataset string, workers int, global *models.Tally, topN int) *Result {
	return &Result{
		Dataset:      dataset,
		Workers:      workers,
		Global:       global,
		TopHashtags:  mapreduce.TopN(global.Hashtags, topN),
		TopLanguages: mapreduce.TopN(global.Languages, topN),
	}
}

type outcome struct {
	rank   int
	result *Result
	err    error
}

// RunLocal runs the job with size goroutine workers sharing one in-process gather group.
// Each worker opens the dataset on its own. If any worker fails the others are
// cancelled so nobody waits forever at the barrier.
func RunLocal(ctx context.Context, logger *slog.Logger, job Job, size int) (*Result, error) {
	ids, err := partition.Group(size)
	if err != nil {
		return nil, err
	}
	group, err := gather.NewGroup(size)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	results := make(chan outcome, size)
	for _, id := range ids {
		member, err := group.Member(id)
		if err != nil {
			return nil, err
		}
		wg.Add(1)
		go worker(ctx, cancel, logger, job, id, member, &wg, results)
	}

	wg.Wait()
	close(results)

	var coordinator *Result
	var errs []error
	canceled := 0
	for o := range results {
		if o.err != nil {
			// Workers cancelled because of a peer's failure only add noise.
			if errors.Is(o.err, context.Canceled) {
				canceled++
				continue
			}
			errs = append(errs, o.err)
			continue
		}
		if o.rank == partition.Coordinator {
			coordinator = o.result
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if canceled > 0 {
		return nil, ctx.Err()
	}
	return coordinator, nil
}

// worker is a goroutine that plays one rank of a local group.
func worker(ctx context.Context, cancel context.CancelFunc, logger *slog.Logger, job Job, id partition.Identity, g gather.Gatherer, wg *sync.WaitGroup, results chan<- outcome) {
	defer wg.Done()

	res, err := Run(ctx, logger, job, id, g)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker failed", "rank", id.Rank, "error", err)
		cancel()
	}
	results <- outcome{rank: id.Rank, result: res, err: err}
}
