// Package tally runs one worker's single streaming pass over the input.
package tally

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/MrDoghead/COMP90024-project1/models"
	"github.com/MrDoghead/COMP90024-project1/pkg/extractor"
	"github.com/MrDoghead/COMP90024-project1/pkg/partition"
)

// cancelCheckEvery is how many lines pass between context checks.
const cancelCheckEvery = 4096

const readBufferSize = 1 << 20

// Stats describes a finished scan.
type Stats struct {
	Lines      int `json:"lines" yaml:"lines"`
	Owned      int `json:"owned" yaml:"owned"`
	WithData   int `json:"with_data" yaml:"with_data"`
	EmptyOwned int `json:"empty_owned" yaml:"empty_owned"`
}

// ScanFile opens path and scans it. Every worker opens its own handle.
func ScanFile(ctx context.Context, path string, id partition.Identity, ex *extractor.Extractor) (*models.Tally, Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	return Scan(ctx, f, id, ex)
}

// Scan reads r line by line, numbering lines from 1, and folds every line owned by id
// into a fresh tally. Lines are never buffered beyond the one being read.
// Only read errors are returned; unparseable lines simply contribute nothing.
func Scan(ctx context.Context, r io.Reader, id partition.Identity, ex *extractor.Extractor) (*models.Tally, Stats, error) {
	if _, err := partition.NewIdentity(id.Rank, id.Size); err != nil {
		return nil, Stats{}, err
	}

	t := models.NewTally()
	var stats Stats
	br := bufio.NewReaderSize(r, readBufferSize)

	for {
		line, err := br.ReadBytes('\n')
		if len(line) > 0 {
			stats.Lines++
			if id.Owns(stats.Lines) {
				stats.Owned++
				rec := ex.Extract(line)
				if rec.IsEmpty() {
					stats.EmptyOwned++
				} else {
					stats.WithData++
					t.Add(rec)
				}
			}

			if stats.Lines%cancelCheckEvery == 0 {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return nil, stats, ctxErr
				}
			}
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, stats, fmt.Errorf("failed to read line %d: %w", stats.Lines+1, err)
		}
	}

	return t, stats, nil
}
