// Package gather moves every worker's local tally to the coordinator.
//
// A gather round is a barrier: Gather returns only once every rank of the group has
// contributed to the round. The coordinator gets all tallies indexed by rank; other
// workers get nil. A worker that never contributes stalls the round until the caller's
// context ends.
package gather

import (
	"context"

	"github.com/MrDoghead/COMP90024-project1/models"
)

const (
	KindTally    = "tally"
	KindComplete = "complete"
)

// Gatherer is one worker's handle on a gather transport.
type Gatherer interface {
	Gather(ctx context.Context, round string, local *models.Tally) ([]*models.Tally, error)
	Close() error
}

// Envelope is the wire form of one worker's contribution.
type Envelope struct {
	RunID     string              `json:"run_id,omitempty"`
	Round     string              `json:"round"`
	Kind      string              `json:"kind"`
	Rank      int                 `json:"rank"`
	Size      int                 `json:"size"`
	Hashtags  models.FrequencyMap `json:"hashtags,omitempty"`
	Languages models.FrequencyMap `json:"languages,omitempty"`
}

// Tally returns the envelope payload with non-nil maps.
func (e Envelope) Tally() *models.Tally {
	t := models.NewTally()
	for k, v := range e.Hashtags {
		t.Hashtags[k] = v
	}
	for k, v := range e.Languages {
		t.Languages[k] = v
	}
	return t
}
