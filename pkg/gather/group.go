package gather

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/MrDoghead/COMP90024-project1/models"
	"github.com/MrDoghead/COMP90024-project1/pkg/partition"
)

// Group is an in-process gather transport shared by all members of one group.
type Group struct {
	size   int
	mu     sync.Mutex
	rounds map[string]*round
}

type round struct {
	tallies []*models.Tally
	arrived int
	done    chan struct{}
}

func NewGroup(size int) (*Group, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid group size %d", size)
	}
	return &Group{size: size, rounds: make(map[string]*round)}, nil
}

func (g *Group) Size() int { return g.size }

// Member returns the gatherer used by the worker with the given identity.
func (g *Group) Member(id partition.Identity) (*Member, error) {
	if id.Size != g.size {
		return nil, fmt.Errorf("identity %s does not belong to a group of %d", id, g.size)
	}
	if id.Rank < 0 || id.Rank >= g.size {
		return nil, fmt.Errorf("rank %d out of range for group of %d", id.Rank, g.size)
	}
	return &Member{group: g, id: id}, nil
}

// contribute records rank's tally for the named round and returns the round so the
// caller can wait on it.
func (g *Group) contribute(name string, rank int, t *models.Tally) (*round, error) {
	if t == nil {
		return nil, errors.New("nil tally")
	}
	if rank < 0 || rank >= g.size {
		return nil, fmt.Errorf("rank %d out of range for group of %d", rank, g.size)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	r, ok := g.rounds[name]
	if !ok {
		r = &round{tallies: make([]*models.Tally, g.size), done: make(chan struct{})}
		g.rounds[name] = r
	}
	if r.tallies[rank] != nil {
		return nil, fmt.Errorf("rank %d already contributed to round %q", rank, name)
	}

	r.tallies[rank] = t
	r.arrived++
	if r.arrived == g.size {
		close(r.done)
	}
	return r, nil
}

// finish drops a completed round.
func (g *Group) finish(name string, r *round) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.rounds[name] == r {
		delete(g.rounds, name)
	}
}

// Member is a Gatherer bound to one rank of a Group.
type Member struct {
	group *Group
	id    partition.Identity
}

func (m *Member) Gather(ctx context.Context, name string, local *models.Tally) ([]*models.Tally, error) {
	r, err := m.group.contribute(name, m.id.Rank, local)
	if err != nil {
		return nil, err
	}

	select {
	case <-r.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if !m.id.IsCoordinator() {
		return nil, nil
	}
	m.group.finish(name, r)
	return r.tallies, nil
}

func (m *Member) Close() error { return nil }
