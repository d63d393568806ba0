// Package partition assigns input lines to workers.
package partition

import "fmt"

// Coordinator is the rank that gathers, reduces and ranks.
const Coordinator = 0

// Identity is a worker's place in the group. It is fixed for the lifetime of a run.
type Identity struct {
	Rank int
	Size int
}

// NewIdentity validates rank and size. Scanning must not start with an invalid identity.
func NewIdentity(rank, size int) (Identity, error) {
	if size <= 0 {
		return Identity{}, fmt.Errorf("invalid worker count %d: must be > 0", size)
	}
	if rank < 0 || rank >= size {
		return Identity{}, fmt.Errorf("invalid rank %d: must be in [0,%d)", rank, size)
	}
	return Identity{Rank: rank, Size: size}, nil
}

// Owns reports whether the 1-based line index belongs to this worker.
func (id Identity) Owns(lineIndex int) bool {
	return lineIndex%id.Size == id.Rank
}

func (id Identity) IsCoordinator() bool {
	return id.Rank == Coordinator
}

func (id Identity) String() string {
	return fmt.Sprintf("%d/%d", id.Rank, id.Size)
}

// Group returns one identity per rank for a group of the given size.
func Group(size int) ([]Identity, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid worker count %d: must be > 0", size)
	}
	ids := make([]Identity, size)
	for rank := range ids {
		ids[rank] = Identity{Rank: rank, Size: size}
	}
	return ids, nil
}
