package models

import "sync"

// SequentialIDGenerator mints uint32 ids starting at 1. Ids handed back
// with Reuse are served again before new ones are minted, most recently
// returned first.
type SequentialIDGenerator struct {
	mutex     sync.Mutex
	currentID uint32
	freeIDs   []uint32
}

// New returns the next id.
func (g *SequentialIDGenerator) New() uint32 {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if n := len(g.freeIDs); n != 0 {
		id := g.freeIDs[n-1]
		g.freeIDs = g.freeIDs[:n-1]
		return id
	}

	g.currentID++
	return g.currentID
}

// Reuse marks the given id as available again.
func (g *SequentialIDGenerator) Reuse(id uint32) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	g.freeIDs = append(g.freeIDs, id)
}
