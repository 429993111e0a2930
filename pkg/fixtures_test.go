package pdsp

import (
	"fmt"
	"sync"
)

type rawHit struct {
	wire     float32
	time     float32
	integral float32
}

type fixtureEvent struct {
	id    EventID
	hits  [NPlanes][]rawHit
	truth *Truth
}

// makeGroup builds a MemGroup from events. Truth is attached when the first
// event carries it.
func makeGroup(events ...fixtureEvent) MemGroup {
	var g MemGroup
	hasTruth := len(events) > 0 && events[0].truth != nil
	var truth TruthTable
	for _, e := range events {
		g.EventIDs = append(g.EventIDs, e.id)
		var n [NPlanes]int
		for p := 0; p < NPlanes; p++ {
			n[p] = len(e.hits[p])
			table := &g.Planes[p]
			for _, h := range e.hits[p] {
				table.EventID = append(table.EventID, e.id)
				table.Wire = append(table.Wire, h.wire)
				table.Time = append(table.Time, h.time)
				table.Integral = append(table.Integral, h.integral)
			}
		}
		g.NHits = append(g.NHits, n)
		if hasTruth {
			truth.PDG = append(truth.PDG, e.truth.PDG)
			truth.Interacted = append(truth.Interacted, e.truth.Interacted)
			truth.NNeutron = append(truth.NNeutron, e.truth.NNeutron)
			truth.NProton = append(truth.NProton, e.truth.NProton)
			truth.NPiPlus = append(truth.NPiPlus, e.truth.NPiPlus)
			truth.NPiMinus = append(truth.NPiMinus, e.truth.NPiMinus)
			truth.NPi0 = append(truth.NPi0, e.truth.NPi0)
		}
	}
	if hasTruth {
		g.Truth = &truth
	}
	return g
}

// hitsOnAllPlanes returns n hits per plane with distinct wires.
func hitsOnAllPlanes(n int) [NPlanes][]rawHit {
	var hits [NPlanes][]rawHit
	for p := 0; p < NPlanes; p++ {
		for i := 0; i < n; i++ {
			hits[p] = append(hits[p], rawHit{
				wire:     float32(10*p + i),
				time:     float32(1000 + 10*i),
				integral: float32(p*100 + i),
			})
		}
	}
	return hits
}

func signalTruth() *Truth {
	return &Truth{PDG: PDGPiPlus, Interacted: true}
}

// syntheticStore holds ngroups groups of eventsPerGroup signal events each.
func syntheticStore(ngroups, eventsPerGroup int) *MemStore {
	store := NewMemStore()
	for g := 0; g < ngroups; g++ {
		var events []fixtureEvent
		for e := 0; e < eventsPerGroup; e++ {
			events = append(events, fixtureEvent{
				id:    NewEventID(1, uint32(g), uint32(e)),
				hits:  hitsOnAllPlanes(e + 1),
				truth: signalTruth(),
			})
		}
		store.AddGroup(fmt.Sprintf("g%03d", g), makeGroup(events...))
	}
	return store
}

// failingStore fails or panics when reading the hits of one group.
type failingStore struct {
	*MemStore
	key   string
	panic bool
}

func (s failingStore) PlaneHits(key string, planeID int) (HitTable, error) {
	if key == s.key {
		if s.panic {
			panic("corrupted table")
		}
		return HitTable{}, fmt.Errorf("read error")
	}
	return s.MemStore.PlaneHits(key, planeID)
}

type recordingLogger struct {
	mu       sync.Mutex
	infos    []string
	errorMsg []string
}

func (l *recordingLogger) Info(message string, module string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, module+": "+message)
}

func (l *recordingLogger) Error(message string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errorMsg = append(l.errorMsg, message)
}
