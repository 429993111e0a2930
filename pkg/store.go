package pdsp

import (
	"fmt"
	"sync"

	"golang.org/x/exp/slices"
)

// HitTable is the content of one plane_{p}_hits group, one entry per hit.
type HitTable struct {
	EventID  []EventID
	Wire     []float32
	Time     []float32
	Integral []float32
}

func (t HitTable) Len() int {
	return len(t.EventID)
}

func (t HitTable) check() error {
	n := len(t.EventID)
	if len(t.Wire) != n {
		return &ErrMisaligned{What: "hit table wire column", Want: n, Got: len(t.Wire)}
	}
	if len(t.Time) != n {
		return &ErrMisaligned{What: "hit table time column", Want: n, Got: len(t.Time)}
	}
	if len(t.Integral) != n {
		return &ErrMisaligned{What: "hit table integral column", Want: n, Got: len(t.Integral)}
	}
	return nil
}

// TruthTable is the content of a group's truth subgroup, one entry per event.
type TruthTable struct {
	PDG        []int32
	Interacted []bool
	NNeutron   []int32
	NProton    []int32
	NPiPlus    []int32
	NPiMinus   []int32
	NPi0       []int32
}

func (t TruthTable) Len() int {
	return len(t.PDG)
}

func (t TruthTable) check() error {
	n := len(t.PDG)
	columns := map[string]int{
		"interacted": len(t.Interacted),
		"n_neutron":  len(t.NNeutron),
		"n_proton":   len(t.NProton),
		"n_piplus":   len(t.NPiPlus),
		"n_piminus":  len(t.NPiMinus),
		"n_pi0":      len(t.NPi0),
	}
	for name, got := range columns {
		if got != n {
			return &ErrMisaligned{What: "truth column " + name, Want: n, Got: got}
		}
	}
	return nil
}

func (t TruthTable) At(i int) Truth {
	return Truth{
		PDG:        t.PDG[i],
		Interacted: t.Interacted[i],
		NProton:    t.NProton[i],
		NNeutron:   t.NNeutron[i],
		NPiPlus:    t.NPiPlus[i],
		NPiMinus:   t.NPiMinus[i],
		NPi0:       t.NPi0[i],
	}
}

// HitStore is the read-only view of the input file used during ingestion.
// Implementations must be safe for concurrent use.
type HitStore interface {
	Keys() ([]string, error)
	EventIDs(key string) ([]EventID, error)
	NHits(key string) ([][NPlanes]int, error)
	PlaneHits(key string, planeID int) (HitTable, error)
	// Truth returns found=false when the group carries no truth information.
	Truth(key string) (table TruthTable, found bool, err error)
}

// MemGroup is one top-level group of a MemStore.
type MemGroup struct {
	EventIDs []EventID
	NHits    [][NPlanes]int
	Planes   [NPlanes]HitTable
	Truth    *TruthTable
}

// MemStore is an in-memory HitStore.
type MemStore struct {
	mu     sync.RWMutex
	groups map[string]MemGroup
}

func NewMemStore() *MemStore {
	return &MemStore{groups: make(map[string]MemGroup)}
}

func (s *MemStore) AddGroup(key string, group MemGroup) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups[key] = group
}

func (s *MemStore) group(key string) (MemGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.groups[key]
	if !ok {
		return MemGroup{}, fmt.Errorf("group %q not found", key)
	}
	return g, nil
}

// Keys are returned sorted, matching the name order of an HDF5 file.
func (s *MemStore) Keys() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.groups))
	for k := range s.groups {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys, nil
}

func (s *MemStore) EventIDs(key string) ([]EventID, error) {
	g, err := s.group(key)
	if err != nil {
		return nil, err
	}
	return g.EventIDs, nil
}

func (s *MemStore) NHits(key string) ([][NPlanes]int, error) {
	g, err := s.group(key)
	if err != nil {
		return nil, err
	}
	return g.NHits, nil
}

func (s *MemStore) PlaneHits(key string, planeID int) (HitTable, error) {
	if !validPlane(planeID) {
		return HitTable{}, &ErrInvalidPlane{PlaneID: planeID}
	}
	g, err := s.group(key)
	if err != nil {
		return HitTable{}, err
	}
	return g.Planes[planeID], nil
}

func (s *MemStore) Truth(key string) (TruthTable, bool, error) {
	g, err := s.group(key)
	if err != nil {
		return TruthTable{}, false, err
	}
	if g.Truth == nil {
		return TruthTable{}, false, nil
	}
	return *g.Truth, true, nil
}

// FirstRun returns the run number of the first event of the store, taking
// groups in key order.
func FirstRun(store HitStore) (int, error) {
	keys, err := store.Keys()
	if err != nil {
		return 0, fmt.Errorf("error listing groups: %w", err)
	}
	for _, key := range keys {
		ids, err := store.EventIDs(key)
		if err != nil {
			return 0, fmt.Errorf("error reading event ids of group %q: %w", key, err)
		}
		if len(ids) == 0 {
			continue
		}
		run, ok := ids[0].Run()
		if !ok {
			return 0, fmt.Errorf("event id %v of group %q carries no run number", ids[0], key)
		}
		return run, nil
	}
	return 0, fmt.Errorf("no events in store")
}
