package pdsp

import (
	"fmt"
	"strings"
)

const (
	NPlanes = 3
	// MaxEventIDLen is the largest number of components an event id can have.
	MaxEventIDLen = 4
)

// EventID identifies an event in the source file. The hit dumper writes
// (run, subrun, event) triplets, older files a single event number. Two ids
// are equal when they have the same components, so EventID can be compared
// with == and used as a map key.
type EventID struct {
	components [MaxEventIDLen]uint32
	n          int
}

// NewEventID panics if given more than MaxEventIDLen components.
func NewEventID(components ...uint32) EventID {
	if len(components) > MaxEventIDLen {
		panic(fmt.Sprintf("event id with %d components, at most %d supported", len(components), MaxEventIDLen))
	}
	var id EventID
	id.n = copy(id.components[:], components)
	return id
}

func (id EventID) Len() int {
	return id.n
}

func (id EventID) Components() []uint32 {
	return append([]uint32(nil), id.components[:id.n]...)
}

func (id EventID) Equal(other EventID) bool {
	return id == other
}

// Run returns the first component of ids that carry a run number, that is
// ids with more than one component.
func (id EventID) Run() (int, bool) {
	if id.n < 2 {
		return 0, false
	}
	return int(id.components[0]), true
}

func (id EventID) String() string {
	parts := make([]string, id.n)
	for i, c := range id.components[:id.n] {
		parts[i] = fmt.Sprint(c)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// PlaneHitSet holds the hits of one event in one plane. The three slices
// always have the same length.
type PlaneHitSet struct {
	Wire     []int
	Time     []int
	Integral []float32
}

func (p PlaneHitSet) Len() int {
	return len(p.Wire)
}

type Truth struct {
	PDG        int32
	Interacted bool
	NProton    int32
	NNeutron   int32
	NPiPlus    int32
	NPiMinus   int32
	NPi0       int32
}

// EventRecord keeps every per-event field together so that loading,
// pruning and reordering can never misalign plane data and truth.
type EventRecord struct {
	Key      string
	EventID  EventID
	NHits    [NPlanes]int
	Planes   [NPlanes]PlaneHitSet
	Truth    Truth
	HasTruth bool
	Topology Topology
}

func validPlane(planeID int) bool {
	return planeID >= 0 && planeID < NPlanes
}
