package pdsp

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"golang.org/x/exp/slices"
)

// Dataset is the frozen result of a load: one record per event, indexed by
// position. It is only mutated by Prune.
type Dataset struct {
	LoadID   uuid.UUID
	Geometry Geometry
	Events   []EventRecord
}

// NewDataset wraps loaded records. A zero Geometry selects DefaultGeometry.
func NewDataset(records []EventRecord, geometry Geometry) *Dataset {
	if geometry == (Geometry{}) {
		geometry = DefaultGeometry()
	}
	return &Dataset{
		LoadID:   uuid.New(),
		Geometry: geometry,
		Events:   records,
	}
}

func (d *Dataset) NEvents() int {
	return len(d.Events)
}

func (d *Dataset) Event(index int) (*EventRecord, error) {
	if index < 0 || index >= len(d.Events) {
		return nil, &ErrEventIndex{Index: index, NEvents: len(d.Events)}
	}
	return &d.Events[index], nil
}

func (d *Dataset) NHits(index int) ([NPlanes]int, error) {
	event, err := d.Event(index)
	if err != nil {
		return [NPlanes]int{}, err
	}
	return event.NHits, nil
}

func (d *Dataset) Topology(index int) (Topology, error) {
	event, err := d.Event(index)
	if err != nil {
		return TopoUnknown, err
	}
	return event.Topology, nil
}

// Topologies returns the label of every event in dataset order.
func (d *Dataset) Topologies() []Topology {
	topos := make([]Topology, len(d.Events))
	for i := range d.Events {
		topos[i] = d.Events[i].Topology
	}
	return topos
}

func (d *Dataset) EventIDs() []EventID {
	ids := make([]EventID, len(d.Events))
	for i := range d.Events {
		ids[i] = d.Events[i].EventID
	}
	return ids
}

func (d *Dataset) PDGs() []int32 {
	pdgs := make([]int32, len(d.Events))
	for i := range d.Events {
		pdgs[i] = d.Events[i].Truth.PDG
	}
	return pdgs
}

// IndicesWithPDG returns the positions of the events with the given beam particle.
func (d *Dataset) IndicesWithPDG(pdg int32) []int {
	var indices []int
	for i := range d.Events {
		if d.Events[i].HasTruth && d.Events[i].Truth.PDG == pdg {
			indices = append(indices, i)
		}
	}
	return indices
}

// checkPlane verifies that the hit slices of one plane match its hit count.
func checkPlane(event *EventRecord, index, planeID int) error {
	plane := event.Planes[planeID]
	n := event.NHits[planeID]
	columns := []struct {
		name string
		got  int
	}{
		{"wires", len(plane.Wire)},
		{"times", len(plane.Time)},
		{"integrals", len(plane.Integral)},
	}
	for _, c := range columns {
		if c.got != n {
			what := fmt.Sprintf("event %d plane %d %s", index, planeID, c.name)
			return &ErrMisaligned{What: what, Want: n, Got: c.got}
		}
	}
	return nil
}

// CheckAlignment verifies that every plane of every event has consistent
// lengths. A failure is an internal invariant violation.
func (d *Dataset) CheckAlignment() error {
	for i := range d.Events {
		event := &d.Events[i]
		for p := 0; p < NPlanes; p++ {
			if err := checkPlane(event, i, p); err != nil {
				return err
			}
		}
		if event.HasTruth && event.Topology != ClassifyTruth(event.Truth) {
			return fmt.Errorf("event %d: topology %v does not match its truth", i, event.Topology)
		}
	}
	return nil
}

// SampleWeights returns the inverse frequency of each trainable class.
// Classes without events get a zero weight.
func (d *Dataset) SampleWeights() [NTopologies]float64 {
	var counts [NTopologies]int
	for i := range d.Events {
		if t := d.Events[i].Topology; t.Trainable() {
			counts[t]++
		}
	}
	var weights [NTopologies]float64
	for t, n := range counts {
		if n > 0 {
			weights[t] = 1. / float64(n)
		}
	}
	return weights
}

func (d *Dataset) NBatches(batchSize int) int {
	if batchSize <= 0 {
		return 0
	}
	return int(math.Ceil(float64(len(d.Events)) / float64(batchSize)))
}

type Summary struct {
	NEvents    int
	NGroups    int
	NoTruth    int
	TotalHits  [NPlanes]int
	Topologies map[Topology]int
}

// Classes returns the labels present in the summary in ascending order.
func (s Summary) Classes() []Topology {
	classes := make([]Topology, 0, len(s.Topologies))
	for t := range s.Topologies {
		classes = append(classes, t)
	}
	slices.Sort(classes)
	return classes
}

func (d *Dataset) Summary() Summary {
	s := Summary{
		NEvents:    len(d.Events),
		Topologies: make(map[Topology]int),
	}
	groups := make(map[string]struct{})
	for i := range d.Events {
		event := &d.Events[i]
		groups[event.Key] = struct{}{}
		if !event.HasTruth {
			s.NoTruth++
		}
		for p := 0; p < NPlanes; p++ {
			s.TotalHits[p] += event.NHits[p]
		}
		s.Topologies[event.Topology]++
	}
	s.NGroups = len(groups)
	return s
}
