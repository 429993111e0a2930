package pdsp

import "fmt"

// ErrOpenFile represents an error when opening a file.
type ErrOpenFile struct {
	Filename string
	Err      error
}

func (e *ErrOpenFile) Error() string {
	return fmt.Sprintf("error opening file %q: %v", e.Filename, e.Err)
}

func (e *ErrOpenFile) Unwrap() error { return e.Err }

// ErrReadDataset represents an error when reading a dataset from the store.
type ErrReadDataset struct {
	Path string
	Err  error
}

func (e *ErrReadDataset) Error() string {
	return fmt.Sprintf("error reading dataset %q: %v", e.Path, e.Err)
}

func (e *ErrReadDataset) Unwrap() error { return e.Err }

// ErrInvalidPlane is returned for plane ids outside {0, 1, 2}.
type ErrInvalidPlane struct {
	PlaneID int
}

func (e *ErrInvalidPlane) Error() string {
	return fmt.Sprintf("invalid plane id %d, must be in [0, %d)", e.PlaneID, NPlanes)
}

// ErrEventIndex is returned when an event index is outside the dataset.
type ErrEventIndex struct {
	Index   int
	NEvents int
}

func (e *ErrEventIndex) Error() string {
	return fmt.Sprintf("event index %d out of range, dataset has %d events", e.Index, e.NEvents)
}

// ErrShard represents the failure of one ingestion worker. It aborts the whole load.
type ErrShard struct {
	Worker int
	Key    string
	Err    error
}

func (e *ErrShard) Error() string {
	return fmt.Sprintf("worker %d failed on group %q: %v", e.Worker, e.Key, e.Err)
}

func (e *ErrShard) Unwrap() error { return e.Err }

// ErrMisaligned reports a violated length invariant between per-event fields.
type ErrMisaligned struct {
	What string
	Want int
	Got  int
}

func (e *ErrMisaligned) Error() string {
	return fmt.Sprintf("misaligned %s: expected %d, got %d", e.What, e.Want, e.Got)
}

// ErrOutOfBounds reports a hit outside the detector geometry.
type ErrOutOfBounds struct {
	Plane int
	Wire  int
	Time  int
}

func (e *ErrOutOfBounds) Error() string {
	return fmt.Sprintf("hit out of bounds in plane %d: wire %d, time %d", e.Plane, e.Wire, e.Time)
}

// ErrUnlabelled is returned when a label is required for an event without a usable one.
type ErrUnlabelled struct {
	Index    int
	Topology Topology
}

func (e *ErrUnlabelled) Error() string {
	return fmt.Sprintf("event %d has no usable topology label (%v)", e.Index, e.Topology)
}

// ErrNoGeometry is returned when the run database has no geometry for a run.
type ErrNoGeometry struct {
	Run int
}

func (e *ErrNoGeometry) Error() string {
	return fmt.Sprintf("no plane geometry found for run %d", e.Run)
}

// ErrInvalidGeometry is returned for a geometry with an empty dimension.
type ErrInvalidGeometry struct {
	Geometry Geometry
}

func (e *ErrInvalidGeometry) Error() string {
	return fmt.Sprintf("invalid geometry: max time %d, max wires %v", e.Geometry.MaxTime, e.Geometry.MaxWires)
}
