package pdsp

import (
	"gonum.org/v1/gonum/mat"
)

// PointCloud is the sparse form of one event in one plane.
type PointCloud struct {
	Coordinates [][2]int
	Features    [][1]float32
}

// GetPlane returns the (wire, time) coordinates and the integral of every hit
// of an event in a plane.
func (d *Dataset) GetPlane(eventIndex, planeID int) ([][2]int, [][1]float32, error) {
	if !validPlane(planeID) {
		return nil, nil, &ErrInvalidPlane{PlaneID: planeID}
	}
	event, err := d.Event(eventIndex)
	if err != nil {
		return nil, nil, err
	}

	if err := checkPlane(event, eventIndex, planeID); err != nil {
		return nil, nil, err
	}
	nhits := event.NHits[planeID]
	plane := event.Planes[planeID]
	locations := make([][2]int, nhits)
	features := make([][1]float32, nhits)
	for i := 0; i < nhits; i++ {
		locations[i] = [2]int{plane.Wire[i], plane.Time[i]}
		features[i] = [1]float32{plane.Integral[i]}
	}
	return locations, features, nil
}

// GetAllPlanes returns the point clouds of the three planes and the label of an event.
func (d *Dataset) GetAllPlanes(eventIndex int) ([NPlanes]PointCloud, Topology, error) {
	var clouds [NPlanes]PointCloud
	for p := 0; p < NPlanes; p++ {
		coords, features, err := d.GetPlane(eventIndex, p)
		if err != nil {
			return clouds, TopoUnknown, err
		}
		clouds[p] = PointCloud{Coordinates: coords, Features: features}
	}
	return clouds, d.Events[eventIndex].Topology, nil
}

// MakePlane fills a wires x time grid with the integrals of an event. Plane 2
// is narrower than the induction planes unless padPlane2 is set. When two hits
// share a cell the last one wins.
func (d *Dataset) MakePlane(eventIndex, planeID int, padPlane2 bool) (*mat.Dense, error) {
	if !validPlane(planeID) {
		return nil, &ErrInvalidPlane{PlaneID: planeID}
	}
	event, err := d.Event(eventIndex)
	if err != nil {
		return nil, err
	}

	geometry := d.Geometry
	if err := geometry.Validate(); err != nil {
		return nil, err
	}
	nwires := geometry.PaddedWires()
	if planeID == 2 && !padPlane2 {
		nwires = geometry.MaxWires[2]
	}
	grid := mat.NewDense(nwires, geometry.MaxTime, nil)

	plane := event.Planes[planeID]
	for i := range plane.Wire {
		wire, time := plane.Wire[i], plane.Time[i]
		if wire < 0 || wire >= nwires || time < 0 || time >= geometry.MaxTime {
			return nil, &ErrOutOfBounds{Plane: planeID, Wire: wire, Time: time}
		}
		grid.Set(wire, time, float64(plane.Integral[i]))
	}
	return grid, nil
}
