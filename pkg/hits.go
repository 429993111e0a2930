package pdsp

import (
	"fmt"
	"math"
)

// Drift time to tick conversion. Larger raw times map to smaller bins.
const (
	TimeBinOffset = 912
	RawTimeOffset = 500.
	TickScale     = 6.025
)

// TimeBin converts a raw hit time into the time coordinate of the point cloud.
// The result is not clamped.
func TimeBin(rawTime float32) int {
	return int(math.Floor(TimeBinOffset - (float64(rawTime)-RawTimeOffset)/TickScale))
}

// WireCoordinate truncates a stored wire number.
func WireCoordinate(rawWire float32) int {
	return int(rawWire)
}

// SelectPlaneHits extracts the hits of one event from a plane table and
// applies the coordinate transform.
func SelectPlaneHits(table HitTable, eventID EventID) PlaneHitSet {
	var rows []int
	for i, id := range table.EventID {
		if id == eventID {
			rows = append(rows, i)
		}
	}
	return selectRows(table, rows)
}

func selectRows(table HitTable, rows []int) PlaneHitSet {
	hits := PlaneHitSet{
		Wire:     make([]int, len(rows)),
		Time:     make([]int, len(rows)),
		Integral: make([]float32, len(rows)),
	}
	for j, i := range rows {
		hits.Wire[j] = WireCoordinate(table.Wire[i])
		hits.Time[j] = TimeBin(table.Time[i])
		hits.Integral[j] = table.Integral[i]
	}
	return hits
}

// rowsByEvent groups the row numbers of a plane table by event, keeping
// file order inside each event.
func rowsByEvent(table HitTable) map[EventID][]int {
	rows := make(map[EventID][]int)
	for i, id := range table.EventID {
		rows[id] = append(rows[id], i)
	}
	return rows
}

// idWidth returns the common number of components of ids, 0 when ids is empty.
func idWidth(ids []EventID, what string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	width := ids[0].Len()
	for _, id := range ids[1:] {
		if id.Len() != width {
			return 0, &ErrMisaligned{What: what + " width", Want: width, Got: id.Len()}
		}
	}
	return width, nil
}

// ReadPlaneHits reads the hits of a single event and plane from the store.
// Loading a whole dataset goes through Load, which reads each plane table
// only once per group.
func ReadPlaneHits(store HitStore, key string, eventID EventID, planeID int) (PlaneHitSet, error) {
	if !validPlane(planeID) {
		return PlaneHitSet{}, &ErrInvalidPlane{PlaneID: planeID}
	}
	table, err := store.PlaneHits(key, planeID)
	if err != nil {
		return PlaneHitSet{}, fmt.Errorf("error reading plane %d hits of group %q: %w", planeID, key, err)
	}
	if err := table.check(); err != nil {
		return PlaneHitSet{}, err
	}
	return SelectPlaneHits(table, eventID), nil
}
