package pdsp

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
)

// eventsToPrune returns the indices of events that are not signal, carry no
// truth or, when checkNHits is set, have an empty plane.
func (d *Dataset) eventsToPrune(checkNHits bool) *roaring.Bitmap {
	indices := roaring.New()
	for i := range d.Events {
		event := &d.Events[i]
		if !event.HasTruth || !IsSignalPDG(event.Truth.PDG) {
			indices.Add(uint32(i))
			continue
		}
		if !checkNHits {
			continue
		}
		for p := 0; p < NPlanes; p++ {
			if event.NHits[p] == 0 {
				indices.Add(uint32(i))
				break
			}
		}
	}
	return indices
}

// Prune removes in place the events that cannot be used for training and
// returns how many were removed. The order of the remaining events is kept.
func (d *Dataset) Prune(checkNHits bool) (int, error) {
	if err := d.CheckAlignment(); err != nil {
		return 0, fmt.Errorf("before pruning: %w", err)
	}

	indices := d.eventsToPrune(checkNHits)
	removed := int(indices.GetCardinality())
	if removed == 0 {
		return 0, nil
	}

	nevents := len(d.Events)
	kept := d.Events[:0]
	for i := range d.Events {
		if indices.Contains(uint32(i)) {
			continue
		}
		kept = append(kept, d.Events[i])
	}
	// Release the plane data of the dropped tail.
	clear(d.Events[len(kept):])
	d.Events = kept

	if len(d.Events) != nevents-removed {
		return removed, &ErrMisaligned{What: "events after pruning", Want: nevents - removed, Got: len(d.Events)}
	}
	if err := d.CheckAlignment(); err != nil {
		return removed, fmt.Errorf("after pruning: %w", err)
	}
	logger.Info(fmt.Sprintf("Pruned %d of %d events", removed, nevents), "pruner")
	return removed, nil
}
