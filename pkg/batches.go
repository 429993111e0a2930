package pdsp

import (
	"fmt"
	"iter"
)

// BatchPlane is the plane used to build training batches.
const BatchPlane = 2

type BatchOptions struct {
	BatchSize int
	// MaxBatches limits the number of yielded batches when positive.
	MaxBatches int
	StartBatch int
}

func DefaultBatchOptions() BatchOptions {
	return BatchOptions{BatchSize: 2, MaxBatches: -1, StartBatch: 0}
}

// PointCloudBatch concatenates the plane 2 hits of the events of a batch.
// Locations are (wire, time, position of the event in the batch).
type PointCloudBatch struct {
	Locations [][3]int
	Features  [][1]float32
}

// TruthBatch holds one one-hot row per event of the batch.
type TruthBatch struct {
	Truth [][NTopologies]float32
}

// Batches returns the sequence of training batches. Ranging over the
// sequence again restarts from StartBatch. Every event in the requested
// range must carry a trainable label and aligned plane 2 hits.
func (d *Dataset) Batches(opts BatchOptions) (iter.Seq2[PointCloudBatch, TruthBatch], error) {
	if opts.BatchSize <= 0 {
		return nil, fmt.Errorf("invalid batch size %d", opts.BatchSize)
	}
	if opts.StartBatch < 0 {
		return nil, fmt.Errorf("invalid start batch %d", opts.StartBatch)
	}

	nbatches := d.NBatches(opts.BatchSize)
	last := nbatches
	if opts.MaxBatches > 0 {
		last = min(nbatches, opts.StartBatch+opts.MaxBatches)
	}

	first := min(opts.StartBatch*opts.BatchSize, len(d.Events))
	end := min(last*opts.BatchSize, len(d.Events))
	for j := first; j < end; j++ {
		if err := d.checkBatchEvent(j); err != nil {
			return nil, err
		}
	}

	seq := func(yield func(PointCloudBatch, TruthBatch) bool) {
		for i := opts.StartBatch; i < last; i++ {
			points, truth, err := d.makeBatch(i*opts.BatchSize, min((i+1)*opts.BatchSize, len(d.Events)))
			if err != nil {
				// Only reachable if the dataset changed after Batches returned.
				logger.Error(fmt.Errorf("batch %d: %w", i, err).Error())
				return
			}
			if !yield(points, truth) {
				return
			}
		}
	}
	return seq, nil
}

// checkBatchEvent verifies that an event can go into a batch: it needs a
// trainable label and an aligned batch plane.
func (d *Dataset) checkBatchEvent(j int) error {
	event, err := d.Event(j)
	if err != nil {
		return err
	}
	if !event.HasTruth || !event.Topology.Trainable() {
		return &ErrUnlabelled{Index: j, Topology: event.Topology}
	}
	return checkPlane(event, j, BatchPlane)
}

// makeBatch builds the batch of events [start, end) from their point clouds.
func (d *Dataset) makeBatch(start, end int) (PointCloudBatch, TruthBatch, error) {
	clouds := make([]PointCloud, 0, end-start)
	nhits := 0
	for j := start; j < end; j++ {
		if err := d.checkBatchEvent(j); err != nil {
			return PointCloudBatch{}, TruthBatch{}, err
		}
		coords, features, err := d.GetPlane(j, BatchPlane)
		if err != nil {
			return PointCloudBatch{}, TruthBatch{}, err
		}
		clouds = append(clouds, PointCloud{Coordinates: coords, Features: features})
		nhits += len(coords)
	}

	points := PointCloudBatch{
		Locations: make([][3]int, 0, nhits),
		Features:  make([][1]float32, 0, nhits),
	}
	truth := TruthBatch{
		Truth: make([][NTopologies]float32, len(clouds)),
	}
	for a, cloud := range clouds {
		for i, c := range cloud.Coordinates {
			points.Locations = append(points.Locations, [3]int{c[0], c[1], a})
			points.Features = append(points.Features, cloud.Features[i])
		}
		truth.Truth[a][d.Events[start+a].Topology] = 1.
	}
	return points, truth, nil
}
