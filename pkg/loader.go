package pdsp

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const defaultProgressEvery = 100

type LoadOptions struct {
	NumWorkers int
	// ProgressEvery is the number of groups between progress reports of a worker.
	ProgressEvery int
	Geometry      Geometry
	BoundsPolicy  BoundsPolicy
	Verbosity     int
}

func (o LoadOptions) withDefaults() LoadOptions {
	if o.NumWorkers <= 0 {
		o.NumWorkers = 1
	}
	if o.ProgressEvery <= 0 {
		o.ProgressEvery = defaultProgressEvery
	}
	if o.Geometry == (Geometry{}) {
		o.Geometry = DefaultGeometry()
	}
	return o
}

// groupResult carries every record of one group from a worker to the collector.
type groupResult struct {
	worker  int
	key     string
	records []EventRecord
}

// splitKeys assigns keys round robin: worker w gets keys[w::n].
func splitKeys(keys []string, n int) [][]string {
	shards := make([][]string, n)
	for i, k := range keys {
		shards[i%n] = append(shards[i%n], k)
	}
	return shards
}

type progress struct {
	done   []atomic.Int64
	totals []int
}

func newProgress(shards [][]string) *progress {
	p := &progress{
		done:   make([]atomic.Int64, len(shards)),
		totals: make([]int, len(shards)),
	}
	for i, s := range shards {
		p.totals[i] = len(s)
	}
	return p
}

func (p *progress) String() string {
	parts := make([]string, len(p.totals))
	for i := range p.totals {
		parts[i] = fmt.Sprintf("%d/%d", p.done[i].Load(), p.totals[i])
	}
	return strings.Join(parts, " ")
}

// Load reads every group of the store with a pool of workers and returns
// the merged dataset. Any worker failure aborts the whole load.
func Load(ctx context.Context, store HitStore, opts LoadOptions) (*Dataset, error) {
	opts = opts.withDefaults()
	if err := opts.Geometry.Validate(); err != nil {
		return nil, err
	}

	keys, err := store.Keys()
	if err != nil {
		return nil, fmt.Errorf("error listing groups: %w", err)
	}
	shards := splitKeys(keys, opts.NumWorkers)
	prog := newProgress(shards)

	if opts.Verbosity > 0 {
		message := fmt.Sprintf("Loading %d groups with %d workers", len(keys), opts.NumWorkers)
		logger.Info(message, "loader")
	}

	results := make(chan groupResult, opts.NumWorkers)
	g, gctx := errgroup.WithContext(ctx)
	for w := range shards {
		g.Go(func() error {
			return loadShard(gctx, store, w, shards[w], opts, prog, results)
		})
	}

	// Single writer of the merged records. A group is appended in one step.
	records := make([]EventRecord, 0)
	collected := make(chan struct{})
	go func() {
		defer close(collected)
		for r := range results {
			records = append(records, r.records...)
			if opts.Verbosity > 2 {
				message := fmt.Sprintf("Worker %d added %d events from %s", r.worker, len(r.records), r.key)
				logger.Info(message, "loader")
			}
		}
	}()

	err = g.Wait()
	close(results)
	<-collected
	if err != nil {
		logger.Error(fmt.Errorf("load aborted: %w", err).Error())
		return nil, err
	}

	dataset := NewDataset(records, opts.Geometry)
	if err := dataset.CheckAlignment(); err != nil {
		return nil, err
	}
	if opts.Verbosity > 0 {
		logger.Info(prog.String(), "loader")
		message := fmt.Sprintf("Loaded %d events, load id %s", dataset.NEvents(), dataset.LoadID)
		logger.Info(message, "loader")
	}
	return dataset, nil
}

func loadShard(ctx context.Context, store HitStore, worker int, keys []string, opts LoadOptions,
	prog *progress, results chan<- groupResult) (err error) {
	current := ""
	defer func() {
		if r := recover(); r != nil {
			err = &ErrShard{Worker: worker, Key: current, Err: fmt.Errorf("recovered from panic: %v", r)}
		}
	}()

	report := rate.Sometimes{Every: opts.ProgressEvery}
	for a, key := range keys {
		current = key
		if err := ctx.Err(); err != nil {
			return err
		}
		prog.done[worker].Store(int64(a))
		if opts.Verbosity > 0 {
			report.Do(func() { logger.Info(prog.String(), "loader") })
		}

		records, err := loadGroup(store, key, opts)
		if err != nil {
			return &ErrShard{Worker: worker, Key: key, Err: err}
		}

		select {
		case results <- groupResult{worker: worker, key: key, records: records}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	prog.done[worker].Store(int64(len(keys)))
	return nil
}

// loadGroup builds the records of every event of one group.
func loadGroup(store HitStore, key string, opts LoadOptions) ([]EventRecord, error) {
	eventIDs, err := store.EventIDs(key)
	if err != nil {
		return nil, fmt.Errorf("error reading event ids: %w", err)
	}
	nhits, err := store.NHits(key)
	if err != nil {
		return nil, fmt.Errorf("error reading nhits: %w", err)
	}
	if len(nhits) != len(eventIDs) {
		return nil, &ErrMisaligned{What: "nhits rows", Want: len(eventIDs), Got: len(nhits)}
	}
	width, err := idWidth(eventIDs, "event ids")
	if err != nil {
		return nil, err
	}

	var planeRows [NPlanes]map[EventID][]int
	var tables [NPlanes]HitTable
	for p := 0; p < NPlanes; p++ {
		tables[p], err = store.PlaneHits(key, p)
		if err != nil {
			return nil, fmt.Errorf("error reading plane %d hits: %w", p, err)
		}
		if err := tables[p].check(); err != nil {
			return nil, err
		}
		what := fmt.Sprintf("plane %d event ids", p)
		planeWidth, err := idWidth(tables[p].EventID, what)
		if err != nil {
			return nil, err
		}
		if width > 0 && planeWidth > 0 && planeWidth != width {
			return nil, &ErrMisaligned{What: what + " width", Want: width, Got: planeWidth}
		}
		planeRows[p] = rowsByEvent(tables[p])
	}

	truth, found, err := store.Truth(key)
	if err != nil {
		return nil, fmt.Errorf("error reading truth: %w", err)
	}
	if found {
		if err := truth.check(); err != nil {
			return nil, err
		}
		if truth.Len() != len(eventIDs) {
			return nil, &ErrMisaligned{What: "truth rows", Want: len(eventIDs), Got: truth.Len()}
		}
	} else if opts.Verbosity > 0 {
		message := fmt.Sprintf("No truth in group %s, %d events left unlabelled", key, len(eventIDs))
		logger.Info(message, "loader")
	}

	records := make([]EventRecord, len(eventIDs))
	for i, id := range eventIDs {
		rec := EventRecord{
			Key:      key,
			EventID:  id,
			Topology: TopoUnknown,
		}
		for p := 0; p < NPlanes; p++ {
			hits := selectRows(tables[p], planeRows[p][id])
			if hits.Len() != nhits[i][p] {
				what := fmt.Sprintf("plane %d hits of event %v", p, id)
				return nil, &ErrMisaligned{What: what, Want: nhits[i][p], Got: hits.Len()}
			}
			hits, err = ApplyBounds(hits, p, opts.Geometry, opts.BoundsPolicy)
			if err != nil {
				return nil, fmt.Errorf("event %v: %w", id, err)
			}
			rec.Planes[p] = hits
			rec.NHits[p] = hits.Len()
		}
		if found {
			rec.Truth = truth.At(i)
			rec.HasTruth = true
			rec.Topology = ClassifyTruth(rec.Truth)
		}
		records[i] = rec
	}
	return records, nil
}
