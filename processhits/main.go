package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	pdsp "github.com/next-exp/pdsp_hits/pkg"
)

var configuration pdsp.Configuration

var (
	logger         pdsp.SlogLogger
	VerbosityLevel int
)

func init() {
	logger = pdsp.NewSlogLogger(os.Stdout, os.Stderr, slog.LevelDebug)
}

func main() {
	configFilename := flag.String("config", "", "Configuration file path")
	flag.Parse()

	if err := run(*configFilename); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}

func run(configFilename string) error {
	var err error
	configuration, err = pdsp.LoadConfiguration(configFilename)
	if err != nil {
		return fmt.Errorf("Error reading configuration file: %w", err)
	}
	pdsp.SetLogger(logger)

	VerbosityLevel = configuration.Verbosity
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Reading configuration file: %s", configFilename)
		logger.Info(message, "main")
		pdsp.PrintConfiguration(configuration, logger)
	}

	store, err := pdsp.OpenH5Store(configuration.FileIn)
	if err != nil {
		return err
	}
	defer store.Close()

	geometry, err := loadGeometry(store)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	dataset, err := pdsp.Load(ctx, store, configuration.LoadOptions(geometry))
	if err != nil {
		return fmt.Errorf("Error loading hits: %w", err)
	}
	logSummary(dataset.Summary(), time.Since(start))

	if configuration.Prune {
		removed, err := dataset.Prune(configuration.CheckNHits)
		if err != nil {
			return fmt.Errorf("Error pruning events: %w", err)
		}
		message := fmt.Sprintf("Pruned %d events, %d left", removed, dataset.NEvents())
		logger.Info(message, "main")
	}

	weights := dataset.SampleWeights()
	for t := pdsp.Topology(0); t < pdsp.NTopologies; t++ {
		message := fmt.Sprintf("Weight %s: %.4f", t, weights[t])
		logger.Info(message, "main")
	}

	return iterateBatches(dataset)
}

func loadGeometry(store pdsp.HitStore) (pdsp.Geometry, error) {
	if configuration.NoDB {
		return configuration.Geometry(), nil
	}
	runNumber := configuration.RunNumber
	if runNumber == 0 {
		var err error
		runNumber, err = pdsp.FirstRun(store)
		if err != nil {
			return pdsp.Geometry{}, fmt.Errorf("Error finding run number: %w", err)
		}
	}

	dbConn, err := pdsp.ConnectToDatabase(configuration.User, configuration.Passwd, configuration.Host, configuration.DBName)
	if err != nil {
		return pdsp.Geometry{}, fmt.Errorf("Error connection to database: %w", err)
	}
	defer dbConn.Close()

	geometry, err := pdsp.LoadGeometry(dbConn, runNumber)
	if err != nil {
		return pdsp.Geometry{}, fmt.Errorf("Error reading geometry: %w", err)
	}
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Geometry for run %d: max time %d, max wires %v",
			runNumber, geometry.MaxTime, geometry.MaxWires)
		logger.Info(message, "main")
	}
	return geometry, nil
}

func logSummary(summary pdsp.Summary, elapsed time.Duration) {
	message := fmt.Sprintf("Loaded %d events from %d groups in %d ms",
		summary.NEvents, summary.NGroups, elapsed.Milliseconds())
	logger.Info(message, "main")
	message = fmt.Sprintf("Hits per plane: %v, events without truth: %d", summary.TotalHits, summary.NoTruth)
	logger.Info(message, "main")
	for _, t := range summary.Classes() {
		message := fmt.Sprintf("Topology %s: %d events", t, summary.Topologies[t])
		logger.Info(message, "main")
	}
}

func iterateBatches(dataset *pdsp.Dataset) error {
	opts := configuration.BatchOptions()
	batches, err := dataset.Batches(opts)
	if err != nil {
		return fmt.Errorf("Error preparing batches: %w", err)
	}

	start := time.Now()
	nBatches := 0
	nHits := 0
	for points, truth := range batches {
		nBatches++
		nHits += len(points.Locations)
		if VerbosityLevel > 1 {
			message := fmt.Sprintf("Batch %d: %d events, %d hits",
				opts.StartBatch+nBatches-1, len(truth.Truth), len(points.Locations))
			logger.Info(message, "main")
		}
	}
	message := fmt.Sprintf("Generated %d batches with %d hits in %d ms",
		nBatches, nHits, time.Since(start).Milliseconds())
	logger.Info(message, "main")
	return nil
}
