package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	pdsp "github.com/next-exp/pdsp_hits/pkg"
)

var logger pdsp.SlogLogger

func init() {
	logger = pdsp.NewSlogLogger(os.Stdout, os.Stderr, slog.LevelDebug)
}

func main() {
	configFilename := flag.String("config", "", "Configuration file path")
	repeat := flag.Int("repeat", 3, "Loads per worker count")
	flag.Parse()

	configuration, err := pdsp.LoadConfiguration(*configFilename)
	if err != nil {
		message := fmt.Errorf("Error reading configuration file: %w", err)
		logger.Error(message.Error())
		os.Exit(1)
	}
	if configuration.Verbosity > 0 {
		pdsp.PrintConfiguration(configuration, logger)
	}

	store, err := pdsp.OpenH5Store(configuration.FileIn)
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
	defer store.Close()

	geometry := configuration.Geometry()
	for workers := 1; workers <= configuration.NumWorkers; workers++ {
		opts := configuration.LoadOptions(geometry)
		opts.NumWorkers = workers
		opts.Verbosity = 0

		var total time.Duration
		nEvents := 0
		for i := 0; i < *repeat; i++ {
			start := time.Now()
			dataset, err := pdsp.Load(context.Background(), store, opts)
			if err != nil {
				logger.Error(err.Error())
				os.Exit(1)
			}
			total += time.Since(start)
			nEvents = dataset.NEvents()
		}
		mean := total / time.Duration(max(*repeat, 1))
		fmt.Printf("Workers: %d Events: %d Mean load time: %d ms\n", workers, nEvents, mean.Milliseconds())
	}
}
