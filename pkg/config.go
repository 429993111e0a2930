package pdsp

import (
	"encoding/json"
	"fmt"
	"os"
)

type Configuration struct {
	FileIn        string       `json:"file_in"`
	Verbosity     int          `json:"verbosity"`
	NumWorkers    int          `json:"num_workers"`
	ProgressEvery int          `json:"progress_every"`
	Prune         bool         `json:"prune"`
	CheckNHits    bool         `json:"check_nhits"`
	BatchSize     int          `json:"batch_size"`
	MaxBatches    int          `json:"max_batches"`
	StartBatch    int          `json:"start_batch"`
	BoundsPolicy  BoundsPolicy `json:"bounds_policy"`
	MaxTime       int          `json:"max_time"`
	MaxWires      [NPlanes]int `json:"max_wires"`
	NoDB          bool         `json:"no_db"`
	Host          string       `json:"host"`
	User          string       `json:"user"`
	Passwd        string       `json:"pass"`
	DBName        string       `json:"dbname"`
	RunNumber     int          `json:"run_number"`
}

// Geometry returns the detector bounds set in the configuration file.
func (c Configuration) Geometry() Geometry {
	return Geometry{MaxTime: c.MaxTime, MaxWires: c.MaxWires}
}

// LoadOptions returns the ingestion settings for a given geometry.
func (c Configuration) LoadOptions(geometry Geometry) LoadOptions {
	return LoadOptions{
		NumWorkers:    c.NumWorkers,
		ProgressEvery: c.ProgressEvery,
		Geometry:      geometry,
		BoundsPolicy:  c.BoundsPolicy,
		Verbosity:     c.Verbosity,
	}
}

func (c Configuration) BatchOptions() BatchOptions {
	return BatchOptions{
		BatchSize:  c.BatchSize,
		MaxBatches: c.MaxBatches,
		StartBatch: c.StartBatch,
	}
}

func LoadConfiguration(filename string) (Configuration, error) {
	var config Configuration

	// Set default values
	config.Verbosity = 0
	config.NumWorkers = 1
	config.ProgressEvery = defaultProgressEvery
	config.Prune = true
	config.CheckNHits = true
	config.BatchSize = 2
	config.MaxBatches = -1
	config.StartBatch = 0
	config.BoundsPolicy = BoundsIgnore
	config.MaxTime = DefaultGeometry().MaxTime
	config.MaxWires = DefaultGeometry().MaxWires
	config.NoDB = true
	config.Host = "localhost"
	config.User = "pdspreader"
	config.Passwd = "readonly"
	config.DBName = "PDSP"

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, err
	}
	err = json.Unmarshal(data, &config)
	if err != nil {
		return config, err
	}
	return config, nil
}

func PrintConfiguration(config Configuration, logger Logger) {
	logger.Info(fmt.Sprintf("File in: %s", config.FileIn), "config")
	logger.Info(fmt.Sprintf("Verbosity: %d", config.Verbosity), "config")
	logger.Info(fmt.Sprintf("Number of workers: %d", config.NumWorkers), "config")
	logger.Info(fmt.Sprintf("Progress every: %d groups", config.ProgressEvery), "config")
	logger.Info(fmt.Sprintf("Prune: %t", config.Prune), "config")
	logger.Info(fmt.Sprintf("Check nhits: %t", config.CheckNHits), "config")
	logger.Info(fmt.Sprintf("Batch size: %d", config.BatchSize), "config")
	logger.Info(fmt.Sprintf("Max batches: %d", config.MaxBatches), "config")
	logger.Info(fmt.Sprintf("Start batch: %d", config.StartBatch), "config")
	logger.Info(fmt.Sprintf("Bounds policy: %v", config.BoundsPolicy), "config")
	logger.Info(fmt.Sprintf("Max time: %d", config.MaxTime), "config")
	logger.Info(fmt.Sprintf("Max wires: %v", config.MaxWires), "config")
	logger.Info(fmt.Sprintf("No DB: %t", config.NoDB), "config")
	logger.Info(fmt.Sprintf("Host: %s", config.Host), "config")
	logger.Info(fmt.Sprintf("DB name: %s", config.DBName), "config")
	logger.Info(fmt.Sprintf("Run number: %d", config.RunNumber), "config")
}
