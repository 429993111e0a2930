package pdsp

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerFormat(t *testing.T) {
	var buf bytes.Buffer
	log := SlogLogger{
		InfoLog:  slog.New(NewHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})),
		ErrorLog: slog.New(NewHandler(&buf, nil)),
	}

	log.Info("Loaded 3 events", "loader")
	log.Error("load aborted")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	assert.Len(t, lines, 2)
	assert.Regexp(t, regexp.MustCompile(`^\[\d{4}/\d{2}/\d{2} \d{2}:\d{2}:\d{2}\] \[loader\] Loaded 3 events$`), string(lines[0]))
	assert.Regexp(t, regexp.MustCompile(`\] load aborted$`), string(lines[1]))
}

func TestHandlerAttrsAndLevel(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewHandler(&buf, nil)).With("worker", 2)

	log.Debug("hidden")
	log.Info("shard done", "key", "g001")

	assert.Regexp(t, regexp.MustCompile(`^\[[^\]]+\] \[2\] \[g001\] shard done\n$`), buf.String())
}

func TestNewSlogLogger(t *testing.T) {
	var info, errs bytes.Buffer
	log := NewSlogLogger(&info, &errs, slog.LevelInfo)

	log.Info("Pruned 2 events", "pruner")
	log.Error("load aborted")

	assert.Contains(t, info.String(), "[pruner] Pruned 2 events")
	var record map[string]any
	require.NoError(t, json.Unmarshal(errs.Bytes(), &record))
	assert.Equal(t, "load aborted", record["msg"])
	assert.Equal(t, "ERROR", record["level"])
}
