package viewjson

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"riskview/internal/logger"
	"riskview/pkg/models"
)

// Record kinds written to the export stream.
const (
	KindEntity        = "entity"
	KindAlert         = "alert"
	KindThreat        = "threat"
	KindThreatSummary = "threat_summary"
)

// Line is one JSONL record.
type Line struct {
	Kind string `json:"kind"`
	Data any    `json:"data"`
}

// Writer outputs projected view records to a JSON lines stream.
type Writer struct {
	closer  io.Closer
	encoder *json.Encoder
	count   int
	mu      sync.Mutex
}

// NewWriter creates a JSONL writer for path. "-" writes to stdout.
func NewWriter(path string) (*Writer, error) {
	if path == "-" || path == "" {
		return NewStreamWriter(os.Stdout), nil
	}

	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	logger.Infof("View JSON writer initialized: %s", path)
	return &Writer{closer: f, encoder: json.NewEncoder(f)}, nil
}

// NewStreamWriter writes to w. Close does not close w.
func NewStreamWriter(w io.Writer) *Writer {
	return &Writer{encoder: json.NewEncoder(w)}
}

// WriteEntities writes a batch of entities.
func (w *Writer) WriteEntities(entities []models.Entity) error {
	return writeAll(w, KindEntity, entities)
}

// WriteAlerts writes a batch of alerts.
func (w *Writer) WriteAlerts(alerts []models.Alert) error {
	return writeAll(w, KindAlert, alerts)
}

// WriteThreats writes a batch of threat categories.
func (w *Writer) WriteThreats(threats []models.Threat) error {
	return writeAll(w, KindThreat, threats)
}

// WriteThreatSummary writes the aggregate threat summary.
func (w *Writer) WriteThreatSummary(summary models.ThreatSummary) error {
	return writeAll(w, KindThreatSummary, []models.ThreatSummary{summary})
}

// Count returns the number of records written so far.
func (w *Writer) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

func writeAll[T any](w *Writer, kind string, items []T) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, item := range items {
		if err := w.encoder.Encode(Line{Kind: kind, Data: item}); err != nil {
			return fmt.Errorf("failed to encode %s: %w", kind, err)
		}
		w.count++
	}
	return nil
}

// Close closes the output file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closer != nil {
		err := w.closer.Close()
		w.closer = nil
		return err
	}
	return nil
}
