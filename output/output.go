// Package output renders reports for the terminal, writes the JSON report
// file and optionally exports match records over OTLP.
package output

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"sdkmatch/config"
	"sdkmatch/logger"
)

// Writer owns the destinations of one command run. It is safe for
// concurrent use; watch mode writes a report per rescan.
type Writer struct {
	mu       sync.Mutex
	out      io.Writer
	format   string
	fileName string
	otel     *otelLogger
}

func New(cfg *config.Config, out io.Writer) (*Writer, error) {
	if out == nil {
		out = os.Stdout
	}
	format := strings.ToLower(cfg.OutputFormat)
	if format == "" {
		format = "text"
	}
	w := &Writer{
		out:      out,
		format:   format,
		fileName: cfg.OutputFileName,
	}
	otel, err := newOtelLogger(cfg)
	if err != nil {
		logger.Warnf("OTEL export disabled: %v", err)
	} else {
		w.otel = otel
	}
	return w, nil
}

// Write renders r to the terminal in the configured format, replaces the
// report file when one is configured and emits one OTLP record per match.
func (w *Writer) Write(r *Report) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if r.SchemaVersion == "" {
		r.SchemaVersion = SchemaVersion
	}
	var err error
	switch w.format {
	case "json":
		err = writeJSON(w.out, r)
	default:
		err = RenderText(w.out, r)
	}
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if w.fileName != "" {
		if err := writeJSONFile(w.fileName, r); err != nil {
			return err
		}
		logger.Debugf("Report written to %s", w.fileName)
	}
	w.emitLocked(r)
	return nil
}

func (w *Writer) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.otel != nil {
		w.otel.Shutdown()
	}
}

func (w *Writer) emitLocked(r *Report) {
	if w.otel == nil {
		return
	}
	if r.Counts != nil {
		w.otel.Emit("scan", r.Counts)
	}
	for i := range r.Bootloaders {
		w.otel.Emit("bootloader_match", matchPayload(r, i, r.Bootloaders[i].Candidate.Path, r.Bootloaders[i].Score, r.Bootloaders[i].Diagnostics))
	}
	for i := range r.Configs {
		w.otel.Emit("config_match", matchPayload(r, i, r.Configs[i].Candidate.Path, r.Configs[i].Score, r.Configs[i].Diagnostics))
	}
	if r.Handoff != nil {
		w.otel.Emit("handoff", r.Handoff)
	}
}

func matchPayload(r *Report, rank int, path string, score int, diagnostics interface{}) map[string]interface{} {
	payload := map[string]interface{}{
		"rank":        rank + 1,
		"score":       score,
		"path":        path,
		"diagnostics": payloadToMap(diagnostics),
	}
	if r.Firmware != nil {
		payload["firmware"] = r.Firmware.Path
	}
	return payload
}

func writeJSON(out io.Writer, r *Report) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func writeJSONFile(name string, r *Report) error {
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	buf := bufio.NewWriterSize(f, 256*1024)
	if err := writeJSON(buf, r); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write report file: %w", err)
	}
	if err := buf.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write report file: %w", err)
	}
	_ = f.Sync()
	return f.Close()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
