package output

import (
	"fmt"
	"time"

	"sdkmatch/hasher"
	"sdkmatch/imageformat"
	"sdkmatch/scanner"
	"sdkmatch/scoring"
	"sdkmatch/systeminfo"
	"sdkmatch/validator"
)

const SchemaVersion = "1.0"

type Metrics struct {
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	DurationMS int64  `json:"duration_ms"`
}

// Finish stamps the end time and duration relative to StartTime.
func (m *Metrics) Finish(start time.Time) {
	end := time.Now()
	if m.StartTime == "" {
		m.StartTime = start.Format(time.RFC3339)
	}
	m.EndTime = end.Format(time.RFC3339)
	m.DurationMS = end.Sub(start).Milliseconds()
}

// Report is the JSON document written by --output and --format json.
// Sections a command does not produce stay empty.
type Report struct {
	SchemaVersion string                    `json:"schema_version"`
	ToolVersion   string                    `json:"tool_version"`
	Command       string                    `json:"command"`
	System        *systeminfo.SystemInfo    `json:"system_info,omitempty"`
	Roots         []string                  `json:"roots,omitempty"`
	Counts        *scanner.Counts           `json:"counts,omitempty"`
	Applications  []*scanner.FirmwareRecord `json:"applications,omitempty"`
	Firmware      *scanner.FirmwareRecord   `json:"firmware,omitempty"`
	Bootloaders   []scoring.BootloaderMatch `json:"bootloaders,omitempty"`
	Configs       []scoring.ConfigMatch     `json:"configs,omitempty"`
	Images        []imageformat.Details     `json:"images,omitempty"`
	Validations   []validator.Report        `json:"validations,omitempty"`
	Handoff       *Handoff                  `json:"handoff,omitempty"`
	Metrics       *Metrics                  `json:"metrics,omitempty"`
}

type Image struct {
	Path      string            `json:"path"`
	SizeBytes int64             `json:"size_bytes"`
	Digests   map[string]string `json:"digests,omitempty"`
}

// Handoff is everything a flashing component needs: the two image paths,
// where the bootloader goes and digests to confirm the bytes it received.
type Handoff struct {
	Firmware       Image              `json:"firmware"`
	Bootloader     Image              `json:"bootloader"`
	FlashAddress   string             `json:"flash_address"`
	FlashSize      int64              `json:"flash_size"`
	Layout         imageformat.Layout `json:"layout"`
	Flashable      bool               `json:"flashable"`
	BootloaderRank int                `json:"bootloader_score"`
	Config         *Image             `json:"config,omitempty"`
	ConfigScore    int                `json:"config_score,omitempty"`
}

// NewHandoff resolves digests for the chosen firmware, bootloader and
// optional configuration.
func NewHandoff(fw *scanner.FirmwareRecord, sbl scoring.BootloaderMatch, cfg *scoring.ConfigMatch, algorithms []string) *Handoff {
	h := &Handoff{
		Firmware: Image{
			Path:      fw.Path,
			SizeBytes: fw.SizeBytes,
			Digests:   hasher.ComputeHashes(fw.Path, algorithms),
		},
		Bootloader: Image{
			Path:      sbl.Candidate.Path,
			SizeBytes: sbl.Candidate.SizeBytes,
			Digests:   hasher.ComputeHashes(sbl.Candidate.Path, algorithms),
		},
		FlashAddress:   FormatAddress(sbl.Candidate.FlashAddress),
		FlashSize:      sbl.Candidate.FlashSize,
		Layout:         sbl.Diagnostics.Layout,
		Flashable:      sbl.Diagnostics.Layout.Flashable(),
		BootloaderRank: sbl.Score,
	}
	if cfg != nil {
		h.Config = &Image{
			Path:      cfg.Candidate.Path,
			SizeBytes: cfg.Candidate.SizeBytes,
			Digests:   hasher.ComputeHashes(cfg.Candidate.Path, algorithms),
		}
		h.ConfigScore = cfg.Score
	}
	return h
}

func FormatAddress(addr uint32) string {
	return fmt.Sprintf("0x%08X", addr)
}
