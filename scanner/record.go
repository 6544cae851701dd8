package scanner

import (
	"time"

	"sdkmatch/imageformat"
	"sdkmatch/metadata"
	"sdkmatch/validator"
)

// SBL images are always programmed at the start of flash and occupy whole
// sectors.
const (
	SBLFlashAddress uint32 = 0x00000000
	FlashSectorSize int64  = 4 * 1024
)

// FirmwareRecord describes an application image. Fields are fixed at scan
// time; only the keyword cache is filled later.
type FirmwareRecord struct {
	Path        string           `json:"path"`
	Filename    string           `json:"filename"`
	Category    string           `json:"category"`
	Subcategory string           `json:"subcategory,omitempty"`
	Platform    string           `json:"platform,omitempty"`
	Processor   string           `json:"processor,omitempty"`
	Compiler    string           `json:"compiler,omitempty"`
	Version     metadata.Version `json:"version"`
	Description string           `json:"description"`
	SizeBytes   int64            `json:"size_bytes"`
	ModTime     time.Time        `json:"mod_time,omitempty"`

	keywords []string
}

// Keywords returns the cached filename tokens.
func (r *FirmwareRecord) Keywords() []string {
	if r.keywords == nil {
		r.keywords = metadata.Keywords(r.Filename)
	}
	return r.keywords
}

type BootloaderRecord struct {
	Path         string           `json:"path"`
	Filename     string           `json:"filename"`
	Variant      metadata.Variant `json:"variant"`
	Version      metadata.Version `json:"version"`
	Description  string           `json:"description"`
	SizeBytes    int64            `json:"size_bytes"`
	FlashAddress uint32           `json:"flash_address"`
	FlashSize    int64            `json:"flash_size"`
	ModTime      time.Time        `json:"mod_time,omitempty"`

	layout    imageformat.Layout
	hasLayout bool
}

// ImageLayout inspects the image header on first use and caches the result.
func (r *BootloaderRecord) ImageLayout(in *imageformat.Inspector) imageformat.Layout {
	if !r.hasLayout {
		if in == nil {
			in = imageformat.Default
		}
		r.layout = in.Inspect(r.Path)
		r.hasLayout = true
	}
	return r.layout
}

type ConfigRecord struct {
	Path        string    `json:"path"`
	Filename    string    `json:"filename"`
	Application string    `json:"application"`
	TXChannels  int       `json:"tx_channels"`
	RXChannels  int       `json:"rx_channels"`
	RangeMeters int       `json:"range_meters"`
	Mode        string    `json:"mode,omitempty"`
	PowerMode   string    `json:"power_mode"`
	Bandwidth   string    `json:"bandwidth"`
	PackageType string    `json:"package_type,omitempty"`
	Description string    `json:"description"`
	SizeBytes   int64     `json:"size_bytes"`
	ModTime     time.Time `json:"mod_time,omitempty"`

	keywords []string
	report   *validator.Report
}

func (r *ConfigRecord) Keywords() []string {
	if r.keywords == nil {
		r.keywords = metadata.Keywords(r.Filename)
	}
	return r.keywords
}

// Validation runs the validator on first use and caches the report.
func (r *ConfigRecord) Validation(v *validator.Validator) validator.Report {
	if r.report == nil {
		if v == nil {
			v = validator.Default
		}
		report := v.Validate(r.Path)
		r.report = &report
	}
	return *r.report
}

func newFirmwareRecord(path, filename string, size int64, mod time.Time) *FirmwareRecord {
	fw := metadata.ExtractFirmware(path)
	return &FirmwareRecord{
		Path:        path,
		Filename:    filename,
		Category:    fw.Category,
		Subcategory: fw.Subcategory,
		Platform:    fw.Platform,
		Processor:   fw.Processor,
		Compiler:    fw.Compiler,
		Version:     fw.Version,
		Description: fw.Description(),
		SizeBytes:   size,
		ModTime:     mod,
	}
}

func newBootloaderRecord(path, filename string, size int64, mod time.Time) *BootloaderRecord {
	variant := metadata.ParseVariant(filename)
	version := metadata.ParseVersion(filename)
	return &BootloaderRecord{
		Path:         path,
		Filename:     filename,
		Variant:      variant,
		Version:      version,
		Description:  metadata.BootloaderDescription(variant, version),
		SizeBytes:    size,
		FlashAddress: SBLFlashAddress,
		FlashSize:    roundToSector(size),
		ModTime:      mod,
	}
}

func newConfigRecord(path, filename string, size int64, mod time.Time) *ConfigRecord {
	cfg := metadata.ExtractConfig(path)
	return &ConfigRecord{
		Path:        path,
		Filename:    filename,
		Application: cfg.Application,
		TXChannels:  cfg.TXChannels,
		RXChannels:  cfg.RXChannels,
		RangeMeters: cfg.RangeMeters,
		Mode:        cfg.Mode,
		PowerMode:   cfg.PowerMode,
		Bandwidth:   cfg.Bandwidth,
		PackageType: cfg.PackageType,
		Description: cfg.Description(),
		SizeBytes:   size,
		ModTime:     mod,
	}
}

func roundToSector(size int64) int64 {
	if size <= 0 {
		return 0
	}
	return (size + FlashSectorSize - 1) / FlashSectorSize * FlashSectorSize
}
