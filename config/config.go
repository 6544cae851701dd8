package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"sdkmatch/hasher"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// MaxFatalScore is the highest accepted fatal sentinel. Valid configurations
// cannot score below it.
const MaxFatalScore = -1000

type Config struct {
	StartPaths          []string          `json:"start_paths" yaml:"start_paths"`
	Recursive           bool              `json:"recursive" yaml:"recursive"`
	ParallelRoots       bool              `json:"parallel_roots" yaml:"parallel_roots"`
	IncludePatterns     []string          `json:"include_patterns" yaml:"include_patterns"`
	ExcludePatterns     []string          `json:"exclude_patterns" yaml:"exclude_patterns"`
	Firmware            string            `json:"firmware" yaml:"firmware"`
	TopN                int               `json:"top" yaml:"top"`
	OutputFormat        string            `json:"output_format" yaml:"output_format"`
	OutputFileName      string            `json:"output_file_name" yaml:"output_file_name"`
	LogLevel            string            `json:"log_level" yaml:"log_level"`
	MaxIOPerSecond      int               `json:"max_io_per_second" yaml:"max_io_per_second"`
	ShowProgress        bool              `json:"show_progress" yaml:"show_progress"`
	ConfigFile          string            `json:"config_file" yaml:"config_file"`
	MaxConfigBytes      int64             `json:"max_config_bytes" yaml:"max_config_bytes"`
	ContentReadMode     string            `json:"content_read_mode" yaml:"content_read_mode"`
	MmapMinSize         int64             `json:"mmap_min_size" yaml:"mmap_min_size"`
	MultiImageTolerance int64             `json:"multi_image_tolerance" yaml:"multi_image_tolerance"`
	ReferenceLoopCount  float64           `json:"reference_loop_count" yaml:"reference_loop_count"`
	ReferencePeriod     float64           `json:"reference_period" yaml:"reference_period"`
	FatalScore          int               `json:"fatal_score" yaml:"fatal_score"`
	HashAlgorithms      []string          `json:"hash_algorithms" yaml:"hash_algorithms"`
	CheckUpdate         bool              `json:"check_update" yaml:"check_update"`
	CollectSystemInfo   bool              `json:"collect_system_info" yaml:"collect_system_info"`
	WatchDebounce       time.Duration     `json:"watch_debounce" yaml:"watch_debounce"`
	OtelEndpoint        string            `json:"otel_endpoint" yaml:"otel_endpoint"`
	OtelFromEnv         bool              `json:"otel_from_env" yaml:"otel_from_env"`
	OtelHeaders         map[string]string `json:"otel_headers" yaml:"otel_headers"`
	OtelServiceName     string            `json:"otel_service_name" yaml:"otel_service_name"`
	OtelTimeout         time.Duration     `json:"otel_timeout" yaml:"otel_timeout"`
	OtelExportPaths     bool              `json:"otel_export_paths" yaml:"otel_export_paths"`
}

// Default returns the built-in configuration. The multi-image tolerance and
// the frameCfg reference values are empirical and kept overridable.
func Default() *Config {
	return &Config{
		StartPaths:          []string{"."},
		Recursive:           true,
		ParallelRoots:       false,
		IncludePatterns:     []string{},
		ExcludePatterns:     []string{},
		TopN:                5,
		OutputFormat:        "text",
		LogLevel:            "info",
		MaxIOPerSecond:      0,
		ShowProgress:        true,
		MaxConfigBytes:      1 * 1024 * 1024,
		ContentReadMode:     "auto",
		MmapMinSize:         128 * 1024,
		MultiImageTolerance: 100,
		ReferenceLoopCount:  64,
		ReferencePeriod:     100,
		FatalScore:          MaxFatalScore,
		HashAlgorithms:      []string{"sha256", "blake3", "xxhash"},
		CheckUpdate:         false,
		CollectSystemInfo:   true,
		WatchDebounce:       500 * time.Millisecond,
		OtelHeaders:         map[string]string{},
		OtelServiceName:     "sdkmatch",
		OtelTimeout:         5 * time.Second,
	}
}

// Flags holds values bound to a flag set; they are copied onto the loaded
// configuration only for flags the user actually set.
type Flags struct {
	fs          *pflag.FlagSet
	cfg         Config
	otelHeaders string
}

// BindFlags registers every configuration flag on fs.
func BindFlags(fs *pflag.FlagSet) *Flags {
	d := Default()
	t := &Flags{fs: fs, cfg: *d}
	c := &t.cfg
	fs.StringSliceVarP(&c.StartPaths, "path", "p", d.StartPaths, "Comma-separated list of SDK roots to scan.")
	fs.BoolVar(&c.Recursive, "recursive", d.Recursive, "Descend into subdirectories.")
	fs.BoolVar(&c.ParallelRoots, "parallel-roots", d.ParallelRoots, "Scan each root with its own session concurrently, then merge.")
	fs.StringSliceVar(&c.IncludePatterns, "include", nil, "Glob or regex patterns a candidate path must match.")
	fs.StringSliceVar(&c.ExcludePatterns, "exclude", nil, "Additional glob or regex exclusion patterns.")
	fs.StringVarP(&c.Firmware, "firmware", "f", "", "Firmware path or filename substring to match against.")
	fs.IntVarP(&c.TopN, "top", "n", d.TopN, "Number of ranked candidates to show (0 shows all).")
	fs.StringVar(&c.OutputFormat, "format", d.OutputFormat, "Output format: text or json.")
	fs.StringVarP(&c.OutputFileName, "output", "o", "", "Write the JSON report to this file.")
	fs.StringVar(&c.LogLevel, "log-level", d.LogLevel, "Log level: debug, info, warn, error, fatal, or panic.")
	fs.IntVar(&c.MaxIOPerSecond, "max-io-per-second", d.MaxIOPerSecond, "Maximum file visits per second during scans (0 means unlimited).")
	fs.BoolVar(&c.ShowProgress, "progress", d.ShowProgress, "Show a progress spinner while scanning.")
	fs.StringVar(&c.ConfigFile, "config", "", "Path to a JSON or YAML configuration file.")
	fs.Int64Var(&c.MaxConfigBytes, "max-config-bytes", d.MaxConfigBytes, "Maximum bytes read from a radar configuration file.")
	fs.StringVar(&c.ContentReadMode, "content-read-mode", d.ContentReadMode, "Content read mode: auto, stream, or mmap.")
	fs.Int64Var(&c.MmapMinSize, "mmap-min-size", d.MmapMinSize, "Minimum file size for the mmap read path.")
	fs.Int64Var(&c.MultiImageTolerance, "multi-image-tolerance", d.MultiImageTolerance, "Byte slack when comparing the image header length to the file size.")
	fs.Float64Var(&c.ReferenceLoopCount, "reference-loop-count", d.ReferenceLoopCount, "Expected frameCfg loop count.")
	fs.Float64Var(&c.ReferencePeriod, "reference-period", d.ReferencePeriod, "Expected frameCfg frame period.")
	fs.IntVar(&c.FatalScore, "fatal-score", d.FatalScore, "Score assigned to configurations missing required directives.")
	fs.StringSliceVar(&c.HashAlgorithms, "hashes", d.HashAlgorithms, "Digests reported for selected images: sha256, blake3, xxhash.")
	fs.BoolVar(&c.CheckUpdate, "check-update", d.CheckUpdate, "Check for a newer release on startup.")
	fs.BoolVar(&c.CollectSystemInfo, "collect-system-info", d.CollectSystemInfo, "Include host information in JSON reports.")
	fs.DurationVar(&c.WatchDebounce, "watch-debounce", d.WatchDebounce, "Quiet period before a watch rescan.")
	fs.StringVar(&c.OtelEndpoint, "otel-endpoint", "", "OTLP/HTTP logs endpoint for match records.")
	fs.BoolVar(&c.OtelFromEnv, "otel-from-env", d.OtelFromEnv, "Allow OTEL endpoint fallback from OTEL environment variables.")
	fs.StringVar(&t.otelHeaders, "otel-headers", "", "Comma-separated OTEL headers (key=value).")
	fs.StringVar(&c.OtelServiceName, "otel-service-name", d.OtelServiceName, "OTEL service name.")
	fs.DurationVar(&c.OtelTimeout, "otel-timeout", d.OtelTimeout, "OTEL export timeout.")
	fs.BoolVar(&c.OtelExportPaths, "otel-export-paths", d.OtelExportPaths, "Include full file paths in OTEL payloads.")
	return t
}

// Load builds the effective configuration: defaults, then the optional config
// file, then any flag explicitly set on fs.
func (t *Flags) Load() (*Config, error) {
	cfg := Default()
	if t.cfg.ConfigFile != "" {
		cfg.ConfigFile = t.cfg.ConfigFile
		if err := cfg.loadFromFile(cfg.ConfigFile); err != nil {
			return nil, err
		}
	}

	f := &t.cfg
	t.fs.VisitAll(func(fl *pflag.Flag) {
		if !fl.Changed {
			return
		}
		switch fl.Name {
		case "path":
			cfg.StartPaths = normalizeList(f.StartPaths)
		case "recursive":
			cfg.Recursive = f.Recursive
		case "parallel-roots":
			cfg.ParallelRoots = f.ParallelRoots
		case "include":
			cfg.IncludePatterns = normalizeList(f.IncludePatterns)
		case "exclude":
			cfg.ExcludePatterns = normalizeList(f.ExcludePatterns)
		case "firmware":
			cfg.Firmware = strings.TrimSpace(f.Firmware)
		case "top":
			cfg.TopN = f.TopN
		case "format":
			cfg.OutputFormat = f.OutputFormat
		case "output":
			cfg.OutputFileName = f.OutputFileName
		case "log-level":
			cfg.LogLevel = f.LogLevel
		case "max-io-per-second":
			cfg.MaxIOPerSecond = f.MaxIOPerSecond
		case "progress":
			cfg.ShowProgress = f.ShowProgress
		case "max-config-bytes":
			cfg.MaxConfigBytes = f.MaxConfigBytes
		case "content-read-mode":
			cfg.ContentReadMode = f.ContentReadMode
		case "mmap-min-size":
			cfg.MmapMinSize = f.MmapMinSize
		case "multi-image-tolerance":
			cfg.MultiImageTolerance = f.MultiImageTolerance
		case "reference-loop-count":
			cfg.ReferenceLoopCount = f.ReferenceLoopCount
		case "reference-period":
			cfg.ReferencePeriod = f.ReferencePeriod
		case "fatal-score":
			cfg.FatalScore = f.FatalScore
		case "hashes":
			cfg.HashAlgorithms = normalizeAlgorithms(f.HashAlgorithms)
		case "check-update":
			cfg.CheckUpdate = f.CheckUpdate
		case "collect-system-info":
			cfg.CollectSystemInfo = f.CollectSystemInfo
		case "watch-debounce":
			cfg.WatchDebounce = f.WatchDebounce
		case "otel-endpoint":
			cfg.OtelEndpoint = strings.TrimSpace(f.OtelEndpoint)
		case "otel-from-env":
			cfg.OtelFromEnv = f.OtelFromEnv
		case "otel-headers":
			cfg.OtelHeaders = parseHeaders(t.otelHeaders)
		case "otel-service-name":
			cfg.OtelServiceName = strings.TrimSpace(f.OtelServiceName)
		case "otel-timeout":
			cfg.OtelTimeout = f.OtelTimeout
		case "otel-export-paths":
			cfg.OtelExportPaths = f.OtelExportPaths
		}
	})

	cfg.OutputFormat = strings.ToLower(strings.TrimSpace(cfg.OutputFormat))
	cfg.ContentReadMode = strings.ToLower(strings.TrimSpace(cfg.ContentReadMode))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if cfg.OutputFormat == "" {
		cfg.OutputFormat = "text"
	}
	if cfg.ContentReadMode == "" {
		cfg.ContentReadMode = "auto"
	}
	if len(cfg.StartPaths) == 0 {
		cfg.StartPaths = []string{"."}
	}
	cfg.HashAlgorithms = normalizeAlgorithms(cfg.HashAlgorithms)
	if len(cfg.HashAlgorithms) == 0 {
		cfg.HashAlgorithms = []string{"sha256"}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not read config file: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("invalid config file format: %w", err)
		}
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("invalid config file format: %w", err)
		}
	}
	return nil
}

func (cfg *Config) Validate() error {
	if cfg.OutputFormat != "text" && cfg.OutputFormat != "json" {
		return fmt.Errorf("invalid output format: %s (text or json)", cfg.OutputFormat)
	}
	if cfg.ContentReadMode != "auto" && cfg.ContentReadMode != "stream" && cfg.ContentReadMode != "mmap" {
		return fmt.Errorf("invalid content-read-mode value: %s", cfg.ContentReadMode)
	}
	if cfg.TopN < 0 {
		return fmt.Errorf("top must be zero or positive")
	}
	if cfg.MaxIOPerSecond < 0 {
		return fmt.Errorf("max-io-per-second must be zero or positive")
	}
	if cfg.MaxConfigBytes <= 0 {
		return fmt.Errorf("max-config-bytes must be positive")
	}
	if cfg.MmapMinSize < 0 {
		return fmt.Errorf("mmap-min-size must be zero or positive")
	}
	if cfg.MultiImageTolerance < 0 {
		return fmt.Errorf("multi-image-tolerance must be zero or positive")
	}
	if cfg.ReferenceLoopCount <= 0 || cfg.ReferencePeriod <= 0 {
		return fmt.Errorf("reference loop count and period must be positive")
	}
	if cfg.FatalScore > MaxFatalScore {
		return fmt.Errorf("fatal-score must be %d or lower so fatal configurations rank last", MaxFatalScore)
	}
	for _, algo := range cfg.HashAlgorithms {
		if !hasher.Supported(algo) {
			return fmt.Errorf("unsupported hash algorithm: %s", algo)
		}
	}
	if cfg.WatchDebounce < 0 {
		return fmt.Errorf("watch-debounce must be zero or positive")
	}
	if cfg.OtelTimeout < 0 {
		return fmt.Errorf("otel-timeout must be zero or positive")
	}
	if cfg.OtelEndpoint != "" {
		if !strings.HasPrefix(cfg.OtelEndpoint, "http://") && !strings.HasPrefix(cfg.OtelEndpoint, "https://") {
			return fmt.Errorf("otel-endpoint must include scheme (http or https)")
		}
	}
	if cfg.LogLevel != "debug" && cfg.LogLevel != "info" && cfg.LogLevel != "warn" &&
		cfg.LogLevel != "error" && cfg.LogLevel != "fatal" && cfg.LogLevel != "panic" {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}
	return nil
}

func normalizeList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}

func parseHeaders(input string) map[string]string {
	headers := make(map[string]string)
	if input == "" {
		return headers
	}
	items := strings.Split(input, ",")
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		parts := strings.SplitN(item, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" {
			continue
		}
		headers[key] = value
	}
	return headers
}

func normalizeAlgorithms(items []string) []string {
	normalized := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		item = strings.ToLower(strings.TrimSpace(item))
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		normalized = append(normalized, item)
	}
	return normalized
}
