// Package scoring ranks bootloaders and radar configurations against a
// chosen application firmware.
package scoring

import (
	"sdkmatch/config"
	"sdkmatch/fileio"
	"sdkmatch/imageformat"
	"sdkmatch/logger"
	"sdkmatch/ranking"
	"sdkmatch/scanner"
	"sdkmatch/validator"
)

type BootloaderMatch = ranking.Scored[*scanner.BootloaderRecord, BootloaderDiagnostics]

type ConfigMatch = ranking.Scored[*scanner.ConfigRecord, ConfigDiagnostics]

// Scorer carries the collaborators and the fatal sentinel. Scores depend
// only on paths and file contents. A config missing required directives
// scores exactly FatalScore, plus the invalid-directive penalty.
type Scorer struct {
	Inspector  *imageformat.Inspector
	Validator  *validator.Validator
	FatalScore int
}

func New(in *imageformat.Inspector, v *validator.Validator, fatalScore int) *Scorer {
	if in == nil {
		in = imageformat.Default
	}
	if v == nil {
		v = validator.Default
	}
	if fatalScore >= MinValidScore {
		logger.Warnf("Fatal score %d does not dominate valid configurations; using %d", fatalScore, DefaultFatalScore)
		fatalScore = DefaultFatalScore
	}
	return &Scorer{Inspector: in, Validator: v, FatalScore: fatalScore}
}

// NewFromConfig builds a scorer from the empirical constants in cfg.
func NewFromConfig(cfg *config.Config) *Scorer {
	read := fileio.Options{
		MaxSize:     cfg.MaxConfigBytes,
		Mode:        cfg.ContentReadMode,
		MmapMinSize: cfg.MmapMinSize,
	}
	return New(
		imageformat.New(cfg.MultiImageTolerance),
		validator.New(cfg.ReferenceLoopCount, cfg.ReferencePeriod, read),
		cfg.FatalScore,
	)
}

var Default = New(nil, nil, DefaultFatalScore)

func ScoreBootloaders(fw *scanner.FirmwareRecord, candidates []*scanner.BootloaderRecord) []BootloaderMatch {
	return Default.ScoreBootloaders(fw, candidates)
}

func ScoreConfigs(fw *scanner.FirmwareRecord, candidates []*scanner.ConfigRecord) []ConfigMatch {
	return Default.ScoreConfigs(fw, candidates)
}
