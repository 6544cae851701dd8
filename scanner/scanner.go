package scanner

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"sdkmatch/config"
	"sdkmatch/logger"
	"sdkmatch/tracing"
	"sdkmatch/utils"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/time/rate"
)

// Options control user filters, pacing and the progress spinner.
type Options struct {
	IncludePatterns []string
	ExcludePatterns []string
	MaxIOPerSecond  int
	ShowProgress    bool
}

type Scanner struct {
	matcher  *utils.PatternMatcher
	limiter  *rate.Limiter
	progress bool
}

func New(opts Options) *Scanner {
	s := &Scanner{
		matcher:  utils.NewPatternMatcher(opts.IncludePatterns, opts.ExcludePatterns),
		progress: opts.ShowProgress && progressVisible(),
	}
	if opts.MaxIOPerSecond > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(opts.MaxIOPerSecond), opts.MaxIOPerSecond)
	}
	return s
}

func NewFromConfig(cfg *config.Config) *Scanner {
	return New(Options{
		IncludePatterns: cfg.IncludePatterns,
		ExcludePatterns: cfg.ExcludePatterns,
		MaxIOPerSecond:  cfg.MaxIOPerSecond,
		ShowProgress:    cfg.ShowProgress,
	})
}

var defaultScanner = New(Options{})

// Scan walks root with the built-in rules only.
func Scan(ctx context.Context, session *Session, root string, recursive bool) Counts {
	return defaultScanner.Scan(ctx, session, root, recursive)
}

// Scan walks root and appends every recognized artifact to session. It never
// fails: a missing root yields zero counts and per-file problems are logged.
// ctx is checked between file visits; on cancellation the records found so
// far stay in the session.
func (s *Scanner) Scan(ctx context.Context, session *Session, root string, recursive bool) Counts {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, endTask := tracing.StartTask(ctx, "scan_root")
	defer endTask()
	tracing.Log(ctx, "root", root)

	var counts Counts
	var bar *progressbar.ProgressBar
	if s.progress {
		bar = progressbar.NewOptions(-1,
			progressbar.OptionSetDescription("Scanning "+root),
			progressbar.OptionShowCount(),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionSetVisibility(true),
			progressbar.OptionClearOnFinish(),
		)
		defer bar.Finish()
	}

	w := fastWalker{recursive: recursive}
	err := w.Walk(ctx, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Debugf("Failed to access %s: %v", path, err)
			return nil
		}
		if d == nil || d.IsDir() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return err
			}
		}
		if bar != nil {
			_ = bar.Add(1)
		}

		counts.TotalFiles++
		session.FilesVisited++
		if IsExcluded(path) || !s.matcher.ShouldInclude(path) {
			counts.Excluded++
			session.FilesExcluded++
			return nil
		}

		kind := Classify(path)
		if kind == KindNone {
			return nil
		}
		filename := filepath.Base(path)
		size, mod := statFile(path, d)
		switch kind {
		case KindSBL:
			session.Bootloaders = append(session.Bootloaders, newBootloaderRecord(path, filename, size, mod))
			counts.SBL++
		case KindApplication:
			session.Firmware = append(session.Firmware, newFirmwareRecord(path, filename, size, mod))
			counts.Application++
		case KindConfig:
			session.Configs = append(session.Configs, newConfigRecord(path, filename, size, mod))
			counts.Config++
		}
		if logger.IsDebug() {
			logger.WithField("kind", kind.String()).Debugf("Found %s", path)
		}
		return nil
	})
	if err != nil && ctx.Err() == nil {
		logger.Warnf("Error walking path %s: %v", root, err)
	}
	return counts
}

// ScanRoots scans every root into a fresh session. With parallel set each
// root gets its own goroutine and session; results are merged in root order.
func (s *Scanner) ScanRoots(ctx context.Context, roots []string, recursive, parallel bool) (*Session, Counts) {
	merged := NewSession()
	var total Counts
	if !parallel || len(roots) < 2 {
		for _, root := range roots {
			total.add(s.Scan(ctx, merged, root, recursive))
		}
		return merged, total
	}

	sessions := make([]*Session, len(roots))
	counts := make([]Counts, len(roots))
	var wg sync.WaitGroup
	for i, root := range roots {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sessions[i] = NewSession()
			counts[i] = s.Scan(ctx, sessions[i], root, recursive)
		}()
	}
	wg.Wait()
	for i := range roots {
		merged.Merge(sessions[i])
		total.add(counts[i])
	}
	return merged, total
}

func progressVisible() bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv("SDKMATCH_DISABLE_PROGRESS")))
	return value != "1" && value != "true" && value != "yes" && value != "on"
}
