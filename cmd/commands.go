package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"sdkmatch/imageformat"
	"sdkmatch/logger"
	"sdkmatch/output"
	"sdkmatch/ranking"
	"sdkmatch/scanner"
	"sdkmatch/scoring"
	"sdkmatch/tracing"
	"sdkmatch/version"
	"sdkmatch/watch"

	"github.com/spf13/cobra"
)

var errNoFirmware = errors.New("--firmware is required")

func (a *app) scan(ctx context.Context) (*scanner.Session, scanner.Counts) {
	s := scanner.NewFromConfig(a.cfg)
	session, counts := s.ScanRoots(ctx, a.cfg.StartPaths, a.cfg.Recursive, a.cfg.ParallelRoots)
	logger.WithField("roots", len(a.cfg.StartPaths)).Infof("Found %d application, %d bootloader and %d configuration files",
		counts.Application, counts.SBL, counts.Config)
	return session, counts
}

// resolveFirmware accepts an exact path or filename, then falls back to a
// case-insensitive substring that must identify a single application.
func resolveFirmware(session *scanner.Session, query string) (*scanner.FirmwareRecord, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errNoFirmware
	}
	if fw := session.FindFirmware(query); fw != nil {
		return fw, nil
	}
	needle := strings.ToLower(query)
	var found []*scanner.FirmwareRecord
	for _, fw := range session.Firmware {
		if strings.Contains(strings.ToLower(fw.Path), needle) {
			found = append(found, fw)
		}
	}
	switch len(found) {
	case 0:
		return nil, fmt.Errorf("no application firmware matches %q (%d scanned)", query, len(session.Firmware))
	case 1:
		return found[0], nil
	}
	names := make([]string, 0, len(found))
	for _, fw := range found {
		names = append(names, fw.Filename)
	}
	return nil, fmt.Errorf("%q matches %d applications: %s", query, len(found), strings.Join(names, ", "))
}

func newScanCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Scan SDK roots and list the application images found",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			session, counts := a.scan(ctx)
			r := a.newReport(ctx, "scan")
			r.Roots = a.cfg.StartPaths
			r.Counts = &counts
			r.Applications = session.Firmware
			return a.write(r)
		},
	}
}

// matchReport scans, resolves the firmware and scores the requested kinds.
func (a *app) matchReport(ctx context.Context, command string, sbl, cfg bool) (*output.Report, []scoring.BootloaderMatch, []scoring.ConfigMatch, error) {
	session, counts := a.scan(ctx)
	fw, err := resolveFirmware(session, a.cfg.Firmware)
	if err != nil {
		return nil, nil, nil, err
	}
	scorer := scoring.NewFromConfig(a.cfg)
	r := a.newReport(ctx, command)
	r.Roots = a.cfg.StartPaths
	r.Counts = &counts
	r.Firmware = fw

	var bootloaders []scoring.BootloaderMatch
	var configs []scoring.ConfigMatch
	if sbl {
		endRegion := tracing.StartRegion(ctx, "score_bootloaders")
		bootloaders = scorer.ScoreBootloaders(fw, session.Bootloaders)
		r.Bootloaders = ranking.Top(bootloaders, a.cfg.TopN)
		endRegion()
	}
	if cfg {
		endRegion := tracing.StartRegion(ctx, "score_configs")
		configs = scorer.ScoreConfigs(fw, session.Configs)
		r.Configs = ranking.Top(configs, a.cfg.TopN)
		endRegion()
	}
	return r, bootloaders, configs, nil
}

func newMatchSBLCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "match-sbl",
		Short: "Rank secondary bootloaders for a firmware",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, _, _, err := a.matchReport(cmd.Context(), "match-sbl", true, false)
			if err != nil {
				return err
			}
			return a.write(r)
		},
	}
}

func newMatchCfgCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "match-cfg",
		Short: "Rank radar configuration files for a firmware",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, _, _, err := a.matchReport(cmd.Context(), "match-cfg", false, true)
			if err != nil {
				return err
			}
			return a.write(r)
		},
	}
}

func newInspectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <image>...",
		Short: "Show the container header of image files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := imageformat.New(a.cfg.MultiImageTolerance)
			r := a.newReport(cmd.Context(), "inspect")
			for _, path := range args {
				r.Images = append(r.Images, in.Describe(path))
			}
			return a.write(r)
		},
	}
}

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config>...",
		Short: "Check radar configuration files for required and unsupported directives",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v := scoring.NewFromConfig(a.cfg).Validator
			r := a.newReport(cmd.Context(), "validate")
			for _, path := range args {
				r.Validations = append(r.Validations, v.Validate(path))
			}
			return a.write(r)
		},
	}
}

// selectHandoff picks the best bootloader and the best configuration that
// has no fatal diagnostics.
func (a *app) selectHandoff(r *output.Report, bootloaders []scoring.BootloaderMatch, configs []scoring.ConfigMatch) error {
	best, ok := ranking.Best(bootloaders)
	if !ok {
		return fmt.Errorf("no bootloader candidates found for %s", r.Firmware.Filename)
	}
	if !best.Diagnostics.Layout.Flashable() {
		logger.Warnf("Best bootloader %s is %s and cannot be flashed", best.Candidate.Path, best.Diagnostics.Layout)
	}
	var cfg *scoring.ConfigMatch
	for i := range configs {
		if len(configs[i].Diagnostics.Fatal) == 0 {
			cfg = &configs[i]
			break
		}
	}
	if cfg == nil && len(configs) > 0 {
		logger.Warn("Every configuration candidate has fatal diagnostics; none selected")
	}
	r.Handoff = output.NewHandoff(r.Firmware, best, cfg, a.cfg.HashAlgorithms)
	return nil
}

func newSelectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "select",
		Short: "Choose the bootloader and configuration for a firmware and print the flashing handoff",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, bootloaders, configs, err := a.matchReport(cmd.Context(), "select", true, true)
			if err != nil {
				return err
			}
			if err := a.selectHandoff(r, bootloaders, configs); err != nil {
				return err
			}
			return a.write(r)
		},
	}
}

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Rescan and re-rank whenever images or configurations change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := output.New(a.cfg, a.out)
			if err != nil {
				return err
			}
			defer w.Close()

			run := func(ctx context.Context) {
				r, err := a.watchReport(ctx)
				if err != nil {
					logger.Warnf("Rescan failed: %v", err)
					return
				}
				if err := w.Write(r); err != nil {
					logger.Warnf("Failed to write report: %v", err)
				}
			}

			watcher, err := watch.New(a.cfg.StartPaths, a.cfg.Recursive, a.cfg.WatchDebounce)
			if err != nil {
				return fmt.Errorf("failed to start watcher: %w", err)
			}
			run(cmd.Context())
			logger.Infof("Watching %s", strings.Join(a.cfg.StartPaths, ", "))
			return watcher.Run(cmd.Context(), run)
		},
	}
}

// watchReport ranks against the configured firmware, or lists applications
// when none is set.
func (a *app) watchReport(ctx context.Context) (*output.Report, error) {
	a.start = time.Now()
	if strings.TrimSpace(a.cfg.Firmware) == "" {
		session, counts := a.scan(ctx)
		r := a.newReport(ctx, "watch")
		r.Roots = a.cfg.StartPaths
		r.Counts = &counts
		r.Applications = session.Firmware
		r.Metrics.Finish(a.start)
		return r, nil
	}
	r, _, _, err := a.matchReport(ctx, "watch", true, true)
	if err != nil {
		return nil, err
	}
	r.Metrics.Finish(a.start)
	return r, nil
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(a.out, "sdkmatch %s\n", version.Version)
			return err
		},
	}
}
