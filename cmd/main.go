package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"sdkmatch/config"
	"sdkmatch/logger"
	"sdkmatch/output"
	"sdkmatch/systeminfo"
	"sdkmatch/tracing"
	"sdkmatch/update"
	"sdkmatch/version"

	"github.com/spf13/cobra"
)

func main() {
	os.Exit(execute())
}

func execute() int {
	if err := tracing.Start(os.Getenv("SDKMATCH_TRACE_FILE")); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start trace: %v\n", err)
	} else {
		defer tracing.Stop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go handleSignalEvent(cancel, sigChan)

	if err := newRootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func handleSignalEvent(cancel context.CancelFunc, sigChan <-chan os.Signal) {
	if _, ok := <-sigChan; !ok {
		return
	}
	logger.Info("Interrupt signal received. Shutting down...")
	cancel()
}

// app carries the effective configuration from the root command's
// pre-run hook to the subcommands.
type app struct {
	flags *config.Flags
	cfg   *config.Config
	out   io.Writer
	start time.Time
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}
	root := &cobra.Command{
		Use:   "sdkmatch",
		Short: "Match xWRL6844 firmware with bootloaders and radar configurations",
		Long: `sdkmatch scans mmWave SDK trees for application images, secondary
bootloaders and radar configuration files, then ranks the bootloaders and
configurations that fit a chosen application firmware.

Examples:
  sdkmatch scan -p ~/ti/mmwave_l_sdk_06_00_00
  sdkmatch match-sbl -p ~/ti -f in_cabin_cpd.release.appimage
  sdkmatch match-cfg -p ~/ti -f in_cabin_cpd --top 3
  sdkmatch select -p ~/ti -f in_cabin_cpd --format json -o handoff.json
  sdkmatch validate profile.cfg`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}
	a.flags = config.BindFlags(root.PersistentFlags())

	root.AddCommand(
		newScanCmd(a),
		newMatchSBLCmd(a),
		newMatchCfgCmd(a),
		newInspectCmd(a),
		newValidateCmd(a),
		newSelectCmd(a),
		newWatchCmd(a),
		newVersionCmd(a),
	)
	return root
}

func (a *app) load() error {
	cfg, err := a.flags.Load()
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}
	a.cfg = cfg
	a.start = time.Now()
	logger.Init(cfg.LogLevel)

	if cfg.CheckUpdate {
		checkUpdate(version.Version)
	}
	return nil
}

func checkUpdate(current string) {
	latest, notes, newer, err := update.CheckForUpdate(current)
	if err != nil {
		logger.Debugf("Update check failed: %v", err)
		return
	}
	if !newer {
		return
	}
	if strings.Contains(strings.ToLower(notes), "security") {
		logger.Warnf("Update available: %s -> %s (security fixes included)", current, latest)
	} else {
		logger.Infof("Update available: %s -> %s", current, latest)
	}
}

// newReport fills the header shared by every command. Host information is
// only collected for machine-readable output.
func (a *app) newReport(ctx context.Context, command string) *output.Report {
	r := &output.Report{
		SchemaVersion: output.SchemaVersion,
		ToolVersion:   version.Version,
		Command:       command,
		Metrics:       &output.Metrics{StartTime: a.start.Format(time.RFC3339)},
	}
	if a.cfg.CollectSystemInfo && (a.cfg.OutputFormat == "json" || a.cfg.OutputFileName != "") {
		info, err := systeminfo.GetSystemInfo(ctx)
		if err != nil {
			logger.Warnf("Failed to gather system information: %v", err)
		}
		r.System = info
	}
	return r
}

// write finishes the metrics and sends r to every configured destination.
func (a *app) write(r *output.Report) error {
	r.Metrics.Finish(a.start)
	w, err := output.New(a.cfg, a.out)
	if err != nil {
		return err
	}
	defer w.Close()
	return w.Write(r)
}
