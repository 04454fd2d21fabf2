// Package cli wires configuration, adapters and the orchestrator behind a cobra command.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"domaincreates/internal/adapters/downloader"
	"domaincreates/internal/adapters/localstorage"
	"domaincreates/internal/adapters/pdftable"
	"domaincreates/internal/config"
	"domaincreates/internal/core/domain"
	"domaincreates/internal/logger"
	"domaincreates/internal/metrics"
	"domaincreates/internal/service"
)

// errRunFailed is returned under --exit-code when a fetch or extract failed.
var errRunFailed = errors.New("run failed")

// Execute runs the root command and exits non-zero on error.
func Execute() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

type options struct {
	configPath  string
	root        string
	metricsFile string
	debug       bool
	exitCode    bool
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "domain-creates [DD-MM-YYYY]",
		Short: "Fetch the registry's daily domain-creates report and extract the domain list",
		Long: `Downloads domain-creates_<DD-MM-YYYY>.pdf from the registry, extracts the
first column of the table on each page and writes it to
<YYYY>/<MM>/domains_<DD-MM-YYYY>.txt. Without a date, today is used.

The date must be zero padded: 05-06-2024 is accepted, 5-6-2024 is rejected.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var dateArg string
			if len(args) == 1 {
				dateArg = args[0]
			}
			return run(cmd, opts, dateArg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "optional YAML config file")
	flags.StringVar(&opts.root, "root", "", "directory the <YYYY>/<MM> tree is created in (default: current directory)")
	flags.StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus textfile metrics to this path")
	flags.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	flags.BoolVar(&opts.exitCode, "exit-code", false, "exit with status 1 when the fetch or extraction fails")
	return cmd
}

func run(cmd *cobra.Command, opts options, dateArg string) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.root != "" {
		cfg.OutputRoot = opts.root
	}
	if opts.metricsFile != "" {
		cfg.MetricsFile = opts.metricsFile
	}

	log, err := logger.New(logger.Config{
		Output:     cmd.OutOrStdout(),
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Debug:      opts.debug,
		FilePath:   cfg.Log.FilePath,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	store := localstorage.NewLocalStorage()
	dl := downloader.NewHTTPDownloader(
		downloader.WithTimeout(cfg.HTTPTimeout),
		downloader.WithUserAgent(cfg.UserAgent),
	)
	opener := pdftable.NewOpener(pdftable.DetectOptions{
		LineTolerance: cfg.Detect.LineTolerance,
		WordGap:       cfg.Detect.WordGap,
		CellGap:       cfg.Detect.CellGap,
		MaxRowGap:     cfg.Detect.MaxRowGap,
	})

	orchOpts := []service.OrchestratorOption{service.WithLocation(loc)}
	var m *metrics.Metrics
	if cfg.MetricsFile != "" {
		m = metrics.New()
		orchOpts = append(orchOpts, service.WithRecorder(m))
	}

	orchestrator := service.NewOrchestrator(
		service.NewFetcher(dl, store, cfg.URLTemplate, log),
		service.NewExtractor(opener, store, log),
		store,
		cfg.OutputRoot,
		log,
		orchOpts...,
	)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			log.Info("Received interrupt signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	result, err := orchestrator.Run(ctx, dateArg)
	if err != nil {
		return err
	}

	if m != nil {
		if err := m.WriteTextfile(cfg.MetricsFile); err != nil {
			log.Warn("failed to write metrics file", zap.String("path", cfg.MetricsFile), zap.Error(err))
		}
	}

	printSummary(cmd.OutOrStdout(), result)

	if !result.Success && opts.exitCode {
		cmd.SilenceErrors = true
		return errRunFailed
	}
	return nil
}

func printSummary(w io.Writer, result *domain.RunResult) {
	fmt.Fprintln(w, "\n=== Run Summary ===")
	fmt.Fprintf(w, "Run ID:       %s\n", result.RunID)
	fmt.Fprintf(w, "Date:         %s\n", result.Date)
	fmt.Fprintf(w, "Stage:        %s\n", result.Stage)
	fmt.Fprintf(w, "Success:      %t\n", result.Success)
	if !result.Success {
		fmt.Fprintf(w, "Error:        %v\n", result.Err)
	} else {
		fmt.Fprintf(w, "Domains:      %d\n", result.Domains)
		fmt.Fprintf(w, "Output:       %s\n", result.Layout.OutputPath)
	}
	fmt.Fprintf(w, "Completed At: %s\n", result.CompletedAt.Format(time.RFC3339))
}
