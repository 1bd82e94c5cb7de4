package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/safeharbor-io/zipdeid/internal/pipeline"
	"github.com/safeharbor-io/zipdeid/pkg/config"
	"github.com/safeharbor-io/zipdeid/pkg/logger"
	"github.com/safeharbor-io/zipdeid/pkg/metrics"
	"github.com/safeharbor-io/zipdeid/pkg/zipcode"
)

var version = "0.1.0"

func main() {
	// Load .env file if it exists
	_ = godotenv.Load() // Ignore error if .env doesn't exist

	root := &cobra.Command{
		Use:   "zipdeid",
		Short: "zipdeid - HIPAA Safe Harbor ZIP code deidentification for delimited files",
		Long: `zipdeid deidentifies United States ZIP codes embedded in delimited text
files following the HIPAA Safe Harbor rules. ZIP columns are truncated to
2- or 3-digit precision; sparsely populated prefixes are reduced further
or redacted. Every other field passes through unchanged.`,
	}

	// Version command
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("zipdeid v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	// Prefixes command prints the sparse prefix table
	root.AddCommand(&cobra.Command{
		Use:   "prefixes",
		Short: "List the sparsely populated 3-digit ZIP prefixes",
		Long: `List the 3-digit ZIP prefixes whose aggregate population is below
20,000 per 2010 Census data. Under 3-digit precision these values are
redacted; smart mode reduces them to 2-digit precision instead.`,
		Run: func(cmd *cobra.Command, args []string) {
			for _, prefix := range zipcode.SparsePrefixes() {
				fmt.Println(prefix)
			}
		},
	})

	root.AddCommand(newRunCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRunCommand() *cobra.Command {
	var (
		configFile    string
		output        string
		cols          []string
		precision     string
		fill          string
		redaction     string
		delimiter     string
		noHeader      bool
		bufferSize    int
		logLevel      string
		enableMetrics bool
		metricsAddr   string
		timeout       time.Duration
	)

	runCmd := &cobra.Command{
		Use:   "run <input-file>",
		Short: "Deidentify ZIP codes in a delimited file",
		Long: `Deidentify ZIP codes in a delimited file and write the result next to
the input (or to --output). Column selectors are names or zero-based
indices; selectors that match nothing are skipped with a warning.

Examples:
  # Smart HIPAA-compliant mode with zeros (defaults)
  zipdeid run patients.csv

  # 3-digit precision with X fill; sparse prefixes get redacted
  zipdeid run patients.csv -p 3 -f X

  # Multiple columns, tab-separated input
  zipdeid run visits.tsv -d '\t' -c home_zip -c work_zip

  # Pipe-separated file selecting column 4 by index
  zipdeid run export.txt -d '|' -c 4`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.New()
			if configFile != "" {
				if err := config.Load(configFile, cfg); err != nil {
					return err
				}
			}

			cfg.IO.Input = args[0]
			flags := cmd.Flags()
			if flags.Changed("output") {
				cfg.IO.Output = output
			}
			if flags.Changed("columns") {
				cfg.Deidentify.Columns = cols
			}
			if flags.Changed("precision") {
				cfg.Deidentify.Precision = precision
			}
			if flags.Changed("fill") {
				cfg.Deidentify.Fill = fill
			}
			if flags.Changed("redaction") {
				cfg.Deidentify.Redaction = redaction
			}
			if flags.Changed("delimiter") {
				cfg.IO.Delimiter = delimiter
			}
			if flags.Changed("no-header") {
				cfg.IO.NoHeader = noHeader
			}
			if flags.Changed("buffer-size") {
				cfg.Performance.BufferSize = bufferSize
			}
			if flags.Changed("log-level") {
				cfg.Observability.LogLevel = logLevel
			}
			if flags.Changed("enable-metrics") {
				cfg.Observability.EnableMetrics = enableMetrics
			}
			if flags.Changed("metrics-addr") {
				cfg.Observability.MetricsAddr = metricsAddr
			}

			return runDeidentify(cfg, timeout)
		},
	}

	runCmd.Flags().StringVar(&configFile, "config", "", "Path to YAML or JSON configuration file (optional)")
	runCmd.Flags().StringVarP(&output, "output", "o", "", "Output file path (default: adds _deidentified to input filename)")
	runCmd.Flags().StringArrayVarP(&cols, "columns", "c", []string{"zipcode"}, "Column names or zero-based indices containing ZIP codes")
	runCmd.Flags().StringVarP(&precision, "precision", "p", "smart", "Precision level: 2=2-digit, 3=3-digit (redacts sparse prefixes), smart=HIPAA-compliant")
	runCmd.Flags().StringVarP(&fill, "fill", "f", "0", "Fill character for truncated digits: 0 or X")
	runCmd.Flags().StringVarP(&redaction, "redaction", "r", zipcode.DefaultRedaction, "Replacement string for values redacted under 3-digit precision")
	runCmd.Flags().StringVarP(&delimiter, "delimiter", "d", ",", `Field delimiter: "," for CSV, "\t" for TSV, ";" or "|" also accepted`)
	runCmd.Flags().BoolVar(&noHeader, "no-header", false, "Treat the input as header-less; only index selectors are usable")
	runCmd.Flags().IntVar(&bufferSize, "buffer-size", 1024, "Row channel capacity between pipeline stages")
	runCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&enableMetrics, "enable-metrics", false, "Expose Prometheus metrics over HTTP during the run")
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9090", "Listen address for the metrics endpoint")
	runCmd.Flags().DurationVar(&timeout, "timeout", 30*time.Minute, "Run timeout")

	return runCmd
}

// runDeidentify executes the deidentification run with the given configuration
func runDeidentify(cfg *config.Config, timeout time.Duration) error {
	if err := logger.Init(logger.Config{
		Level:    cfg.Observability.LogLevel,
		Encoding: "json",
	}); err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get().With(
		zap.String("component", "zipdeid-cli"),
		zap.String("input", cfg.IO.Input),
	)

	if cfg.Observability.EnableMetrics {
		go func() {
			log.Info("metrics endpoint listening", zap.String("addr", cfg.Observability.MetricsAddr))
			if err := metrics.Serve(cfg.Observability.MetricsAddr); err != nil {
				log.Warn("metrics endpoint stopped", zap.Error(err))
			}
		}()
	}

	p, err := pipeline.New(cfg, log)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	startTime := time.Now()
	if err := p.Run(ctx); err != nil {
		return err
	}

	snapshot := p.Metrics()
	log.Info("deidentification finished",
		zap.Duration("duration", time.Since(startTime)),
		zap.Any("rows_processed", snapshot["rows_processed"]),
		zap.Any("fields_transformed", snapshot["fields_transformed"]),
		zap.Any("redactions", snapshot["redactions"]),
		zap.String("output", cfg.OutputPath()))

	return nil
}
