package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"distresscli/internal/config"
	"distresscli/internal/distress"
	"distresscli/internal/fundamentals"
	"distresscli/internal/infrastructure"
	"distresscli/internal/validation"
	"distresscli/pkg/contracts"
	"distresscli/pkg/contracts/domain"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		slog.Error("Distress report failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

type options struct {
	in         string
	ticker     string
	out        string
	format     string
	configPath string
	version    bool
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("distress-report", flag.ContinueOnError)
	fs.StringVar(&opts.in, "in", "", "statement file (.json or .xlsx)")
	fs.StringVar(&opts.ticker, "ticker", "", "ticker to select from JSON input, or to name a workbook entity")
	fs.StringVar(&opts.out, "out", "", "output directory for reports (defaults to report.output_dir)")
	fs.StringVar(&opts.format, "format", "", "report format: csv, xlsx or both (defaults to report.format)")
	fs.StringVar(&opts.configPath, "config", "", "configuration file")
	fs.BoolVar(&opts.version, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if !opts.version && opts.in == "" {
		return opts, fmt.Errorf("-in is required")
	}
	return opts, nil
}

func loadConfig(opts options) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.LoadFile(opts.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if opts.out != "" {
		cfg.Report.OutputDir = opts.out
	}
	if opts.format != "" {
		cfg.Report.Format = opts.format
	}
	if !cfg.WantCSV() && !cfg.WantXLSX() {
		return nil, fmt.Errorf("unsupported report format %q", cfg.Report.Format)
	}
	return cfg, nil
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}
	if opts.version {
		fmt.Fprintln(stdout, contracts.GetFullVersionString())
		return nil
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer infrastructure.CloseLogFile()

	providers, err := infrastructure.InitializeOTel(cfg.Telemetry, os.Stderr, logger)
	if err != nil {
		return fmt.Errorf("initialize telemetry: %w", err)
	}
	defer func() {
		if err := providers.Shutdown(context.Background()); err != nil {
			logger.Warn("Telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	metrics, err := distress.NewMetrics(providers.Meter)
	if err != nil {
		return fmt.Errorf("create engine metrics: %w", err)
	}

	cal, err := cfg.Calendar()
	if err != nil {
		return err
	}
	engine := distress.NewEngine(cal, logger,
		distress.WithConcurrency(cfg.Engine.Concurrency),
		distress.WithMetrics(metrics),
	)

	ctx, span := providers.Tracer.Start(ctx, "distress-report")
	defer span.End()
	ctx = infrastructure.EnsureTraceID(ctx)

	logger.InfoContext(ctx, "Loading statements",
		slog.String("path", opts.in),
		slog.String("ticker", opts.ticker))

	sets, err := fundamentals.NewLoader(logger).Load(opts.in, opts.ticker)
	if err != nil {
		return fmt.Errorf("load statements: %w", err)
	}
	logger.InfoContext(ctx, "Loaded statements", slog.Int("entities", len(sets)))

	start := time.Now()
	outcomes, err := engine.ScoreBatch(ctx, sets)
	if err != nil {
		return fmt.Errorf("score entities: %w", err)
	}

	reports := make([]domain.DistressReport, len(outcomes))
	for i, o := range outcomes {
		reports[i] = o.Report()
	}
	logger.InfoContext(ctx, "Scored entities",
		slog.Int("entities", len(reports)),
		slog.Duration("elapsed", time.Since(start)))

	paths, err := saveReports(cfg, reports, logger)
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "Distress report generated successfully",
		slog.Any("files", paths),
		slog.Int("entities", len(reports)))

	printSummaryStats(stdout, reports)
	return nil
}

// saveReports writes every configured output and returns the file paths
func saveReports(cfg *config.Config, reports []domain.DistressReport, logger *slog.Logger) ([]string, error) {
	dir := cfg.Report.OutputDir
	if err := validation.NewFileValidator(logger).ValidateOutputDirectory(dir); err != nil {
		return nil, err
	}

	timestamp := time.Now().Format("20060102")
	var paths []string

	if cfg.WantCSV() {
		p := filepath.Join(dir, fmt.Sprintf("distress_report_%s.csv", timestamp))
		if err := distress.SaveToCSV(reports, p); err != nil {
			return nil, fmt.Errorf("save csv report: %w", err)
		}
		paths = append(paths, p)
	}

	if cfg.WantXLSX() {
		p := filepath.Join(dir, fmt.Sprintf("distress_report_%s.xlsx", timestamp))
		if err := distress.SaveToExcel(reports, p); err != nil {
			return nil, fmt.Errorf("save excel report: %w", err)
		}
		paths = append(paths, p)
	}

	if cfg.Report.Summary {
		p := filepath.Join(dir, fmt.Sprintf("distress_summary_%s.txt", timestamp))
		if err := distress.SaveSummaryReport(reports, p); err != nil {
			return nil, fmt.Errorf("save summary report: %w", err)
		}
		paths = append(paths, p)
	}

	return paths, nil
}

const topN = 10

// printSummaryStats prints the most distressed scored entities
func printSummaryStats(w io.Writer, reports []domain.DistressReport) {
	ranked := make([]domain.DistressReport, 0, len(reports))
	insufficient := 0
	for _, r := range reports {
		if r.Status == domain.ScoreStatusScored {
			ranked = append(ranked, r)
		} else {
			insufficient++
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].DistressScore > ranked[j].DistressScore
	})
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}

	fmt.Fprintf(w, "\n=== MOST DISTRESSED ENTITIES (TOP %d) ===\n", topN)
	fmt.Fprintln(w, "Ticker     | Score | Altman Zone | F-Score | Manipulation")
	fmt.Fprintln(w, "-----------|-------|-------------|---------|-------------")
	for _, r := range ranked {
		zone, fscore, risk := "-", 0, "-"
		if r.Diagnostics != nil {
			zone, fscore, risk = r.Diagnostics.AltmanZone, r.Diagnostics.FScore, r.Diagnostics.ManipulationRisk
		}
		fmt.Fprintf(w, "%-10s | %5.1f | %-11s | %7d | %s\n", r.Ticker, r.DistressScore, zone, fscore, risk)
	}

	if insufficient > 0 {
		fmt.Fprintf(w, "\n%d entities had insufficient data and were scored neutral (50.0)\n", insufficient)
	}
}
