package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ignacioe7/tripscan/internal/config"
	"github.com/ignacioe7/tripscan/internal/crawler"
	"github.com/ignacioe7/tripscan/internal/database"
	"github.com/ignacioe7/tripscan/internal/fetch"
	"github.com/ignacioe7/tripscan/internal/log"
	"github.com/ignacioe7/tripscan/internal/model"
	"github.com/ignacioe7/tripscan/internal/pipeline"
	"github.com/ignacioe7/tripscan/internal/report"
	"github.com/ignacioe7/tripscan/internal/sentiment"
)

// tokenEnvVar names the environment variable holding the inference API
// token. A flag value takes precedence.
const tokenEnvVar = "TRIPSCAN_HF_TOKEN"

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Discover, extract, classify, and aggregate reviews",
		Long: `Run executes the full pipeline for every configured region:

1. Discover attractions from the region's listing pages
2. Extract reviews for attractions with new reviews since the last run
3. Classify review sentiment with the configured inference model
4. Recompute attraction and region aggregates

Regions come from the tripscan.yml regions file. The run is incremental:
attractions whose stored review count already matches the listing are
skipped, and already stored reviews are never duplicated.

Examples:
  # Run with tripscan.yml from the current directory
  tripscan run

  # Use a specific regions file and slow down requests
  tripscan run -c regions.yml --rate 0.5

  # Collect only, classify later
  tripscan run --skip-classify

  # Run only the named regions from the regions file
  tripscan run valparaiso santiago

  # Write the run summary as Markdown to a file
  tripscan run -m -o reports/run.md`,
		Args: cobra.ArbitraryArgs,
		RunE: runRunCmd,
	}

	// Crawl behavior flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each HTTP request")
	cmd.Flags().Float64P("rate", "r", config.DefaultRequestsPerSecond,
		"Maximum outbound requests per second")
	cmd.Flags().IntP("workers", "w", config.DefaultWorkers,
		"Number of attractions extracted concurrently")
	cmd.Flags().IntP("max-attempts", "a", config.DefaultMaxAttempts,
		"Attempts per page before it is skipped")
	cmd.Flags().IntP("max-review-pages", "p", config.DefaultMaxReviewPages,
		"Maximum review pages per attraction (0 = no cap)")
	cmd.Flags().IntP("max-attractions", "n", 0,
		"Maximum attractions collected per region (0 = no cap)")
	cmd.Flags().StringP("language", "l", "",
		"Restrict review extraction to one review language (e.g. en, es)")

	// Classification flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of review texts per inference request")
	cmd.Flags().String("model", config.DefaultModelName,
		"Sentiment model name stored with every result")
	cmd.Flags().String("endpoint", config.DefaultInferenceEndpoint,
		"Inference API endpoint URL")
	cmd.Flags().String("token", "",
		"Inference API token (defaults to $"+tokenEnvVar+")")
	cmd.Flags().Bool("skip-classify", false,
		"Skip the sentiment classification stage")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Regions file path (default: tripscan.yml in current or XDG config directory)")

	// Run summary output flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON run summary (mutually exclusive with --markdown and --csv)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown run summary (mutually exclusive with --json and --csv)")
	cmd.Flags().Bool("csv", false,
		"Output CSV run summary (mutually exclusive with --json and --markdown)")
	cmd.Flags().StringP("output", "o", "",
		"Write run summary to specified file path (creates directories if needed)")

	// Storage
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory for the SQLite database")

	// Error handling
	cmd.Flags().Bool("continue-on-error", false,
		"Keep executing later stages after a stage fails")

	return cmd
}

// runRunCmd executes the run command.
func runRunCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildRunConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if len(args) > 0 {
		if cfg.Regions, err = selectRegions(cfg.Regions, args); err != nil {
			return err
		}
	}
	if len(cfg.Regions) == 0 {
		return config.ErrNoRegions
	}

	// Set up structured logging
	verbose := getVerboseFlag(cmd)
	logger := log.NewSecureLogger(os.Stderr, verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	continueOnError, err := cmd.Flags().GetBool("continue-on-error")
	if err != nil {
		return err
	}

	return runPipeline(ctx, cfg, continueOnError, logger)
}

// selectRegions filters the configured regions down to the requested IDs,
// keeping the regions file order. An unknown ID fails the run rather than
// being silently skipped.
func selectRegions(regions []model.Region, ids []string) ([]model.Region, error) {
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	var selected []model.Region
	for _, r := range regions {
		if wanted[r.ID] {
			selected = append(selected, r)
			delete(wanted, r.ID)
		}
	}
	if len(wanted) > 0 {
		missing := make([]string, 0, len(wanted))
		for id := range wanted {
			missing = append(missing, id)
		}
		sort.Strings(missing)
		return nil, fmt.Errorf("unknown region id(s): %s (not in the regions file)", strings.Join(missing, ", "))
	}
	return selected, nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildRunConfig creates a Config from cobra command flags and the regions
// file. Flags win over file settings, which win over built-in defaults.
func buildRunConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error
	cfg.RegionsFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load regions from the regions file. If the user explicitly specified
	// a path, error when it is missing; otherwise a missing file only
	// fails later because there are no regions to run.
	explicitPath := cfg.RegionsFilePath != ""
	path := config.FindConfigFile(cfg.RegionsFilePath)
	if path != "" {
		cf, err := config.LoadConfigFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load regions file %s: %w", path, err)
		}
		cf.Apply(cfg)
	} else if explicitPath {
		return nil, fmt.Errorf("regions file not found: %s", cfg.RegionsFilePath)
	}

	// Flags override file settings. Only apply flags the user changed so
	// the file's values survive when the flag is at its default.
	if cmd.Flags().Changed("rate") || cfg.RequestsPerSecond == 0 {
		if cfg.RequestsPerSecond, err = cmd.Flags().GetFloat64("rate"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("workers") || cfg.Workers == 0 {
		if cfg.Workers, err = cmd.Flags().GetInt("workers"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("max-review-pages") {
		if cfg.MaxReviewPages, err = cmd.Flags().GetInt("max-review-pages"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("max-attractions") {
		if cfg.MaxAttractions, err = cmd.Flags().GetInt("max-attractions"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("language") {
		if cfg.Language, err = cmd.Flags().GetString("language"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("batch") || cfg.BatchSize == 0 {
		if cfg.BatchSize, err = cmd.Flags().GetInt("batch"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("model") || cfg.ModelName == "" {
		if cfg.ModelName, err = cmd.Flags().GetString("model"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("endpoint") || cfg.InferenceEndpoint == "" {
		if cfg.InferenceEndpoint, err = cmd.Flags().GetString("endpoint"); err != nil {
			return nil, err
		}
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}
	cfg.MaxAttempts, err = cmd.Flags().GetInt("max-attempts")
	if err != nil {
		return nil, err
	}

	cfg.InferenceToken, err = cmd.Flags().GetString("token")
	if err != nil {
		return nil, err
	}
	if cfg.InferenceToken == "" {
		cfg.InferenceToken = os.Getenv(tokenEnvVar)
	}

	cfg.SkipClassify, err = cmd.Flags().GetBool("skip-classify")
	if err != nil {
		return nil, err
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}
	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}
	cfg.CSVReport, err = cmd.Flags().GetBool("csv")
	if err != nil {
		return nil, err
	}
	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.DBDir, err = cmd.Flags().GetString("db-dir")
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// politenessJitter returns the maximum random delay added after each rate
// token: a quarter of the inter-request gap. Scaling with the configured
// rate keeps slow runs humanlike without throttling fast test runs.
func politenessJitter(requestsPerSecond float64) time.Duration {
	if requestsPerSecond <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / requestsPerSecond / 4)
}

// runPipeline wires the stages together and executes them.
func runPipeline(ctx context.Context, cfg *config.Config, continueOnError bool, logger *slog.Logger) error {
	logger.Info("starting run",
		"regions", len(cfg.Regions),
		"workers", cfg.Workers,
		"rate", cfg.RequestsPerSecond,
		"model", cfg.ModelName,
		"skipClassify", cfg.SkipClassify,
	)

	store, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()
	logger.Info("database opened", "path", store.Path())

	// One rate limiter shared by discovery and extraction keeps total
	// request pressure bounded no matter how many workers run. Jitter on
	// top of the token wait keeps the request cadence irregular.
	limiter := fetch.NewLimiter(cfg.RequestsPerSecond,
		fetch.WithJitter(politenessJitter(cfg.RequestsPerSecond)))

	fetcherOpts := []fetch.FetcherOption{
		fetch.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	}
	if cfg.UserAgent != "" {
		fetcherOpts = append(fetcherOpts, fetch.WithUserAgent(cfg.UserAgent))
	}
	if cfg.MaxBodySize > 0 {
		fetcherOpts = append(fetcherOpts, fetch.WithMaxBodySize(cfg.MaxBodySize))
	}
	if cfg.Language != "" {
		// Asking for the filtered language up front keeps the served
		// markup consistent with the filterLang review pages.
		fetcherOpts = append(fetcherOpts, fetch.WithHeader("Accept-Language", cfg.Language))
	}
	fetcher := fetch.NewFetcher(limiter, fetcherOpts...)
	getter := fetch.NewRetrier(fetcher, fetch.WithMaxAttempts(cfg.MaxAttempts))

	discovererOpts := []crawler.DiscovererOption{crawler.WithDiscovererLogger(logger)}
	if cfg.MaxAttractions > 0 {
		discovererOpts = append(discovererOpts, crawler.WithMaxAttractions(cfg.MaxAttractions))
	}
	discoverer := crawler.NewDiscoverer(getter, discovererOpts...)

	extractorOpts := []crawler.ExtractorOption{crawler.WithExtractorLogger(logger)}
	if cfg.MaxReviewPages > 0 {
		extractorOpts = append(extractorOpts, crawler.WithMaxReviewPages(cfg.MaxReviewPages))
	}
	if cfg.Language != "" {
		extractorOpts = append(extractorOpts, crawler.WithReviewLanguage(cfg.Language))
	}
	pool := crawler.NewPool(
		crawler.NewExtractor(getter, extractorOpts...),
		crawler.WithWorkers(cfg.Workers),
		crawler.WithPoolLogger(logger),
	)

	p := pipeline.New(
		pipeline.WithLogger(logger),
		pipeline.WithContinueOnError(continueOnError),
	)
	p.AddStep(pipeline.NewDiscoverStep(cfg.Regions, discoverer, store, logger))
	p.AddStep(pipeline.NewExtractStep(pool, store, logger))
	if !cfg.SkipClassify {
		clientOpts := []sentiment.ClientOption{
			sentiment.WithModel(cfg.ModelName),
			sentiment.WithClientHTTP(&http.Client{Timeout: cfg.Timeout}),
		}
		if cfg.InferenceToken != "" {
			clientOpts = append(clientOpts, sentiment.WithToken(cfg.InferenceToken))
		}
		classifier := sentiment.NewClassifier(
			sentiment.NewClient(cfg.InferenceEndpoint, clientOpts...),
			sentiment.WithBatchSize(cfg.BatchSize),
			sentiment.WithClassifierLogger(logger),
		)
		p.AddStep(pipeline.NewClassifyStep(classifier, store, logger))
	}
	p.AddStep(pipeline.NewAggregateStep(store, logger))

	runReport := model.NewRunReport(cfg.ModelName)

	fmt.Printf("Processing %d region(s)...\n", len(cfg.Regions))
	startTime := time.Now()

	runErr := p.Execute(ctx, runReport)

	elapsed := time.Since(startTime)
	fmt.Printf("Run finished in %s\n", elapsed.Round(time.Millisecond))

	// The summary is written even for failed runs so partial progress is
	// visible.
	if err := outputRunReport(cfg, runReport.Snapshot()); err != nil {
		logger.Error("failed to write run summary", "error", err)
	}

	if runErr != nil {
		if fetch.IsBlocked(runErr) {
			return fmt.Errorf("run aborted, site blocked access (wait before retrying): %w", runErr)
		}
		if errors.Is(runErr, context.Canceled) {
			return errors.New("run cancelled")
		}
		return runErr
	}
	return nil
}

// outputRunReport writes the run summary in the requested format.
func outputRunReport(cfg *config.Config, run *model.RunReport) error {
	output, closeOutput, err := openReportOutput(cfg.ReportFile)
	if err != nil {
		return err
	}
	defer closeOutput()

	var w report.Writer
	switch {
	case cfg.JSONReport:
		w = report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		w = report.NewMarkdownWriter(output)
	case cfg.CSVReport:
		w = report.NewCSVWriter(output, report.CSVSummary)
	default:
		w = report.NewSimpleWriter(output)
	}

	_, err = w.WriteRun(run)
	return err
}

// openReportOutput resolves the report destination. It returns stdout when
// no path is configured, otherwise it creates the file with owner-only
// permissions.
func openReportOutput(path string) (*os.File, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
