package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/astridwanja/sitecheck/internal/config"
	"github.com/astridwanja/sitecheck/internal/crawler"
	"github.com/astridwanja/sitecheck/internal/database"
	"github.com/astridwanja/sitecheck/internal/fetch"
	"github.com/astridwanja/sitecheck/internal/log"
	"github.com/astridwanja/sitecheck/internal/model"
	"github.com/astridwanja/sitecheck/internal/report"
	"github.com/astridwanja/sitecheck/internal/urlutil"
)

// Environment variable fallbacks for flag values. These exist so a CI
// job can configure a check without editing its command line.
const (
	envBaseURL         = "BASE_URL"
	envRequestTimeout  = "REQUEST_TIMEOUT"
	envInternalDomains = "INTERNAL_DOMAINS"
)

// NewCheckCmd creates the check command.
func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [base-url...]",
		Short: "Crawl a website and verify its pages, links, and images",
		Long: `Check crawls a website breadth-first starting from the base URL.

Every internal page is fetched and parsed; every link and image found
on those pages is verified with a real request. Broken pages, links,
and images are reported as issues. Responses that need manual
verification (such as LinkedIn's bot protection) are reported as
warnings.

The exit code is 0 even when issues are found: the report itself is
the result. CI jobs should inspect has_issues in the JSON output.

Examples:
  # Check a single site
  sitecheck check https://example.com

  # Check multiple sites in sequence
  sitecheck check https://example.com https://example.org

  # Treat additional hosts as part of the site
  sitecheck check --internal-domains cdn.example.com https://example.com

  # Output JSON report to a file
  sitecheck check --json -o report.json https://example.com

Configuration file (.sitecheck) example:
  sites:
    example.com:
      internalDomains:
        - cdn.example.com
      headers:
        Authorization: "Bearer token"
      workers: 8`,
		Args: cobra.ArbitraryArgs,
		RunE: runCheckCmd,
	}

	// Crawl behavior flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Connection timeout for each request")
	cmd.Flags().StringSliceP("internal-domains", "i", nil,
		"Additional hostnames treated as internal to the crawl")
	cmd.Flags().IntP("workers", "w", config.DefaultWorkers,
		"Number of concurrent link/image checks per page (1 = sequential)")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .sitecheck in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	// History flags
	cmd.Flags().Bool("no-save", false,
		"Do not record this run in the history database")

	return cmd
}

// runCheckCmd executes the check command.
func runCheckCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging with secret sanitization
	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runCheck(ctx, cfg, logger)
}

// buildConfig creates a Config from cobra command flags, falling back to
// environment variables where no flag was given.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}
	if !cmd.Flags().Changed("timeout") {
		if v := os.Getenv(envRequestTimeout); v != "" {
			seconds, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("invalid %s value %q: %w", envRequestTimeout, v, err)
			}
			cfg.Timeout = time.Duration(seconds) * time.Second
		}
	}

	cfg.ExtraDomains, err = cmd.Flags().GetStringSlice("internal-domains")
	if err != nil {
		return nil, err
	}
	if len(cfg.ExtraDomains) == 0 {
		if v := os.Getenv(envInternalDomains); v != "" {
			for _, domain := range strings.Split(v, ",") {
				if domain = strings.TrimSpace(domain); domain != "" {
					cfg.ExtraDomains = append(cfg.ExtraDomains, domain)
				}
			}
		}
	}

	cfg.Workers, err = cmd.Flags().GetInt("workers")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load site-specific configurations from config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		cfg.SiteConfigs = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	noSave, err := cmd.Flags().GetBool("no-save")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noSave
	cfg.DBDir = config.XDGDataDir()

	cfg.Verbose = getVerboseFlag(cmd)

	// Positional arguments are the base URLs; BASE_URL is the fallback
	// so the original environment-driven invocation keeps working.
	cfg.Targets = args
	if len(cfg.Targets) == 0 {
		if v := os.Getenv(envBaseURL); v != "" {
			cfg.Targets = []string{v}
		}
	}

	return cfg, nil
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

// runCheck crawls each target in sequence.
// Broken sites are findings, not failures: the only errors returned here
// are operational ones (bad base URL, unwritable report, broken database).
func runCheck(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting check",
		"targets", cfg.Targets,
		"timeout", cfg.Timeout,
		"workers", cfg.Workers,
		"saveToDB", cfg.SaveToDB,
	)

	// Open database connection if saving is enabled
	var db *database.CrawlDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "dir", cfg.DBDir)
	}

	for _, target := range cfg.Targets {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		siteConfig := cfg.SiteConfigs.GetSiteConfig(urlutil.Host(urlutil.Normalize(target)))

		engine, err := createEngineForTarget(cfg, siteConfig, target, logger)
		if err != nil {
			return err
		}

		fmt.Printf("Checking %s...\n", target)

		summary := engine.Run(ctx)

		fmt.Printf("Check completed in %.2fs\n\n", summary.DurationSeconds)

		if err := outputReport(cfg, summary); err != nil {
			return fmt.Errorf("report failed for %s: %w", target, err)
		}

		if err := saveSummary(ctx, db, summary, logger); err != nil {
			logger.Error("failed to save run", "target", target, "error", err)
		}
	}

	return nil
}

// createEngineForTarget builds a crawl engine with the merged global and
// site-specific configuration applied.
func createEngineForTarget(cfg *config.Config, siteConfig config.SiteConfig, target string, logger *slog.Logger) (*crawler.Engine, error) {
	fetchOpts := []fetch.Option{}
	if cfg.MaxBodySize > 0 {
		fetchOpts = append(fetchOpts, fetch.WithMaxBodySize(cfg.MaxBodySize))
	}
	if len(siteConfig.Headers) > 0 {
		fetchOpts = append(fetchOpts, fetch.WithHeaders(siteConfig.Headers))
	}
	fetcher := fetch.NewFetcher(cfg.Timeout, fetchOpts...)

	workers := cfg.Workers
	if siteConfig.Workers > 0 {
		workers = siteConfig.Workers
	}

	// Copy before appending: cfg.ExtraDomains is shared across targets
	// and must not pick up one site's domains through its backing array.
	extraDomains := cfg.ExtraDomains
	if len(siteConfig.InternalDomains) > 0 {
		extraDomains = append(append([]string(nil), cfg.ExtraDomains...), siteConfig.InternalDomains...)
	}

	engine, err := crawler.NewEngine(fetcher, target,
		crawler.WithLogger(logger),
		crawler.WithWorkers(workers),
		crawler.WithExtraDomains(extraDomains),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid target %q: %w", target, err)
	}

	return engine, nil
}

// outputReport outputs the crawl summary in the requested format.
func outputReport(cfg *config.Config, summary *model.CrawlSummary) error {
	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Reports may reference internal URLs; keep them owner-readable
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}

	_, err := writer.Write(summary)
	return err
}

// saveSummary records the run in the history database if enabled.
// If db is nil, this function is a no-op.
func saveSummary(ctx context.Context, db *database.CrawlDB, summary *model.CrawlSummary, logger *slog.Logger) error {
	if db == nil {
		return nil
	}

	if err := db.SaveSummary(ctx, summary); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	logger.Info("run saved to database", "baseURL", summary.BaseURL)
	return nil
}
