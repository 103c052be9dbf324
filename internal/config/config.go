package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values. Where applicable these match the original
// website-checker defaults so existing automation keeps working.
const (
	// DefaultTimeout bounds each HTTP request. 15 seconds is generous
	// for production sites while keeping a crawl of a broken site from
	// hanging for minutes per URL.
	DefaultTimeout = 15 * time.Second

	// DefaultWorkers bounds concurrent link/image checks within a page.
	// Page visits themselves are always sequential breadth-first, so
	// this only parallelizes the independent read-only probes.
	DefaultWorkers = 4

	// AppName is the application name used for XDG directory paths.
	AppName = "sitecheck"
)

// Config holds all options for a sitecheck run.
// This struct is populated from CLI flags and environment variables and
// passed through the application via dependency injection rather than
// global state.
type Config struct {
	// Targets are the base URLs to crawl, one crawl per target.
	Targets []string

	// Timeout bounds each individual HTTP request.
	Timeout time.Duration

	// ExtraDomains are additional hostnames treated as internal to the
	// crawl, beyond the base host and its www-toggled variant.
	ExtraDomains []string

	// Workers bounds concurrent link/image checks within a page.
	// 1 reproduces the fully sequential reference behavior.
	Workers int

	// MaxBodySize caps page body reads in bytes. 0 uses the fetcher's
	// default.
	MaxBodySize int64

	// Verbose enables debug-level log output.
	Verbose bool

	// JSONReport selects machine-readable JSON output.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown output.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile writes the report to this path instead of stdout.
	ReportFile string

	// ConfigFilePath is an explicit path to the .sitecheck file.
	// If empty, the current and home directories are searched.
	ConfigFilePath string

	// SiteConfigs holds per-site settings loaded from the config file.
	SiteConfigs *File

	// DBDir is the directory holding the run-history database.
	// Defaults to the XDG data directory.
	DBDir string

	// SaveToDB controls whether finished crawls are recorded in the
	// history database.
	SaveToDB bool
}

// NewConfig creates a Config with default values.
//
// Design decision: We use a constructor instead of relying on zero
// values because most defaults are non-zero; the constructor doubles as
// documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Timeout:  DefaultTimeout,
		Workers:  DefaultWorkers,
		SaveToDB: true,
		DBDir:    XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for sitecheck.
// On Linux: ~/.local/share/sitecheck
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for sitecheck.
// On Linux: ~/.config/sitecheck
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration and returns the first problem found.
// It is called once after CLI parsing, before any crawling begins, so
// misconfiguration fails fast with a clear message.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	return nil
}
