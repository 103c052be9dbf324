package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// TestLoadConfigFile verifies YAML loading and the not-found sentinel.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("valid config file loads", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		path := filepath.Join(dir, ".sitecheck")

		content := `
defaults:
  workers: 2
sites:
  example.com:
    internalDomains:
      - cdn.example.com
    headers:
      Authorization: "Bearer token"
    workers: 8
`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if cf.Defaults.Workers != 2 {
			t.Errorf("expected default workers 2, got %d", cf.Defaults.Workers)
		}

		site, ok := cf.Sites["example.com"]
		if !ok {
			t.Fatal("expected example.com site entry")
		}
		if len(site.InternalDomains) != 1 || site.InternalDomains[0] != "cdn.example.com" {
			t.Errorf("unexpected internal domains: %v", site.InternalDomains)
		}
		if site.Headers["Authorization"] != "Bearer token" {
			t.Errorf("unexpected headers: %v", site.Headers)
		}
		if site.Workers != 8 {
			t.Errorf("expected workers 8, got %d", site.Workers)
		}
	})

	t.Run("missing file returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()
		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("invalid YAML returns error", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), ".sitecheck")
		if err := os.WriteFile(path, []byte("sites: [not a map"), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})

	t.Run("empty file yields empty non-nil sites", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), ".sitecheck")
		if err := os.WriteFile(path, []byte(""), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}
		if cf.Sites == nil {
			t.Error("expected Sites map to be non-nil")
		}
	})
}

// TestFindConfigFile verifies the explicit-path branch of the search.
// The cwd/home fallbacks depend on the test environment and are not
// asserted here.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("explicit existing path is returned", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(path, []byte("sites: {}"), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		if got := FindConfigFile(path); got != path {
			t.Errorf("expected %q, got %q", path, got)
		}
	})

	t.Run("explicit missing path returns empty string", func(t *testing.T) {
		t.Parallel()
		missing := filepath.Join(t.TempDir(), "missing.yaml")

		if got := FindConfigFile(missing); got != "" {
			t.Errorf("expected empty string, got %q", got)
		}
	})
}

// TestGetSiteConfig verifies the merge of defaults and site overrides.
func TestGetSiteConfig(t *testing.T) {
	t.Parallel()

	cf := &File{
		Defaults: SiteConfig{
			Workers: 2,
			Headers: map[string]string{"X-Env": "staging"},
		},
		Sites: map[string]SiteConfig{
			"example.com": {
				InternalDomains: []string{"cdn.example.com"},
				Headers:         map[string]string{"Authorization": "Bearer token"},
			},
			"minimal.example.org": {},
		},
	}

	t.Run("unknown host gets defaults", func(t *testing.T) {
		t.Parallel()
		got := cf.GetSiteConfig("unknown.example.net")

		if got.Workers != 2 {
			t.Errorf("expected default workers 2, got %d", got.Workers)
		}
		if got.Headers["X-Env"] != "staging" {
			t.Errorf("expected default headers, got %v", got.Headers)
		}
	})

	t.Run("site entry overrides and merges", func(t *testing.T) {
		t.Parallel()
		got := cf.GetSiteConfig("example.com")

		if got.Workers != 2 {
			t.Errorf("expected inherited workers 2, got %d", got.Workers)
		}
		if len(got.InternalDomains) != 1 || got.InternalDomains[0] != "cdn.example.com" {
			t.Errorf("unexpected internal domains: %v", got.InternalDomains)
		}
		// Site headers merge over default headers
		if got.Headers["Authorization"] != "Bearer token" {
			t.Errorf("expected site header, got %v", got.Headers)
		}
		if got.Headers["X-Env"] != "staging" {
			t.Errorf("expected default header to survive, got %v", got.Headers)
		}
	})

	t.Run("empty site entry keeps defaults", func(t *testing.T) {
		t.Parallel()
		got := cf.GetSiteConfig("minimal.example.org")

		if got.Workers != 2 {
			t.Errorf("expected default workers 2, got %d", got.Workers)
		}
	})
}
