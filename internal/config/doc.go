// Package config holds sitecheck's runtime configuration: defaults,
// CLI-populated options, validation, and the optional .sitecheck YAML
// file with per-site settings.
package config
