// Package log provides logging with automatic sanitization of sensitive
// information, built on top of the standard slog package.
//
// A crawler logs URLs constantly, and real-world URLs carry secrets:
// session tokens in query strings, basic-auth userinfo, signed asset
// parameters. The SecureHandler masks those before log records reach the
// underlying handler, so verbose crawl logs can be shared or archived
// without leaking credentials.
//
// Usage:
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
package log
