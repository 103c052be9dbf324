// Package main provides the entry point for the sitecheck CLI.
//
// sitecheck crawls a website breadth-first and verifies that every
// internal page loads, every link resolves, and every image actually
// serves an image.
//
// Usage:
//
//	sitecheck check https://example.com
//	sitecheck history --site https://example.com
//
// See --help for all available options.
package main

// main is the entry point for sitecheck.
func main() {
	Execute()
}
