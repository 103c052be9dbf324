// Package urlutil provides URL normalization and domain classification
// for the crawler.
//
// Normalize produces the canonical form used as a deduplication key:
// fragments are dropped and hosts are lowercased, but paths and query
// strings are preserved exactly as given. Two URLs differing only by
// fragment or host case collapse to the same key; URLs differing by a
// trailing slash do not.
//
// DomainSet answers whether a hostname counts as internal to the crawl:
// the base host, its www-toggled variant, and any explicitly configured
// extra hosts.
package urlutil
