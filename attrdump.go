// Package attrdump crawls a paginated post API whose dataset may grow while
// the crawl runs, extracts one attribute from every post on every page, and
// writes the values to an append-only output.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., http/, sqlite/, bloom/).
package attrdump
