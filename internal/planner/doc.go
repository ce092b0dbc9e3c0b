// Package planner scans a source tree, resolves each supported photo's
// capture date, and groups the photos into categories.
//
// The scan runs through an afero file system so tests can use an in-memory
// tree. Entries are visited in lexical order, one file at a time. Files with
// unsupported extensions and AppleDouble "._" artifacts are skipped; files
// whose date cannot be resolved are recorded as failures without stopping the
// scan. Only a missing or unreadable root aborts planning.
package planner
