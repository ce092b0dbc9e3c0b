// Package organizer applies an organization plan to disk.
//
// It creates each category folder under the target root, then copies or moves
// every planned photo into its folder under the original file name. A target
// lock keeps two runs from writing the same tree concurrently, existing files
// are handled by the configured collision policy, and dry runs compute the
// same placements without touching the disk. Per-photo failures are recorded
// on the result and never stop the run.
package organizer
