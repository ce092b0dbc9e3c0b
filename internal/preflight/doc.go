// Package preflight provides readiness checks for the directories an
// organize run reads from and writes to.
//
// The organize command calls RunAll after planning and refuses to touch the
// disk when any check fails; `shoebox preflight` prints the same results.
package preflight
