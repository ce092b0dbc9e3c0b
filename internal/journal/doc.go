// Package journal persists a record of every organize run in SQLite.
//
// Each run gets a UUID, the options it ran with, the planner statistics, and
// the mover's counts; every placement the mover attempted is stored beside
// it so `shoebox history show` can explain where a photo went and why. The
// schema is applied from embedded migrations when the store opens.
package journal
