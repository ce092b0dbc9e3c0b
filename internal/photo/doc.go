// Package photo defines the value types shared by the date-resolution and
// placement engines: scanned source files, resolved capture dates with their
// provenance, and destination categories.
//
// Types in this package are immutable once built. They carry no behaviour
// beyond small accessors so that the resolver, categorizer, planner, and
// mover can exchange them without import cycles.
package photo
