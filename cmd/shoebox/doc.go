// Package main hosts the shoebox CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once, builds a logger from
// it, and hands the planner, organizer, journal, and metrics packages the
// values they need. Commands print their results to stdout; logs go to
// stderr so output stays pipeable.
package main
