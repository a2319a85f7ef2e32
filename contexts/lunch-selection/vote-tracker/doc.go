// Package votetracker implements the lunch vote tracker inside the
// lunch-selection context.
//
// The module owns voting sessions: phase-specific vote constraints, per-user
// and per-restaurant tallies, and the nomination close that shortlists the
// top restaurants for the selection round. Tally rules live in the domain
// tracker; session storage, locking and event publishing sit behind ports.
package votetracker
