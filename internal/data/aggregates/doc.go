// Package aggregates implements the course tree write boundary on top of the
// table repos. Every write runs through executeWrite so storage failures are
// mapped to coded errors, tagged with the rolled-back scope and reported
// to Hooks.
package aggregates
