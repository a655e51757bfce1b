// Package core defines the shared data model of the orchestration runtime:
// conversation history entries, gateway decisions, capability descriptors and
// run results. Everything in this package is a plain value; the state machine
// that consumes these values lives in the runner package.
package core
