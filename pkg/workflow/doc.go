// Package workflow implements the per-request state machine that drives the
// pipeline: parse the request, generate a structure with provider fallback,
// optionally relax it, grade the result against reference data and route
// into microscopy. Each request owns one State; stages only ever advance,
// and expected domain failures accumulate on the State instead of aborting
// the run.
package workflow
