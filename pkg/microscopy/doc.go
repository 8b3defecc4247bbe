// Package microscopy defines the simulation techniques the pipeline can
// route to, the pure routing decision, and the typed per-technique
// configuration structs with their documented defaults.
package microscopy
