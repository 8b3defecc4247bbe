// Package providers implements the interchangeable structure generation
// strategies. The script provider executes generated Starlark build scripts
// in a sandboxed interpreter; the parametric provider builds slabs directly
// from parsed request parameters. Both satisfy the same Provider contract so
// the orchestrator can fall back from one to the other transparently.
package providers
