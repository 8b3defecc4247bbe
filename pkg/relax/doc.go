// Package relax defines the relaxation contract the pipeline consumes and a
// built-in classical engine. The built-in engine minimizes a Morse pair
// potential by damped steepest descent; it stands in for an external ML
// potential behind the same interface.
package relax
