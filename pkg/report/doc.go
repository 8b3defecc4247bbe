// Package report renders a markdown summary of a completed pipeline run.
package report
