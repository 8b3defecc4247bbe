package microscopy

import (
	"fmt"
	"strings"
)

// Technique is a microscopy simulation technique name.
type Technique string

const (
	STM  Technique = "STM"
	AFM  Technique = "AFM"
	IETS Technique = "IETS"
)

// Target names the next pipeline stage selected by routing.
type Target string

const (
	TargetSTM  Target = "stm"
	TargetAFM  Target = "afm"
	TargetIETS Target = "iets"

	// TargetEnd is the terminal sentinel: no microscopy runs.
	TargetEnd Target = "end"
)

// Route maps a routing decision onto the next stage. It is a pure function:
// unrequested microscopy and unknown techniques both route to TargetEnd,
// the latter with a warning. It never fails.
func Route(requested bool, technique Technique) (Target, string) {
	if !requested {
		return TargetEnd, ""
	}
	switch Technique(strings.ToUpper(string(technique))) {
	case STM:
		return TargetSTM, ""
	case AFM:
		return TargetAFM, ""
	case IETS:
		return TargetIETS, ""
	default:
		return TargetEnd, fmt.Sprintf("unknown microscopy technique %q, skipping simulation", technique)
	}
}
