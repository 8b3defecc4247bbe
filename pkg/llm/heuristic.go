package llm

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// HeuristicParser is a deterministic, offline Parser. It recognizes the
// request shapes the pipeline commonly sees ("relax a 3x3x4 Cu(100) slab
// with 10A vacuum and run STM") without any model call. It backs the CLI
// when no API key is configured and keeps tests hermetic.
type HeuristicParser struct{}

// knownElements are the chemical identifiers the parser looks for, longest
// match first so "MoS2" wins over a hypothetical "Mo".
var knownElements = []string{
	"MoSe2", "WSe2", "MoS2", "WS2",
	"Cu", "Pt", "Au", "Ag", "Ni", "Pd", "Al", "Fe", "Ir", "Rh",
}

var (
	faceRe       = regexp.MustCompile(`\(?\b(100|111|110)\b\)?`)
	sizeRe       = regexp.MustCompile(`\b(\d+)\s*x\s*(\d+)(?:\s*x\s*(\d+))?\b`)
	vacuumRe     = regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s*(?:a|Å|angstroms?)?\s+(?:of\s+)?vacuum\b|\bvacuum\s+(?:of\s+)?(\d+(?:\.\d+)?)`)
	relaxRe      = regexp.MustCompile(`(?i)\b(relax|optimi[sz]e|minimi[sz]e)\b`)
	microscopyRe = regexp.MustCompile(`(?i)\b(stm|afm|iets)\b`)
)

// Parse implements Parser.
func (HeuristicParser) Parse(_ context.Context, query string) (*ParsedQuery, error) {
	p := &ParsedQuery{
		TaskType:   "surface",
		Confidence: 0.9,
	}

	// Element.
	lower := strings.ToLower(query)
	if strings.Contains(lower, "graphene") {
		p.MaterialFormula = "C"
		p.Face = "graphene"
	} else {
		for _, el := range knownElements {
			if containsWord(query, el) {
				p.MaterialFormula = el
				break
			}
		}
	}
	if p.MaterialFormula == "" {
		return nil, fmt.Errorf("heuristic parse: no known material in query %q", query)
	}

	// Face.
	if p.Face == "" {
		if _, is2D := map[string]bool{"MoS2": true, "WS2": true, "MoSe2": true, "WSe2": true}[p.MaterialFormula]; is2D {
			p.Face = "2d"
		} else if m := faceRe.FindStringSubmatch(query); m != nil {
			p.Face = m[1]
		} else {
			p.Face = "111"
			p.Confidence = 0.6
			p.Ambiguities = append(p.Ambiguities, "no surface face given, assuming (111)")
		}
	}

	// Supercell.
	if m := sizeRe.FindStringSubmatch(query); m != nil {
		p.SupercellX, _ = strconv.Atoi(m[1])
		p.SupercellY, _ = strconv.Atoi(m[2])
		if m[3] != "" {
			p.SupercellZ, _ = strconv.Atoi(m[3])
		}
	}

	// Vacuum.
	if m := vacuumRe.FindStringSubmatch(query); m != nil {
		for _, g := range m[1:] {
			if g != "" {
				p.VacuumThickness, _ = strconv.ParseFloat(g, 64)
				break
			}
		}
	}

	p.Relax = relaxRe.MatchString(query)

	// Microscopy.
	if m := microscopyRe.FindStringSubmatch(query); m != nil {
		p.TaskType = "microscopy"
		p.MicroscopyType = strings.ToUpper(m[1])
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// containsWord reports whether s contains w delimited by non-alphanumerics.
func containsWord(s, w string) bool {
	idx := 0
	for {
		i := strings.Index(s[idx:], w)
		if i < 0 {
			return false
		}
		i += idx
		before := i == 0 || !isAlnum(s[i-1])
		after := i+len(w) == len(s) || !isAlnum(s[i+len(w)])
		if before && after {
			return true
		}
		idx = i + len(w)
	}
}

func isAlnum(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}
