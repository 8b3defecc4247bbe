package structure

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// WriteXYZ writes the structure in extended XYZ format. The comment line
// carries the lattice vectors and periodicity flags so the structure can be
// round-tripped with ReadXYZ.
func WriteXYZ(w io.Writer, s *Structure) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "%d\n", len(s.Atoms))
	fmt.Fprintf(bw, "Lattice=\"%g %g %g %g %g %g %g %g %g\" pbc=\"%s %s %s\"\n",
		s.Cell[0][0], s.Cell[0][1], s.Cell[0][2],
		s.Cell[1][0], s.Cell[1][1], s.Cell[1][2],
		s.Cell[2][0], s.Cell[2][1], s.Cell[2][2],
		pbcFlag(s.PBC[0]), pbcFlag(s.PBC[1]), pbcFlag(s.PBC[2]))

	for _, a := range s.Atoms {
		fmt.Fprintf(bw, "%-3s %14.8f %14.8f %14.8f\n", a.Symbol, a.X, a.Y, a.Z)
	}
	return bw.Flush()
}

// WriteXYZFile writes the structure to a file path, creating or truncating it.
func WriteXYZFile(path string, s *Structure) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := WriteXYZ(f, s); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ReadXYZ parses a structure from (extended) XYZ input. Lattice and pbc
// annotations in the comment line are honored when present.
func ReadXYZ(r io.Reader) (*Structure, error) {
	scanner := bufio.NewScanner(r)

	if !scanner.Scan() {
		return nil, fmt.Errorf("empty xyz input")
	}
	n, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil {
		return nil, fmt.Errorf("invalid atom count: %w", err)
	}

	s := &Structure{}
	if scanner.Scan() {
		parseXYZComment(scanner.Text(), s)
	}

	for i := 0; i < n; i++ {
		if !scanner.Scan() {
			return nil, fmt.Errorf("truncated xyz input: expected %d atoms, got %d", n, i)
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) < 4 {
			return nil, fmt.Errorf("invalid atom line %d: %q", i+1, scanner.Text())
		}
		x, err1 := strconv.ParseFloat(fields[1], 64)
		y, err2 := strconv.ParseFloat(fields[2], 64)
		z, err3 := strconv.ParseFloat(fields[3], 64)
		if err1 != nil || err2 != nil || err3 != nil {
			return nil, fmt.Errorf("invalid coordinates on atom line %d", i+1)
		}
		s.Atoms = append(s.Atoms, Atom{Symbol: fields[0], X: x, Y: y, Z: z})
	}
	return s, scanner.Err()
}

// ReadXYZFile reads a structure from a file path.
func ReadXYZFile(path string) (*Structure, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadXYZ(f)
}

// parseXYZComment extracts Lattice and pbc annotations from an extended XYZ
// comment line. Unknown annotations are ignored.
func parseXYZComment(line string, s *Structure) {
	if v, ok := quotedField(line, "Lattice"); ok {
		fields := strings.Fields(v)
		if len(fields) == 9 {
			for i := 0; i < 3; i++ {
				for j := 0; j < 3; j++ {
					if f, err := strconv.ParseFloat(fields[i*3+j], 64); err == nil {
						s.Cell[i][j] = f
					}
				}
			}
		}
	}
	if v, ok := quotedField(line, "pbc"); ok {
		fields := strings.Fields(v)
		for i := 0; i < len(fields) && i < 3; i++ {
			s.PBC[i] = fields[i] == "T" || fields[i] == "true"
		}
	}
}

// quotedField extracts key="..." from an extended XYZ comment line.
func quotedField(line, key string) (string, bool) {
	idx := strings.Index(line, key+"=\"")
	if idx < 0 {
		return "", false
	}
	rest := line[idx+len(key)+2:]
	end := strings.Index(rest, "\"")
	if end < 0 {
		return "", false
	}
	return rest[:end], true
}

func pbcFlag(b bool) string {
	if b {
		return "T"
	}
	return "F"
}
