// internal/words/puzzles.go
//
// Puzzle catalog: the list of start/end word pairs served as daily puzzles.
//
// Loading behavior (LoadCatalog):
//   1. If path is set, read puzzles from that file.
//   2. Otherwise fall back to the embedded assets/puzzles.txt.
//
// File format, one puzzle per line ("#" starts a comment):
//   <start> <end> <minSteps>
// minSteps counts words in the shortest intended chain, both ends included.

package words

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/robalobadob/linkdle/assets"
)

// Puzzle is one start→end challenge.
type Puzzle struct {
	Index    int    `json:"index"`
	Start    string `json:"start"`
	End      string `json:"end"`
	MinSteps int    `json:"minSteps"`
}

// Catalog is an immutable, ordered list of puzzles.
type Catalog struct {
	puzzles []Puzzle
}

// LoadCatalog reads puzzles from path, or the embedded defaults when path is empty.
func LoadCatalog(path string) (*Catalog, error) {
	var lines []string
	var err error
	if path != "" {
		lines, err = readLines(path)
	} else {
		lines, err = assets.PuzzleLines()
	}
	if err != nil {
		return nil, fmt.Errorf("read puzzles: %w", err)
	}
	return ParseCatalog(lines)
}

// ParseCatalog builds a catalog from "<start> <end> <minSteps>" lines.
func ParseCatalog(lines []string) (*Catalog, error) {
	c := &Catalog{}
	for n, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		p, err := parsePuzzle(line)
		if err != nil {
			return nil, fmt.Errorf("puzzle line %d: %w", n+1, err)
		}
		p.Index = len(c.puzzles)
		c.puzzles = append(c.puzzles, p)
	}
	if len(c.puzzles) == 0 {
		return nil, errors.New("words: puzzle catalog is empty")
	}
	return c, nil
}

func parsePuzzle(line string) (Puzzle, error) {
	f := strings.Fields(line)
	if len(f) != 3 {
		return Puzzle{}, fmt.Errorf("want 3 fields, got %d", len(f))
	}
	start, err := Normalize(f[0])
	if err != nil {
		return Puzzle{}, fmt.Errorf("start %q: %w", f[0], err)
	}
	end, err := Normalize(f[1])
	if err != nil {
		return Puzzle{}, fmt.Errorf("end %q: %w", f[1], err)
	}
	if start == end {
		return Puzzle{}, errors.New("start and end must differ")
	}
	steps, err := strconv.Atoi(f[2])
	if err != nil || steps < 2 {
		return Puzzle{}, fmt.Errorf("minSteps %q must be an integer >= 2", f[2])
	}
	return Puzzle{Start: start, End: end, MinSteps: steps}, nil
}

// Len returns the number of puzzles.
func (c *Catalog) Len() int { return len(c.puzzles) }

// At returns the puzzle at index i.
func (c *Catalog) At(i int) (Puzzle, bool) {
	if i < 0 || i >= len(c.puzzles) {
		return Puzzle{}, false
	}
	return c.puzzles[i], true
}

// readLines loads non-empty lines from a file.
func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		out = append(out, sc.Text())
	}
	return out, sc.Err()
}
