// Package level loads a level folder (maze.txt, recipe.txt, mapping.txt,
// desc.txt) into an immutable description the simulation is built from.
//
// Parsing is deliberately tolerant: a malformed line is logged and skipped,
// never fatal. Level authors iterate on these files by hand; a degenerate
// level (no goal, no start, no operations) still loads and the caller
// decides whether to run it.
package level

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Pose is the player start position and facing recorded by a maze marker.
type Pose struct {
	X, Y   int
	Facing byte // 'N','S','W','E'
}

// Op is a parsed recipe directive: inputs -> appliance = output (duration).
type Op struct {
	Appliance byte
	Inputs    []int
	Output    int
	Duration  int
}

// Digests are sha256 hex digests of the raw level artifacts, surfaced to
// drivers so they can detect level content drift between runs.
type Digests struct {
	Maze    string `json:"maze"`
	Recipe  string `json:"recipe"`
	Mapping string `json:"mapping"`
	Desc    string `json:"desc"`
}

// Level is the parsed level folder. Immutable after Load.
type Level struct {
	Dir  string
	Name string

	MazeRows []string // rectangular: every row padded to Width
	Width    int
	Height   int
	Start    *Pose

	Ops      []Op
	Expiries map[int]int // dispenser id -> absolute expiry step
	Goal     int         // ingredient id; 0 = no goal directive seen

	Mapping map[string]string // id char -> display name
	Desc    string

	Digests Digests
}

var (
	opRe     = regexp.MustCompile(`^(\d+(?:\s*,\s*\d+)*)\s*->\s*([A-Z])\s*=\s*(\d+)\s*\(\s*(\d+)\s*\)$`)
	expiryRe = regexp.MustCompile(`^([1-9])\s*!\s*(\d+)$`)
)

// Load parses a level folder. Only a missing or empty maze makes the level
// un-constructible; everything else degrades with a logged skip.
func Load(dir string, logger *log.Logger) (*Level, error) {
	if logger == nil {
		logger = log.Default()
	}

	l := &Level{
		Dir:      dir,
		Name:     filepath.Base(dir),
		Expiries: map[int]int{},
		Mapping:  map[string]string{},
	}

	mazeRaw, err := os.ReadFile(filepath.Join(dir, "maze.txt"))
	if err != nil {
		return nil, fmt.Errorf("level %s: %w", dir, err)
	}
	l.Digests.Maze = digest(mazeRaw)
	l.parseMaze(string(mazeRaw), logger)
	if l.Width == 0 || l.Height == 0 {
		return nil, fmt.Errorf("level %s: empty maze", dir)
	}

	if raw, err := os.ReadFile(filepath.Join(dir, "recipe.txt")); err == nil {
		l.Digests.Recipe = digest(raw)
		l.parseRecipe(string(raw), logger)
	} else {
		logger.Printf("level %s: no recipe.txt: %v", dir, err)
	}

	if raw, err := os.ReadFile(filepath.Join(dir, "mapping.txt")); err == nil {
		l.Digests.Mapping = digest(raw)
		l.parseMapping(string(raw))
	}

	if raw, err := os.ReadFile(filepath.Join(dir, "desc.txt")); err == nil {
		l.Digests.Desc = digest(raw)
		l.Desc = string(raw)
	}

	for _, warn := range l.Validate() {
		logger.Printf("level %s: %s", dir, warn)
	}
	return l, nil
}

func (l *Level) parseMaze(text string, logger *log.Logger) {
	sc := bufio.NewScanner(strings.NewReader(text))
	for sc.Scan() {
		row := strings.TrimRight(sc.Text(), "\r")
		y := len(l.MazeRows)
		// Start markers become floor; only the first one is honored.
		for x := 0; x < len(row); x++ {
			switch row[x] {
			case '^', 'v', '<', '>':
				if l.Start == nil {
					l.Start = &Pose{X: x, Y: y, Facing: compass(row[x])}
				} else {
					logger.Printf("maze row %d: extra start marker %q ignored", y, row[x])
				}
				row = row[:x] + "." + row[x+1:]
			}
		}
		l.MazeRows = append(l.MazeRows, row)
		if len(row) > l.Width {
			l.Width = len(row)
		}
	}
	// Ragged rows are padded with walls rather than rejected.
	for i, row := range l.MazeRows {
		if len(row) < l.Width {
			l.MazeRows[i] = row + strings.Repeat("#", l.Width-len(row))
		}
	}
	l.Height = len(l.MazeRows)
}

func (l *Level) parseRecipe(text string, logger *log.Logger) {
	// Duplicate (appliance, inputs) pairs: the later directive wins.
	opIndex := map[string]int{}
	opKey := func(op Op) string {
		ids := make([]int, len(op.Inputs))
		copy(ids, op.Inputs)
		sort.Ints(ids)
		parts := make([]string, len(ids))
		for i, id := range ids {
			parts[i] = strconv.Itoa(id)
		}
		return string(op.Appliance) + ":" + strings.Join(parts, ",")
	}

	sc := bufio.NewScanner(strings.NewReader(text))
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(strings.ToLower(line), "goal:") {
			id, err := strconv.Atoi(strings.TrimSpace(line[len("goal:"):]))
			if err != nil {
				logger.Printf("recipe line %d: bad goal %q, skipped", lineNo, line)
				continue
			}
			// Last goal directive wins.
			l.Goal = id
			continue
		}

		if m := opRe.FindStringSubmatch(line); m != nil {
			var inputs []int
			bad := false
			for _, s := range strings.Split(m[1], ",") {
				id, err := strconv.Atoi(strings.TrimSpace(s))
				if err != nil {
					bad = true
					break
				}
				inputs = append(inputs, id)
			}
			if bad {
				logger.Printf("recipe line %d: bad ingredient list %q, skipped", lineNo, line)
				continue
			}
			out, _ := strconv.Atoi(m[3])
			dur, _ := strconv.Atoi(m[4])
			if dur <= 0 {
				logger.Printf("recipe line %d: non-positive duration, skipped", lineNo)
				continue
			}
			op := Op{Appliance: m[2][0], Inputs: inputs, Output: out, Duration: dur}
			if i, ok := opIndex[opKey(op)]; ok {
				l.Ops[i] = op
			} else {
				opIndex[opKey(op)] = len(l.Ops)
				l.Ops = append(l.Ops, op)
			}
			continue
		}

		if m := expiryRe.FindStringSubmatch(line); m != nil {
			id, _ := strconv.Atoi(m[1])
			step, _ := strconv.Atoi(m[2])
			l.Expiries[id] = step
			continue
		}

		logger.Printf("recipe line %d: unrecognized %q, skipped", lineNo, line)
	}
}

func (l *Level) parseMapping(text string) {
	sc := bufio.NewScanner(strings.NewReader(text))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		l.Mapping[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
}

// DisplayName resolves an id to its mapped name, falling back to the raw id.
func (l *Level) DisplayName(id string) string {
	if name, ok := l.Mapping[id]; ok {
		return name
	}
	return id
}

// Validate returns the degenerate-level warnings. A level with warnings is
// legal to run; it just may be unwinnable.
func (l *Level) Validate() []string {
	var warns []string
	if l.Goal == 0 {
		warns = append(warns, "no goal directive")
	}
	if l.Start == nil {
		warns = append(warns, "no start marker, falling back to first walkable tile")
	}
	if len(l.Ops) == 0 {
		warns = append(warns, "no operations")
	}
	return warns
}

func compass(marker byte) byte {
	switch marker {
	case '^':
		return 'N'
	case 'v':
		return 'S'
	case '<':
		return 'W'
	default:
		return 'E'
	}
}

func digest(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
