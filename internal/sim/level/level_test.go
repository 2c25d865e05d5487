package level

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"
)

func writeLevel(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func quiet() *log.Logger { return log.New(io.Discard, "", 0) }

func TestLoadFullLevel(t *testing.T) {
	dir := writeLevel(t, map[string]string{
		"maze.txt":    "#####\n#^.1#\n#.A.#\n#####\n",
		"recipe.txt":  "1 -> A = 2 (3)\n2, 3 -> B = 7 (10)\n1 ! 20\nGoal: 7\n",
		"mapping.txt": "1 = flour\nA = oven\n",
		"desc.txt":    "Bake the thing.\n",
	})

	lvl, err := Load(dir, quiet())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if lvl.Width != 5 || lvl.Height != 4 {
		t.Fatalf("size %dx%d", lvl.Width, lvl.Height)
	}
	if lvl.Start == nil || lvl.Start.X != 1 || lvl.Start.Y != 1 || lvl.Start.Facing != 'N' {
		t.Fatalf("start = %+v", lvl.Start)
	}
	if lvl.MazeRows[1] != "#..1#" {
		t.Fatalf("marker not replaced with floor: %q", lvl.MazeRows[1])
	}
	if len(lvl.Ops) != 2 {
		t.Fatalf("ops = %+v", lvl.Ops)
	}
	if op := lvl.Ops[1]; op.Appliance != 'B' || op.Output != 7 || op.Duration != 10 || len(op.Inputs) != 2 {
		t.Fatalf("op = %+v", op)
	}
	if lvl.Expiries[1] != 20 {
		t.Fatalf("expiries = %v", lvl.Expiries)
	}
	if lvl.Goal != 7 {
		t.Fatalf("goal = %d", lvl.Goal)
	}
	if lvl.Mapping["A"] != "oven" {
		t.Fatalf("mapping = %v", lvl.Mapping)
	}
	if lvl.Desc != "Bake the thing.\n" {
		t.Fatalf("desc = %q", lvl.Desc)
	}
	if lvl.Digests.Maze == "" || lvl.Digests.Recipe == "" {
		t.Fatalf("digests missing: %+v", lvl.Digests)
	}
}

func TestMalformedLinesAreSkipped(t *testing.T) {
	dir := writeLevel(t, map[string]string{
		"maze.txt": "###\n#^#\n###\n",
		"recipe.txt": `1 -> A = 2 (3)
this is not a directive
1 -> -> A = 2
Goal: banana
Goal: 2
x ! y
1 ! 15
`,
	})

	lvl, err := Load(dir, quiet())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(lvl.Ops) != 1 {
		t.Fatalf("ops = %+v", lvl.Ops)
	}
	if lvl.Goal != 2 {
		t.Fatalf("goal = %d", lvl.Goal)
	}
	if lvl.Expiries[1] != 15 {
		t.Fatalf("expiries = %v", lvl.Expiries)
	}
}

func TestDuplicateGoalLastWins(t *testing.T) {
	dir := writeLevel(t, map[string]string{
		"maze.txt":   "#^#\n",
		"recipe.txt": "Goal: 3\nGoal: 5\n",
	})
	lvl, err := Load(dir, quiet())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if lvl.Goal != 5 {
		t.Fatalf("goal = %d, want last directive", lvl.Goal)
	}
}

func TestDuplicateOperationLastWins(t *testing.T) {
	dir := writeLevel(t, map[string]string{
		"maze.txt":   "#^#\n",
		"recipe.txt": "2, 1 -> A = 5 (9)\n1,2 -> A = 6 (2)\n",
	})
	lvl, err := Load(dir, quiet())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(lvl.Ops) != 1 {
		t.Fatalf("ops = %+v", lvl.Ops)
	}
	if lvl.Ops[0].Output != 6 || lvl.Ops[0].Duration != 2 {
		t.Fatalf("op = %+v, want the later directive", lvl.Ops[0])
	}
}

func TestRaggedRowsArePadded(t *testing.T) {
	dir := writeLevel(t, map[string]string{
		"maze.txt": "#####\n#^.\n#####\n",
	})
	lvl, err := Load(dir, quiet())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if lvl.Width != 5 {
		t.Fatalf("width = %d", lvl.Width)
	}
	if lvl.MazeRows[1] != "#..##" {
		t.Fatalf("row not padded with walls: %q", lvl.MazeRows[1])
	}
}

func TestFirstStartMarkerWins(t *testing.T) {
	dir := writeLevel(t, map[string]string{
		"maze.txt": "#####\n#>.<#\n#####\n",
	})
	lvl, err := Load(dir, quiet())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if lvl.Start.X != 1 || lvl.Start.Facing != 'E' {
		t.Fatalf("start = %+v, want the first marker", lvl.Start)
	}
	// Both marker tiles became floor.
	if lvl.MazeRows[1] != "#...#" {
		t.Fatalf("row = %q", lvl.MazeRows[1])
	}
}

func TestDegenerateLevelLoadsWithWarnings(t *testing.T) {
	dir := writeLevel(t, map[string]string{
		"maze.txt": "###\n#.#\n###\n",
	})
	lvl, err := Load(dir, quiet())
	if err != nil {
		t.Fatalf("degenerate level must load: %v", err)
	}
	warns := lvl.Validate()
	if len(warns) != 3 {
		t.Fatalf("warnings = %v", warns)
	}
}

func TestMissingMazeFails(t *testing.T) {
	dir := writeLevel(t, map[string]string{"recipe.txt": "Goal: 1\n"})
	if _, err := Load(dir, quiet()); err == nil {
		t.Fatalf("expected error without maze.txt")
	}
}

func TestDisplayNameFallsBackToRawID(t *testing.T) {
	lvl := &Level{Mapping: map[string]string{"1": "flour"}}
	if got := lvl.DisplayName("1"); got != "flour" {
		t.Fatalf("got %q", got)
	}
	if got := lvl.DisplayName("9"); got != "9" {
		t.Fatalf("got %q", got)
	}
}
