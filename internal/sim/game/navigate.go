package game

// Outcome reports how an auto-interact command ended.
type Outcome int

const (
	OutcomeCompleted Outcome = iota
	OutcomeUnreachable
)

func (o Outcome) String() string {
	if o == OutcomeUnreachable {
		return "UNREACHABLE"
	}
	return "COMPLETED"
}

type point struct{ x, y int }

type visit struct {
	from point
	dir  Dir
}

// Neighbor order is fixed so path choice, and therefore elapsed time, is
// reproducible across runs.
var neighborDirs = [4]Dir{North, South, West, East}

// AutoInteract pathfinds to a tile adjacent to the dispenser or appliance
// at (tx,ty), replays the path as moves (one step each), and interacts with
// the target. The closing interact sets the facing toward the target as
// part of the same action, so elapsed time is exactly path length + wait
// + one interact, plus a second interact when a busy appliance had to be
// waited out and collected. With no path, nothing changes and the clock
// does not advance.
func (g *Game) AutoInteract(tx, ty int) (StepResult, Outcome) {
	switch g.At(tx, ty).(type) {
	case *Dispenser, *Appliance:
	default:
		return g.result(CodeUnreachable), OutcomeUnreachable
	}

	path, ok := g.pathToAdjacent(tx, ty)
	if !ok {
		return g.result(CodeUnreachable), OutcomeUnreachable
	}

	for _, step := range path {
		g.Move(step)
	}

	res := g.interactToward(tx, ty)

	// Busy appliance: wait out the remaining countdown, then collect.
	// The wait is bounded by the countdown itself, never infinite.
	if a, ok := g.At(tx, ty).(*Appliance); ok && a.Phase() == PhaseRunning {
		for a.Phase() == PhaseRunning {
			g.Skip()
		}
		res = g.interactToward(tx, ty)
	}
	return res, OutcomeCompleted
}

// interactToward faces the adjacent target and interacts in one action.
func (g *Game) interactToward(tx, ty int) StepResult {
	switch {
	case tx == g.Player.X && ty == g.Player.Y-1:
		g.Player.Facing = North
	case tx == g.Player.X && ty == g.Player.Y+1:
		g.Player.Facing = South
	case tx == g.Player.X-1 && ty == g.Player.Y:
		g.Player.Facing = West
	case tx == g.Player.X+1 && ty == g.Player.Y:
		g.Player.Facing = East
	}
	return g.interactFacing()
}

// pathToAdjacent runs a breadth-first search over walkable tiles from the
// player to the nearest tile orthogonally adjacent to (tx,ty), returning
// the move sequence. Unit cost, 4-connected; walls and the target tile
// itself are impassable.
func (g *Game) pathToAdjacent(tx, ty int) ([]Dir, bool) {
	start := point{g.Player.X, g.Player.Y}
	adjacent := func(p point) bool {
		dx, dy := p.x-tx, p.y-ty
		return (dx == 0 && (dy == 1 || dy == -1)) || (dy == 0 && (dx == 1 || dx == -1))
	}
	if adjacent(start) {
		return nil, true
	}

	seen := map[point]visit{start: {from: start}}
	queue := []point{start}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, d := range neighborDirs {
			dx, dy := d.Delta()
			next := point{cur.x + dx, cur.y + dy}
			if _, done := seen[next]; done {
				continue
			}
			if !g.inBounds(next.x, next.y) || !g.Grid[next.y][next.x].Walkable() {
				continue
			}
			seen[next] = visit{from: cur, dir: d}
			if adjacent(next) {
				return unwind(seen, start, next), true
			}
			queue = append(queue, next)
		}
	}
	return nil, false
}

func unwind(seen map[point]visit, start, end point) []Dir {
	var rev []Dir
	for p := end; p != start; p = seen[p].from {
		rev = append(rev, seen[p].dir)
	}
	path := make([]Dir, len(rev))
	for i, d := range rev {
		path[len(rev)-1-i] = d
	}
	return path
}
