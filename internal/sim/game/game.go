// Package game is the deterministic simulation core: a fixed grid of
// blocks, a single player, and a step counter that advances by exactly one
// per action. For a fixed command sequence the resulting state and elapsed
// time are a pure function of the level, which is the property the
// benchmark harness depends on. Nothing here blocks or runs concurrently;
// each Game is an isolated unit of state.
package game

import (
	"fmt"
	"log"

	"github.com/skipyas0/cookenv-benchmark/internal/sim/level"
)

// Code classifies the outcome of one action. Illegal actions are no-ops
// that still cost a step; only Unreachable leaves the clock untouched.
type Code string

const (
	CodeOK          Code = ""
	CodeBlocked     Code = "E_BLOCKED"
	CodeIllegal     Code = "E_ILLEGAL_ACTION"
	CodeUnreachable Code = "E_UNREACHABLE"
)

// StepResult is the player tuple returned by every action.
type StepResult struct {
	X, Y      int
	Facing    Dir
	Inventory int
	Time      int
	Goal      bool
	Code      Code
}

// Game owns the mutable simulation state for one run of one level.
type Game struct {
	Width, Height int
	Grid          [][]Block // [y][x]
	Player        Player
	Goal          int

	lvl *level.Level
	log *log.Logger
}

// New builds a fresh Game from a loaded level. The only fatal case is a
// grid with no walkable tile to place the player on.
func New(lvl *level.Level, logger *log.Logger) (*Game, error) {
	if logger == nil {
		logger = log.Default()
	}
	g := &Game{
		Width:  lvl.Width,
		Height: lvl.Height,
		Goal:   lvl.Goal,
		lvl:    lvl,
		log:    logger,
	}

	g.Grid = make([][]Block, lvl.Height)
	for y, row := range lvl.MazeRows {
		g.Grid[y] = make([]Block, lvl.Width)
		for x := 0; x < lvl.Width; x++ {
			g.Grid[y][x] = blockFor(row[x], logger, x, y)
		}
	}
	g.distribute(lvl)

	if !g.placePlayer(lvl.Start) {
		return nil, fmt.Errorf("level %s: no walkable tile for the player", lvl.Name)
	}
	return g, nil
}

func blockFor(c byte, logger *log.Logger, x, y int) Block {
	switch {
	case c == '.' || c == ' ':
		return Floor{}
	case c == '#':
		return Wall{}
	case c >= '1' && c <= '9':
		return &Dispenser{ID: int(c - '0'), ExpiresAfter: -1}
	case c >= 'A' && c <= 'Z':
		return &Appliance{ID: c}
	default:
		logger.Printf("maze (%d,%d): unrecognized %q, treated as wall", x, y, c)
		return Wall{}
	}
}

// distribute assigns parsed operations to the appliances carrying their
// letter and expiry steps to the dispensers carrying their id.
func (g *Game) distribute(lvl *level.Level) {
	for _, row := range g.Grid {
		for _, b := range row {
			switch blk := b.(type) {
			case *Appliance:
				for _, op := range lvl.Ops {
					if op.Appliance == blk.ID {
						blk.AddOperation(NewOperation(op.Appliance, op.Inputs, op.Output, op.Duration))
					}
				}
			case *Dispenser:
				if step, ok := lvl.Expiries[blk.ID]; ok {
					blk.ExpiresAfter = step
				}
			}
		}
	}
}

func (g *Game) placePlayer(start *level.Pose) bool {
	if start != nil && g.inBounds(start.X, start.Y) && g.Grid[start.Y][start.X].Walkable() {
		g.Player = Player{X: start.X, Y: start.Y}
		if d, ok := DirFromMarker(start.Facing); ok {
			g.Player.Facing = d
		}
		return true
	}
	for y, row := range g.Grid {
		for x, b := range row {
			if b.Walkable() {
				g.Player = Player{X: x, Y: y, Facing: South}
				return true
			}
		}
	}
	return false
}

func (g *Game) inBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.Width && y < g.Height
}

// At returns the block at (x,y), or nil when out of bounds.
func (g *Game) At(x, y int) Block {
	if !g.inBounds(x, y) {
		return nil
	}
	return g.Grid[y][x]
}

// GoalReached reports whether the player holds the goal item.
func (g *Game) GoalReached() bool {
	return g.Goal != 0 && g.Player.Holding == g.Goal
}

// Level exposes the immutable level this game was built from.
func (g *Game) Level() *level.Level { return g.lvl }

// endStep closes out one action: the clock advances by exactly one, every
// active appliance countdown ticks once, and appliances whose contents were
// completed during this action start their operation. Starting after the
// tick means a fresh operation keeps its full duration.
func (g *Game) endStep(code Code) StepResult {
	g.Player.Time++
	for _, row := range g.Grid {
		for _, b := range row {
			if a, ok := b.(*Appliance); ok {
				a.tick()
			}
		}
	}
	for _, row := range g.Grid {
		for _, b := range row {
			if a, ok := b.(*Appliance); ok {
				if a.tryStart() {
					g.log.Printf("appliance %c started %s", a.ID, a.Active.Op)
				}
			}
		}
	}
	return g.result(code)
}

func (g *Game) result(code Code) StepResult {
	return StepResult{
		X:         g.Player.X,
		Y:         g.Player.Y,
		Facing:    g.Player.Facing,
		Inventory: g.Player.Holding,
		Time:      g.Player.Time,
		Goal:      g.GoalReached(),
		Code:      code,
	}
}

// Turn changes the facing without moving. Still costs one step.
func (g *Game) Turn(d Dir) StepResult {
	g.Player.Facing = d
	return g.endStep(CodeOK)
}

// Move attempts one step in direction d. A blocked move still turns the
// player toward d and still costs one step (bump-to-turn).
func (g *Game) Move(d Dir) StepResult {
	g.Player.Facing = d
	dx, dy := d.Delta()
	nx, ny := g.Player.X+dx, g.Player.Y+dy
	if !g.inBounds(nx, ny) || !g.Grid[ny][nx].Walkable() {
		return g.endStep(CodeBlocked)
	}
	g.Player.X, g.Player.Y = nx, ny
	return g.endStep(CodeOK)
}

// Skip passes one step with no other effect.
func (g *Game) Skip() StepResult {
	return g.endStep(CodeOK)
}

// Drop discards the held item unconditionally. Costs one step.
func (g *Game) Drop() StepResult {
	g.Player.Holding = 0
	return g.endStep(CodeOK)
}

// Interact acts on the block directly in front of the player: take from a
// dispenser, place into or collect from an appliance. Illegal interactions
// are no-ops that still cost the step.
func (g *Game) Interact() StepResult {
	return g.interactFacing()
}

func (g *Game) interactFacing() StepResult {
	fx, fy := g.Player.Front()
	switch b := g.At(fx, fy).(type) {
	case *Dispenser:
		if g.Player.Holding != 0 {
			return g.endStep(CodeIllegal)
		}
		if !b.Available(g.Player.Time) {
			g.log.Printf("dispenser %d at (%d,%d) expired", b.ID, fx, fy)
			return g.endStep(CodeIllegal)
		}
		g.Player.Holding = b.ID
		return g.endStep(CodeOK)

	case *Appliance:
		if g.Player.Holding == 0 {
			item, ok := b.Collect()
			if !ok {
				return g.endStep(CodeIllegal)
			}
			g.Player.Holding = item
			return g.endStep(CodeOK)
		}
		if !b.Place(g.Player.Holding) {
			return g.endStep(CodeIllegal)
		}
		g.Player.Holding = 0
		return g.endStep(CodeOK)

	default:
		return g.endStep(CodeIllegal)
	}
}
