package game

import (
	"testing"

	"github.com/skipyas0/cookenv-benchmark/internal/sim/level"
)

func TestAutoInteractDispenser(t *testing.T) {
	g := newTestGame(t, testLevel(t))

	// Dispenser 1 at (1,3); nearest adjacent tile is one move south.
	res, outcome := g.AutoInteract(1, 3)
	if outcome != OutcomeCompleted {
		t.Fatalf("outcome = %v", outcome)
	}
	if res.Inventory != 1 {
		t.Fatalf("inventory = %d", res.Inventory)
	}
	// One move plus one interact.
	if res.Time != 2 {
		t.Fatalf("time = %d, want 2", res.Time)
	}
	if res.Facing != South {
		t.Fatalf("facing = %v, want South toward the dispenser", res.Facing)
	}
}

func TestAutoInteractPlaceWaitsAndCollects(t *testing.T) {
	g := newTestGame(t, testLevel(t))

	g.AutoInteract(1, 3) // take 1, time 2

	// Already adjacent to A at (2,2): place (1 step), the operation runs for
	// 2 steps while we wait, then one more interact collects.
	res, outcome := g.AutoInteract(2, 2)
	if outcome != OutcomeCompleted {
		t.Fatalf("outcome = %v", outcome)
	}
	if res.Inventory != 2 || !res.Goal {
		t.Fatalf("result: %+v", res)
	}
	if res.Time != 2+4 {
		t.Fatalf("time = %d, want 6", res.Time)
	}
}

func TestAutoInteractUnreachable(t *testing.T) {
	lvl := &level.Level{
		Name:     "walled",
		MazeRows: []string{"#####", "#.#1#", "#####"},
		Width:    5,
		Height:   3,
		Start:    &level.Pose{X: 1, Y: 1, Facing: 'E'},
		Expiries: map[int]int{},
	}
	g := newTestGame(t, lvl)

	res, outcome := g.AutoInteract(3, 1)
	if outcome != OutcomeUnreachable {
		t.Fatalf("outcome = %v, want UNREACHABLE", outcome)
	}
	if res.Time != 0 {
		t.Fatalf("time advanced on unreachable: %d", res.Time)
	}
	if res.Code != CodeUnreachable {
		t.Fatalf("code = %q", res.Code)
	}
}

func TestAutoInteractRejectsNonInteractable(t *testing.T) {
	g := newTestGame(t, testLevel(t))

	if _, outcome := g.AutoInteract(2, 1); outcome != OutcomeUnreachable {
		t.Fatalf("floor tile accepted as target")
	}
	if _, outcome := g.AutoInteract(0, 0); outcome != OutcomeUnreachable {
		t.Fatalf("wall accepted as target")
	}
	if _, outcome := g.AutoInteract(42, 1); outcome != OutcomeUnreachable {
		t.Fatalf("out-of-bounds accepted as target")
	}
	if g.Player.Time != 0 {
		t.Fatalf("time advanced: %d", g.Player.Time)
	}
}

func TestAutoInteractWaitsOutBusyAppliance(t *testing.T) {
	g := newTestGame(t, testLevel(t))
	a := applianceAt(t, g, 2, 2)

	// The appliance is already mid-operation when the command arrives.
	// Empty-handed: the first interact is a no-op against a busy
	// appliance, the wait runs the countdown out, the second collects.
	a.Active = &ActiveOp{Op: NewOperation('A', []int{1}, 2, 4), Remaining: 4}

	res, outcome := g.AutoInteract(2, 2)
	if outcome != OutcomeCompleted {
		t.Fatalf("outcome = %v", outcome)
	}
	if res.Inventory != 2 || !res.Goal {
		t.Fatalf("result: %+v", res)
	}
	// 1 move + no-op interact + 2 waits + collect.
	if res.Time != 5 {
		t.Fatalf("time = %d, want 5", res.Time)
	}
	if a.Phase() != PhaseIdle {
		t.Fatalf("phase = %v after collect", a.Phase())
	}
}

func TestPathDeterminism(t *testing.T) {
	lvl := testLevel(t)
	g1 := newTestGame(t, lvl)
	g2 := newTestGame(t, lvl)

	for _, g := range []*Game{g1, g2} {
		g.AutoInteract(1, 3)
		g.AutoInteract(2, 2)
	}
	if d1, d2 := g1.StateDigest(), g2.StateDigest(); d1 != d2 {
		t.Fatalf("identical command sequences diverged:\n%s\n%s", d1, d2)
	}
	if g1.Player.Time != g2.Player.Time {
		t.Fatalf("elapsed time diverged: %d vs %d", g1.Player.Time, g2.Player.Time)
	}
}
