package game

// Block is one grid tile. The grid shape is fixed after construction;
// Dispenser and Appliance blocks mutate in place as the simulation runs.
type Block interface {
	Rune() rune
	Walkable() bool
}

type Wall struct{}

func (Wall) Rune() rune     { return '#' }
func (Wall) Walkable() bool { return false }

type Floor struct{}

func (Floor) Rune() rune     { return '.' }
func (Floor) Walkable() bool { return true }

// Dispenser produces an infinite supply of one ingredient id, optionally
// only until an absolute step count. It is never depleted by use.
type Dispenser struct {
	ID           int
	ExpiresAfter int // absolute step; -1 = never expires
}

func (d *Dispenser) Rune() rune     { return rune('0' + d.ID) }
func (d *Dispenser) Walkable() bool { return false }

// Available reports whether the dispenser still produces at step now.
// Expiry is permanent: once now reaches ExpiresAfter it never re-enables.
func (d *Dispenser) Available(now int) bool {
	return d.ExpiresAfter < 0 || now < d.ExpiresAfter
}

// Phase is the appliance lifecycle: Idle -> Loading -> Running -> Ready -> Idle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseRunning
	PhaseReady
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "LOADING"
	case PhaseRunning:
		return "RUNNING"
	case PhaseReady:
		return "READY"
	default:
		return "IDLE"
	}
}

type ActiveOp struct {
	Op        Operation
	Remaining int
}

// Appliance hosts the operations configured for its letter and runs one at
// a time. Output persists until collected and blocks new input.
type Appliance struct {
	ID       byte
	Contents []int
	Ops      []Operation
	Active   *ActiveOp
	Output   int // produced item waiting for pickup; 0 = none
}

func (a *Appliance) Rune() rune     { return rune(a.ID) }
func (a *Appliance) Walkable() bool { return false }

func (a *Appliance) Phase() Phase {
	switch {
	case a.Active != nil:
		return PhaseRunning
	case a.Output != 0:
		return PhaseReady
	case len(a.Contents) > 0:
		return PhaseLoading
	default:
		return PhaseIdle
	}
}

// AddOperation registers a recipe this appliance can perform.
func (a *Appliance) AddOperation(op Operation) {
	a.Ops = append(a.Ops, op)
}

// Place loads item into the appliance. Rejected while Running or Ready, and
// rejected when no configured operation could ever use the resulting
// contents (prevents pointless accumulation).
func (a *Appliance) Place(item int) bool {
	if a.Active != nil || a.Output != 0 {
		return false
	}
	ok := false
	for _, op := range a.Ops {
		if op.accepts(a.Contents, item) {
			ok = true
			break
		}
	}
	if !ok {
		return false
	}
	a.Contents = append(a.Contents, item)
	return true
}

// Collect takes the finished output, returning the appliance to Idle.
func (a *Appliance) Collect() (int, bool) {
	if a.Output == 0 {
		return 0, false
	}
	out := a.Output
	a.Output = 0
	return out, true
}

// tick advances the active operation by one step; at zero the output is
// produced and the operation cleared in the same tick.
func (a *Appliance) tick() {
	if a.Active == nil {
		return
	}
	a.Active.Remaining--
	if a.Active.Remaining <= 0 {
		a.Output = a.Active.Op.Output
		a.Active = nil
	}
}

// tryStart begins an operation when contents exactly match its input set.
func (a *Appliance) tryStart() bool {
	if a.Active != nil || a.Output != 0 {
		return false
	}
	for _, op := range a.Ops {
		if op.matches(a.Contents) {
			a.Active = &ActiveOp{Op: op, Remaining: op.Duration}
			a.Contents = nil
			return true
		}
	}
	return false
}

// Progress is the completed fraction of the active operation, for overlay
// rendering. 0 when idle.
func (a *Appliance) Progress() float64 {
	if a.Active == nil || a.Active.Op.Duration <= 0 {
		return 0
	}
	elapsed := a.Active.Op.Duration - a.Active.Remaining
	if elapsed < 0 {
		elapsed = 0
	}
	return float64(elapsed) / float64(a.Active.Op.Duration)
}
