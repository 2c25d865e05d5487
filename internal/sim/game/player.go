package game

// Dir is a facing / movement direction on the grid. Y grows downward, so
// North is -Y.
type Dir int

const (
	North Dir = iota
	South
	West
	East
)

func (d Dir) Delta() (dx, dy int) {
	switch d {
	case North:
		return 0, -1
	case South:
		return 0, 1
	case West:
		return -1, 0
	default:
		return 1, 0
	}
}

func (d Dir) Rune() rune {
	switch d {
	case North:
		return '^'
	case South:
		return 'v'
	case West:
		return '<'
	default:
		return '>'
	}
}

func (d Dir) String() string {
	switch d {
	case North:
		return "N"
	case South:
		return "S"
	case West:
		return "W"
	default:
		return "E"
	}
}

// DirFromMarker maps a maze start marker (^ v < >) or compass letter to a Dir.
func DirFromMarker(c byte) (Dir, bool) {
	switch c {
	case '^', 'N':
		return North, true
	case 'v', 'S':
		return South, true
	case '<', 'W':
		return West, true
	case '>', 'E':
		return East, true
	}
	return North, false
}

// Player is the single agent: a tile position, a facing, a one-slot
// inventory and the step counter that doubles as the world clock.
type Player struct {
	X, Y    int
	Facing  Dir
	Holding int // ingredient id; 0 = empty
	Time    int
}

// Front is the tile coordinate the player is facing.
func (p *Player) Front() (int, int) {
	dx, dy := p.Facing.Delta()
	return p.X + dx, p.Y + dy
}
