package game

import (
	"fmt"
	"sort"
	"strings"
)

// Board renders the grid as ASCII, one row per line, with the player
// overlaid as its facing marker.
func (g *Game) Board() string {
	var sb strings.Builder
	for y, row := range g.Grid {
		for x, b := range row {
			if g.Player.X == x && g.Player.Y == y {
				sb.WriteRune(g.Player.Facing.Rune())
			} else {
				sb.WriteRune(b.Rune())
			}
		}
		if y < len(g.Grid)-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// ApplianceStatus is a read-only appliance snapshot for drivers and
// overlays.
type ApplianceStatus struct {
	ID        string  `json:"id"`
	X         int     `json:"x"`
	Y         int     `json:"y"`
	Phase     string  `json:"phase"`
	Contents  []int   `json:"contents,omitempty"`
	Remaining int     `json:"remaining,omitempty"`
	Progress  float64 `json:"progress,omitempty"`
	Output    int     `json:"output,omitempty"`
}

// DispenserStatus is a read-only dispenser snapshot.
type DispenserStatus struct {
	ID        int  `json:"id"`
	X         int  `json:"x"`
	Y         int  `json:"y"`
	Available bool `json:"available"`
	Remaining int  `json:"remaining"` // steps until expiry; -1 = never expires
}

func (g *Game) Appliances() []ApplianceStatus {
	var out []ApplianceStatus
	for y, row := range g.Grid {
		for x, b := range row {
			a, ok := b.(*Appliance)
			if !ok {
				continue
			}
			st := ApplianceStatus{
				ID:       string(a.ID),
				X:        x,
				Y:        y,
				Phase:    a.Phase().String(),
				Contents: append([]int(nil), a.Contents...),
				Output:   a.Output,
				Progress: a.Progress(),
			}
			if a.Active != nil {
				st.Remaining = a.Active.Remaining
			}
			out = append(out, st)
		}
	}
	return out
}

func (g *Game) Dispensers() []DispenserStatus {
	var out []DispenserStatus
	for y, row := range g.Grid {
		for x, b := range row {
			d, ok := b.(*Dispenser)
			if !ok {
				continue
			}
			st := DispenserStatus{ID: d.ID, X: x, Y: y, Available: d.Available(g.Player.Time), Remaining: -1}
			if d.ExpiresAfter >= 0 {
				st.Remaining = d.ExpiresAfter - g.Player.Time
				if st.Remaining < 0 {
					st.Remaining = 0
				}
			}
			out = append(out, st)
		}
	}
	return out
}

// Status renders the text-mode board report: board, clock, inventory and
// per-block state, in the shape text drivers parse.
func (g *Game) Status() string {
	var sb strings.Builder
	sb.WriteString(g.Board())
	sb.WriteByte('\n')
	fmt.Fprintf(&sb, "Time: %d\n", g.Player.Time)
	if g.Player.Holding == 0 {
		sb.WriteString("Inventory: empty\n")
	} else {
		id := fmt.Sprintf("%d", g.Player.Holding)
		if name := g.lvl.DisplayName(id); name != id {
			fmt.Fprintf(&sb, "Inventory: %s (%s)\n", name, id)
		} else {
			fmt.Fprintf(&sb, "Inventory: %s\n", id)
		}
	}
	sb.WriteString("Appliances:\n")
	for _, a := range g.Appliances() {
		switch a.Phase {
		case "RUNNING":
			fmt.Fprintf(&sb, "  %s at (%d,%d): running, remaining=%d\n", a.ID, a.X, a.Y, a.Remaining)
		case "READY":
			fmt.Fprintf(&sb, "  %s at (%d,%d): ready, output=%d\n", a.ID, a.X, a.Y, a.Output)
		default:
			fmt.Fprintf(&sb, "  %s at (%d,%d): %s; contents=%v\n", a.ID, a.X, a.Y, strings.ToLower(a.Phase), a.Contents)
		}
	}
	sb.WriteString("Dispensers:\n")
	for _, d := range g.Dispensers() {
		switch {
		case d.Remaining == -1:
			fmt.Fprintf(&sb, "  %d at (%d,%d): available; remaining time: infinite\n", d.ID, d.X, d.Y)
		case d.Available:
			fmt.Fprintf(&sb, "  %d at (%d,%d): available; remaining time: %d\n", d.ID, d.X, d.Y, d.Remaining)
		default:
			fmt.Fprintf(&sb, "  %d at (%d,%d): unavailable\n", d.ID, d.X, d.Y)
		}
	}
	return sb.String()
}

// Info renders the level description and id mapping shown on the info
// command. Reading it costs no game time.
func (g *Game) Info() string {
	var sb strings.Builder
	sb.WriteString("--- Description ---\n")
	sb.WriteString(strings.TrimRight(g.lvl.Desc, "\n"))
	sb.WriteString("\n--- Mapping ---\n")
	var items, appliances []string
	for _, k := range sortedKeys(g.lvl.Mapping) {
		line := fmt.Sprintf("  - %s: %s", k, g.lvl.Mapping[k])
		if k != "" && k[0] >= '0' && k[0] <= '9' {
			items = append(items, line)
		} else {
			appliances = append(appliances, line)
		}
	}
	if len(items) > 0 {
		sb.WriteString("Items:\n")
		sb.WriteString(strings.Join(items, "\n"))
		sb.WriteByte('\n')
	}
	if len(appliances) > 0 {
		sb.WriteString("Appliances:\n")
		sb.WriteString(strings.Join(appliances, "\n"))
		sb.WriteByte('\n')
	}
	return sb.String()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
