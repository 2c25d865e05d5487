package protocol

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// CommandKind enumerates the text command surface automated drivers speak.
type CommandKind string

const (
	CmdUp         CommandKind = "up"
	CmdDown       CommandKind = "down"
	CmdLeft       CommandKind = "left"
	CmdRight      CommandKind = "right"
	CmdInteract   CommandKind = "interact"    // block in front of the player
	CmdInteractAt CommandKind = "interact_at" // "interact (x,y)": pathfind and interact
	CmdSkip       CommandKind = "skip"
	CmdDrop       CommandKind = "drop"
	CmdInfo       CommandKind = "info"
)

// Command is one parsed driver command. X/Y are set only for CmdInteractAt.
type Command struct {
	Kind CommandKind
	X, Y int
}

var interactAtRe = regexp.MustCompile(`^interact\s*\(\s*(\d+)\s*,\s*(\d+)\s*\)$`)

// ParseCommand parses the literal command grammar: movement words,
// "interact", "interact (x,y)", "skip", "drop" and "info". Whitespace and
// case insensitive.
func ParseCommand(s string) (Command, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if m := interactAtRe.FindStringSubmatch(s); m != nil {
		x, _ := strconv.Atoi(m[1])
		y, _ := strconv.Atoi(m[2])
		return Command{Kind: CmdInteractAt, X: x, Y: y}, nil
	}
	switch CommandKind(s) {
	case CmdUp, CmdDown, CmdLeft, CmdRight, CmdInteract, CmdSkip, CmdDrop, CmdInfo:
		return Command{Kind: CommandKind(s)}, nil
	}
	return Command{}, fmt.Errorf("unknown command %q", s)
}

func (c Command) String() string {
	if c.Kind == CmdInteractAt {
		return fmt.Sprintf("interact (%d,%d)", c.X, c.Y)
	}
	return string(c.Kind)
}
