package game

import (
	"fmt"
	"sort"
	"strings"
)

// Operation is an immutable recipe bound to one appliance letter: a set of
// ingredient ids that, once all loaded, produce Output after Duration steps.
type Operation struct {
	Appliance byte
	Inputs    []int // sorted, unique
	Output    int
	Duration  int
}

// NewOperation normalizes the input ids (sort + dedupe). Inputs are matched
// by set equality, so "1,1" collapses to "1".
func NewOperation(appliance byte, inputs []int, output, duration int) Operation {
	norm := make([]int, 0, len(inputs))
	seen := make(map[int]bool, len(inputs))
	for _, id := range inputs {
		if seen[id] {
			continue
		}
		seen[id] = true
		norm = append(norm, id)
	}
	sort.Ints(norm)
	return Operation{Appliance: appliance, Inputs: norm, Output: output, Duration: duration}
}

// Key identifies an operation by (appliance, inputs). Later directives with
// the same key overwrite earlier ones.
func (o Operation) Key() string {
	parts := make([]string, len(o.Inputs))
	for i, id := range o.Inputs {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return fmt.Sprintf("%c:%s", o.Appliance, strings.Join(parts, ","))
}

func (o Operation) String() string {
	parts := make([]string, len(o.Inputs))
	for i, id := range o.Inputs {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return fmt.Sprintf("%s -> %c = %d (%d)", strings.Join(parts, ", "), o.Appliance, o.Output, o.Duration)
}

// matches reports whether contents equals the operation's input set.
func (o Operation) matches(contents []int) bool {
	if len(contents) != len(o.Inputs) {
		return false
	}
	have := make(map[int]bool, len(contents))
	for _, id := range contents {
		have[id] = true
	}
	for _, id := range o.Inputs {
		if !have[id] {
			return false
		}
	}
	return true
}

// accepts reports whether contents plus item is still a subset of the
// operation's inputs, i.e. loading item keeps this recipe reachable.
func (o Operation) accepts(contents []int, item int) bool {
	want := make(map[int]bool, len(o.Inputs))
	for _, id := range o.Inputs {
		want[id] = true
	}
	if !want[item] {
		return false
	}
	for _, id := range contents {
		if !want[id] || id == item {
			return false
		}
	}
	return len(contents)+1 <= len(o.Inputs)
}
