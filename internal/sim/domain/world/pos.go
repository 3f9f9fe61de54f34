package world

import (
	"strconv"
	"strings"
)

// Pos is a parsed grid coordinate.
type Pos struct {
	X int
	Y int
}

// ParsePos parses an "x,y" position string. The second return value is false
// for empty or malformed positions, which perception treats as maximally far.
func ParsePos(s string) (Pos, bool) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 2 {
		return Pos{}, false
	}
	x, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Pos{}, false
	}
	y, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Pos{}, false
	}
	return Pos{X: x, Y: y}, true
}

// Manhattan returns the Manhattan distance between two positions. The metric
// is symmetric and monotonic, which is all perception and threat grading rely
// on; no further grid topology is assumed.
func Manhattan(a, b Pos) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

// Distance returns the Manhattan distance between two entities. The second
// return value is false when either position is unknown or unparseable.
func Distance(a, b Entity) (int, bool) {
	pa, ok := ParsePos(a.Pos)
	if !ok {
		return 0, false
	}
	pb, ok := ParsePos(b.Pos)
	if !ok {
		return 0, false
	}
	return Manhattan(pa, pb), true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
