package value

import (
	"fmt"
	"strings"
)

// CheckLevel selects how much validation hot paths perform.
type CheckLevel uint8

const (
	// CheckOff skips all validation.
	CheckOff CheckLevel = iota
	// CheckBasic performs shape checks: slice lengths and bounds, sparse
	// ordering and the total number of packed values.
	CheckBasic
	// CheckStrict performs full validation, including sparse ordering and
	// per-type observed counts.
	CheckStrict
)

// String returns the level name.
func (l CheckLevel) String() string {
	switch l {
	case CheckOff:
		return "off"
	case CheckBasic:
		return "basic"
	case CheckStrict:
		return "strict"
	default:
		return fmt.Sprintf("CheckLevel(%d)", uint8(l))
	}
}

// ParseCheckLevel parses "off", "basic" or "strict" (or 0, 1, 2).
func ParseCheckLevel(s string) (CheckLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "0":
		return CheckOff, nil
	case "basic", "1":
		return CheckBasic, nil
	case "strict", "2":
		return CheckStrict, nil
	default:
		return 0, fmt.Errorf("unknown check level %q", s)
	}
}
