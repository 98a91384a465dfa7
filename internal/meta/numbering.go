package meta

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	// Vinyl sides: "A1", "b12". The side letter becomes the disc number.
	vinylPositionRe = regexp.MustCompile(`(?i)^([A-Z])(\d+)$`)
	// ID3 position-in-set: "3/12"
	positionInSetRe = regexp.MustCompile(`^\s*(\d+)\s*/\s*(\d+)\s*$`)
)

// Position is a parsed track or disc position tag
type Position struct {
	Number int
	Total  int
	Side   int  // vinyl side as a disc number (A=1); 0 when not vinyl
	Vinyl  bool // numbered by side letter
}

// ParseTrackPosition parses a track number tag. Besides plain numbers it
// understands "N/M" and vinyl side notation.
func ParseTrackPosition(raw string) Position {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Position{}
	}

	if m := vinylPositionRe.FindStringSubmatch(raw); m != nil {
		side := unicode.ToUpper(rune(m[1][0]))
		n, _ := strconv.Atoi(m[2])
		return Position{Number: n, Side: int(side-'A') + 1, Vinyl: true}
	}

	return parsePositionInSet(raw)
}

// ParseDiscPosition parses a disc number tag ("2" or "2/3")
func ParseDiscPosition(raw string) Position {
	return parsePositionInSet(strings.TrimSpace(raw))
}

func parsePositionInSet(raw string) Position {
	if m := positionInSetRe.FindStringSubmatch(raw); m != nil {
		n, _ := strconv.Atoi(m[1])
		total, _ := strconv.Atoi(m[2])
		return Position{Number: n, Total: total}
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return Position{}
	}
	return Position{Number: n}
}
