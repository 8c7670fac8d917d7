package scheduler

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// MaxLabelLength caps the label in characters.
const MaxLabelLength = 512

// labelOffset is the length of the command token ("add ") that precedes the
// duration in a command line.
const labelOffset = 4

type durationUnit struct {
	re     *regexp.Regexp
	factor int64
}

// Each unit is matched at most once, anywhere in the text.
var durationUnits = []durationUnit{
	{regexp.MustCompile(`([0-9]{1,2})s`), 1},
	{regexp.MustCompile(`([0-9]{1,2})m`), 60},
	{regexp.MustCompile(`([0-9]{1,2})h`), 3600},
	{regexp.MustCompile(`([0-9]{1,3})d`), 86400},
}

// ParseSeconds sums the first seconds, minutes, hours and days token found in
// text. Tokens are independent of each other and of their order, so "1h30m"
// and "30m 1h" both give 5400. Text without tokens gives 0.
func ParseSeconds(text string) int64 {
	var seconds int64
	for _, u := range durationUnits {
		m := u.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		v, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			continue
		}
		seconds += v * u.factor
	}
	return seconds
}

// LabelMode selects how ParseLabel derives a label from the input text.
type LabelMode int

const (
	// LabelOffset drops the first four characters (the command token) and
	// keeps the rest verbatim, duration tokens included.
	LabelOffset LabelMode = iota
	// LabelStrip removes the matched duration tokens and collapses whitespace.
	LabelStrip
)

func (m LabelMode) String() string {
	switch m {
	case LabelOffset:
		return "offset"
	case LabelStrip:
		return "strip"
	}
	return "unknown"
}

// ParseLabelMode maps a configuration value to a LabelMode.
// The empty string selects LabelOffset.
func ParseLabelMode(s string) (LabelMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "offset":
		return LabelOffset, nil
	case "strip":
		return LabelStrip, nil
	}
	return LabelOffset, fmt.Errorf("unknown label mode %q", s)
}

// ParseLabel extracts the timer label from text, capped at MaxLabelLength
// characters.
func ParseLabel(text string, mode LabelMode) string {
	var label []rune
	switch mode {
	case LabelStrip:
		label = []rune(stripDurations(text))
	default:
		r := []rune(text)
		if len(r) < labelOffset {
			return ""
		}
		label = r[labelOffset:]
	}
	if len(label) > MaxLabelLength {
		label = label[:MaxLabelLength]
	}
	return string(label)
}

// Parse returns the duration in seconds and the label for text.
func Parse(text string, mode LabelMode) (int64, string) {
	return ParseSeconds(text), ParseLabel(text, mode)
}

func stripDurations(text string) string {
	for _, u := range durationUnits {
		loc := u.re.FindStringIndex(text)
		if loc == nil {
			continue
		}
		text = text[:loc[0]] + " " + text[loc[1]:]
	}
	return strings.Join(strings.Fields(text), " ")
}
