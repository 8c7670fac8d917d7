package scheduler

import (
	"fmt"
	"strconv"
	"time"
)

// FormatRemaining renders d as H:MM:SS in whole seconds. Hours are total
// hours and are not padded. Minutes and seconds below 10 get a leading zero.
// Negative durations go through the same arithmetic unchanged.
func FormatRemaining(d time.Duration) string {
	rest := int64(d / time.Second)
	hours := rest / 3600
	rest -= hours * 3600
	minutes := rest / 60
	rest -= minutes * 60
	return fmt.Sprintf("%d:%s:%s", hours, pad2(minutes), pad2(rest))
}

func pad2(v int64) string {
	if v < 10 {
		return "0" + strconv.FormatInt(v, 10)
	}
	return strconv.FormatInt(v, 10)
}

// ExpiredMessage is the line emitted when t fires.
func ExpiredMessage(t Timer) string {
	return "Timer expired: " + t.Label
}

// ListLines renders t the way the list command shows it, with the remaining
// time computed against now.
func ListLines(t Timer, now time.Time) []string {
	return []string{
		fmt.Sprintf("Timer: %s. Timer id: %d", t.Label, t.ID),
		"Expires in: " + FormatRemaining(t.Remaining(now)),
	}
}
