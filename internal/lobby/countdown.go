package lobby

import (
	"fmt"
	"time"
)

// DefaultCountdown is the period of the lobby countdown.
const DefaultCountdown = 15 * time.Minute

// Countdown is a repeating timer that restarts at Period every time it reaches zero.
// A zero Start means the countdown is not running.
type Countdown struct {
	Period time.Duration
	Start  time.Time
}

func (c Countdown) Running() bool {
	return !c.Start.IsZero() && c.Period > 0
}

// Remaining returns the time left in the current cycle, in (0, Period].
// Exactly at every whole period it is Period again.
func (c Countdown) Remaining(now time.Time) time.Duration {
	if !c.Running() {
		return 0
	}
	elapsed := now.Sub(c.Start)
	if elapsed < 0 {
		return c.Period
	}
	return c.Period - elapsed%c.Period
}

// RemainingSeconds rounds Remaining up to whole seconds, so a fresh cycle reads Period and the last second reads 1.
func (c Countdown) RemainingSeconds(now time.Time) int {
	rem := c.Remaining(now)
	return int((rem + time.Second - 1) / time.Second)
}

// FormatClock renders seconds as MM:SS.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
