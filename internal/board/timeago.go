package board

import (
	"math"
	"time"

	"github.com/dustin/go-humanize"
)

// Never is shown for the last activity of an empty board.
const Never = "Never"

// Unknown is shown for the last activity of a board whose comments carry
// no readable timestamp, e.g. after a hand-edited or corrupted save.
const Unknown = "Unknown"

const day = 24 * time.Hour

var agoMagnitudes = []humanize.RelTimeMagnitude{
	{D: time.Minute, Format: "Just now", DivBy: time.Second},
	{D: 2 * time.Minute, Format: "1 minute %s", DivBy: time.Minute},
	{D: time.Hour, Format: "%d minutes %s", DivBy: time.Minute},
	{D: 2 * time.Hour, Format: "1 hour %s", DivBy: time.Hour},
	{D: day, Format: "%d hours %s", DivBy: time.Hour},
	{D: 2 * day, Format: "1 day %s", DivBy: day},
	{D: math.MaxInt64, Format: "%d days %s", DivBy: day},
}

// TimeAgo renders the age of ts at now: "Just now" under a minute, then
// whole minutes, hours or days. Timestamps in the future are "Just now".
func TimeAgo(ts, now time.Time) string {
	if ts.After(now) {
		return "Just now"
	}
	return humanize.CustomRelTime(ts, now, "ago", "from now", agoMagnitudes)
}
