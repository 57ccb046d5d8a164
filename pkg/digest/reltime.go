package digest

import (
	"fmt"
	"time"
)

var timeUnits = []struct {
	seconds int64
	name    string
}{
	{31536000, "year"},
	{2592000, "month"},
	{86400, "day"},
	{3600, "hour"},
	{60, "minute"},
}

// RelativeTime renders how long before now then occurred. It walks the units
// largest first and picks the first whose quotient is strictly greater than
// one, so a gap of exactly one day still reads in hours ("24 hours ago").
func RelativeTime(now, then time.Time) string {
	seconds := int64(now.Sub(then).Seconds())
	for _, unit := range timeUnits {
		if quotient := seconds / unit.seconds; quotient > 1 {
			return fmt.Sprintf("%d %ss ago", quotient, unit.name)
		}
	}
	return fmt.Sprintf("%d seconds ago", seconds)
}
