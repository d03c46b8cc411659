package capsule

import (
	"fmt"
	"time"
)

// DateLayout is the fixed open_date format.
const DateLayout = "2006-01-02"

// ParseOpenDate parses an open_date as midnight in loc.
func ParseOpenDate(openDate string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(DateLayout, openDate, loc)
}

// IsDue reports whether a capsule with the given open_date may be opened at now.
// A capsule is due from midnight of its open date in now's location onward.
func IsDue(openDate string, now time.Time) (bool, error) {
	d, err := ParseOpenDate(openDate, now.Location())
	if err != nil {
		return false, err
	}
	return !now.Before(d), nil
}

// PendingNotice is the informational text returned for a capsule that is not yet due.
func PendingNotice(openDate string) string {
	return fmt.Sprintf("Date mismatched, can't open it before %s", openDate)
}
