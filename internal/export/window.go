package export

import (
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// Window is the exclusive (Oldest, Latest) time range passed to
// conversations.history, as Unix-second strings.
type Window struct {
	Latest string // newer bound ("today")
	Oldest string // older bound ("yesterday")

	Start time.Time // Oldest as a time
	End   time.Time // Latest as a time
}

// DateWindow returns (today, yesterday) for the local time zone: the Unix
// seconds of today's midnight and of yesterday's midnight. Pass them as the
// latest and oldest bounds of a history fetch.
func DateWindow() (today, yesterday string) {
	w := DateWindowAt(time.Now(), time.Local)
	return w.Latest, w.Oldest
}

// DateWindowAt computes the window ending at the midnight that starts now's
// calendar day in loc and beginning one calendar day earlier. Midnights are
// built with time.Date, so a DST day spans 23 or 25 hours.
func DateWindowAt(now time.Time, loc *time.Location) Window {
	now = now.In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	yesterday := time.Date(now.Year(), now.Month(), now.Day()-1, 0, 0, 0, 0, loc)
	return newWindow(yesterday, today)
}

// DayWindow returns the window covering the whole calendar day date
// (YYYY-MM-DD) in timezone.
func DayWindow(date, timezone string) (Window, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return Window{}, errors.Wrap(err, "invalid timezone")
	}
	return DayWindowIn(date, loc)
}

// DayWindowIn is DayWindow for an already loaded location.
func DayWindowIn(date string, loc *time.Location) (Window, error) {
	t, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return Window{}, errors.Wrap(err, "invalid date")
	}
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	end := time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, loc)
	return newWindow(start, end), nil
}

// EpochWindow returns the window between two Unix-second instants.
func EpochWindow(begin, end int64) (Window, error) {
	if end <= begin {
		return Window{}, errors.Errorf("window end %d is not after begin %d", end, begin)
	}
	return newWindow(time.Unix(begin, 0), time.Unix(end, 0)), nil
}

// ParseWindow builds a Window from the (latest, oldest) string pair returned
// by DateWindow.
func ParseWindow(latest, oldest string) (Window, error) {
	end, err := strconv.ParseInt(latest, 10, 64)
	if err != nil {
		return Window{}, errors.Wrap(err, "invalid latest bound")
	}
	begin, err := strconv.ParseInt(oldest, 10, 64)
	if err != nil {
		return Window{}, errors.Wrap(err, "invalid oldest bound")
	}
	return EpochWindow(begin, end)
}

func newWindow(start, end time.Time) Window {
	return Window{
		Latest: strconv.FormatInt(end.Unix(), 10),
		Oldest: strconv.FormatInt(start.Unix(), 10),
		Start:  start,
		End:    end,
	}
}
