package earnings

import "time"

// DateLayout is the wire and storage layout for period dates
const DateLayout = "2006-01-02"

// Period is an inclusive range of calendar dates in UTC
type Period struct {
	Start time.Time
	End   time.Time
}

// Date truncates t to midnight UTC
func Date(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DayPeriod returns a single-day period covering t
func DayPeriod(t time.Time) Period {
	d := Date(t)
	return Period{Start: d, End: d}
}

// MonthPeriod returns the period from the first to the last day of a month
func MonthPeriod(year int, month time.Month) Period {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return Period{Start: start, End: start.AddDate(0, 1, -1)}
}

// TrailingPeriod returns the period ending on end and starting days before it
func TrailingPeriod(end time.Time, days int) Period {
	e := Date(end)
	return Period{Start: e.AddDate(0, 0, -days), End: e}
}

// ParsePeriod parses start and end dates in DateLayout
func ParsePeriod(start, end string) (Period, error) {
	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return Period{}, err
	}
	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return Period{}, err
	}
	p := Period{Start: s, End: e}
	return p, p.Validate()
}

// Validate returns ErrInvalidPeriod if End is before Start
func (p Period) Validate() error {
	if p.End.Before(p.Start) {
		return ErrInvalidPeriod
	}
	return nil
}

// StartString returns the start date in DateLayout
func (p Period) StartString() string {
	return p.Start.Format(DateLayout)
}

// EndString returns the end date in DateLayout
func (p Period) EndString() string {
	return p.End.Format(DateLayout)
}

// String returns "start → end"
func (p Period) String() string {
	return p.StartString() + " → " + p.EndString()
}

// Months returns the calendar months between from and to, inclusive, oldest first
func Months(from, to time.Time) []Period {
	var out []Period
	cur := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(to.Year(), to.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !cur.After(last) {
		out = append(out, MonthPeriod(cur.Year(), cur.Month()))
		cur = cur.AddDate(0, 1, 0)
	}
	return out
}
