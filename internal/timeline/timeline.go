// Package timeline orders a client's episodes in time and measures the gaps
// between them.
//
// Episodes carry no ordering of their own. Every function here recomputes the
// order from each episode's canonical date, so callers may pass episodes in
// any order. Episode identity is pointer identity.
package timeline

import (
	"math"
	"sort"
	"time"

	"github.com/screening-outcome-classifier/internal/domain"
)

// DaysPerMonth is the fixed month length used by every window calculation.
const DaysPerMonth = 365.0 / 12.0

// CanonicalDate returns the date used to order an episode: the earliest event
// date if any event carries one, otherwise the diagnosis date for interval
// cases and the opened date for everything else. Interval cases never fall
// back to the opened date.
func CanonicalDate(ep *domain.Episode) (time.Time, error) {
	dates := ep.Events.Dates()
	if len(dates) > 0 {
		earliest := dates[0]
		for _, d := range dates[1:] {
			if d.Before(earliest) {
				earliest = d
			}
		}
		return earliest, nil
	}

	if ep.Type.IsIntervalCase() {
		if ep.DiagnosisDate != nil {
			return *ep.DiagnosisDate, nil
		}
	} else if ep.OpenedDate != nil {
		return *ep.OpenedDate, nil
	}
	return time.Time{}, domain.NewDateError(ep.ID, domain.ErrNoCanonicalDate)
}

type dated struct {
	ep   *domain.Episode
	date time.Time
}

// Order returns a new slice with the episodes sorted by canonical date. The
// sort is stable, so episodes sharing a date keep their input order. If any
// episode has no canonical date the whole ordering fails.
func Order(episodes []*domain.Episode) ([]*domain.Episode, error) {
	items := make([]dated, 0, len(episodes))
	for _, ep := range episodes {
		d, err := CanonicalDate(ep)
		if err != nil {
			return nil, err
		}
		items = append(items, dated{ep: ep, date: d})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].date.Before(items[j].date)
	})

	ordered := make([]*domain.Episode, len(items))
	for i, it := range items {
		ordered[i] = it.ep
	}
	return ordered, nil
}

// position orders the episodes and locates ep within them. It returns -1 when
// ep is not one of the episodes.
func position(ep *domain.Episode, episodes []*domain.Episode) ([]*domain.Episode, int, error) {
	ordered, err := Order(episodes)
	if err != nil {
		return nil, -1, err
	}
	for i, candidate := range ordered {
		if candidate == ep {
			return ordered, i, nil
		}
	}
	return ordered, -1, nil
}

// Next returns the episode immediately after ep, or nil when ep is last or
// not among the episodes.
func Next(ep *domain.Episode, episodes []*domain.Episode) (*domain.Episode, error) {
	ordered, idx, err := position(ep, episodes)
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx == len(ordered)-1 {
		return nil, nil
	}
	return ordered[idx+1], nil
}

// Subsequent returns every episode after ep, nearest first.
func Subsequent(ep *domain.Episode, episodes []*domain.Episode) ([]*domain.Episode, error) {
	ordered, idx, err := position(ep, episodes)
	if err != nil {
		return nil, err
	}
	if idx < 0 {
		return nil, nil
	}
	return ordered[idx+1:], nil
}

// Preceding returns every episode before ep, earliest first.
func Preceding(ep *domain.Episode, episodes []*domain.Episode) ([]*domain.Episode, error) {
	ordered, idx, err := position(ep, episodes)
	if err != nil {
		return nil, err
	}
	if idx < 0 {
		return nil, nil
	}
	return ordered[:idx], nil
}

// daysBetween returns the whole days from the canonical date of e1 to that of
// e2. The result is negative when e2 is earlier.
func daysBetween(e1, e2 *domain.Episode) (float64, error) {
	t1, err := CanonicalDate(e1)
	if err != nil {
		return 0, err
	}
	t2, err := CanonicalDate(e2)
	if err != nil {
		return 0, err
	}
	return math.Round(t2.Sub(t1).Hours() / 24), nil
}

// WithinWindow reports whether e2 starts no more than months months after e1.
// The bound is inclusive and is months*365/12 days, computed so that whole
// day bounds (36 months is 1095 days) are exact. An e2 earlier than e1 is
// always within the window.
func WithinWindow(e1, e2 *domain.Episode, months int) (bool, error) {
	days, err := daysBetween(e1, e2)
	if err != nil {
		return false, err
	}
	return days <= float64(months*365)/12, nil
}

// MonthsBetween returns the gap from e1 to e2 rounded up to whole months.
func MonthsBetween(e1, e2 *domain.Episode) (int, error) {
	days, err := daysBetween(e1, e2)
	if err != nil {
		return 0, err
	}
	return int(math.Ceil(12 * days / 365.0)), nil
}
