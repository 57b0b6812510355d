package calendar

import "context"

// =============================================================================
// HOLIDAY CALENDAR - Company holidays excluded from chargeable days
// =============================================================================

// Holiday is a non-working day loaded per calendar year. Immutable once
// published; only the exclusion date matters for day counting.
type Holiday struct {
	ID   string
	Date Date
	Name string
}

// HolidaySet is the lookup form used by the day counter. Built from a
// holiday list; membership is by calendar date only.
type HolidaySet map[Date]struct{}

func NewHolidaySet(holidays []Holiday) HolidaySet {
	set := make(HolidaySet, len(holidays))
	for _, h := range holidays {
		set[h.Date] = struct{}{}
	}
	return set
}

func (s HolidaySet) Contains(d Date) bool {
	_, ok := s[d]
	return ok
}

// HolidayCalendar is the external holidays collaborator. Implementations
// live in the stores; the engine only reads.
type HolidayCalendar interface {
	// HolidaysInRange returns holidays with dates in [from, to].
	HolidaysInRange(ctx context.Context, from, to Date) ([]Holiday, error)
}

// SetInRange loads the holidays in [from, to] into lookup form.
func SetInRange(ctx context.Context, cal HolidayCalendar, from, to Date) (HolidaySet, error) {
	if cal == nil {
		return HolidaySet{}, nil
	}
	holidays, err := cal.HolidaysInRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return NewHolidaySet(holidays), nil
}
