package service

import (
	"fmt"
	"time"

	"github.com/rollcall/rollcall-backend/internal/attendance/domain"
	"github.com/rollcall/rollcall-backend/internal/attendance/timecalc"
	"github.com/rollcall/rollcall-backend/pkg/config"
	"github.com/rollcall/rollcall-backend/pkg/validate"
)

// CalendarClass tells the resolver whether a date carries no shift obligation.
type CalendarClass struct {
	WeeklyOff    bool
	Holiday      bool
	HolidayLabel string
}

// IsOff reports whether the date is a weekly off or a holiday.
func (c CalendarClass) IsOff() bool {
	return c.WeeklyOff || c.Holiday
}

// OffStatus returns the status of an unworked off day. Weekly off wins when
// a holiday falls on one.
func (c CalendarClass) OffStatus() domain.Status {
	if c.WeeklyOff {
		return domain.StatusWeeklyOff
	}
	if c.Holiday {
		return domain.StatusHoliday
	}
	return domain.StatusBlank
}

// Calendar classifies dates against the weekly-off set and holiday list.
type Calendar struct {
	weeklyOff domain.WeeklyOffSet
	holidays  map[string]domain.Holiday
}

// NewCalendar builds a calendar. Holiday dates are normalized to DD-MMM-YYYY.
func NewCalendar(weeklyOff domain.WeeklyOffSet, holidays []domain.Holiday) (*Calendar, error) {
	c := &Calendar{
		weeklyOff: weeklyOff,
		holidays:  make(map[string]domain.Holiday, len(holidays)),
	}
	if c.weeklyOff == nil {
		c.weeklyOff = domain.WeeklyOffSet{}
	}

	for _, h := range holidays {
		if err := validate.Struct(h); err != nil {
			return nil, fmt.Errorf("holiday %q: %w", h.Date, err)
		}
		d, err := timecalc.ParseDate(h.Date)
		if err != nil {
			return nil, err
		}
		h.Date = timecalc.FormatDate(d)
		c.holidays[h.Date] = h
	}
	return c, nil
}

// NewCalendarFromConfig builds the calendar from the calendar config section.
func NewCalendarFromConfig(cfg config.CalendarConfig) (*Calendar, error) {
	weeklyOff, err := domain.NewWeeklyOffSet(cfg.WeeklyOff)
	if err != nil {
		return nil, fmt.Errorf("calendar.weekly_off: %w", err)
	}

	holidays := make([]domain.Holiday, 0, len(cfg.Holidays))
	for _, h := range cfg.Holidays {
		holidays = append(holidays, domain.Holiday{Date: h.Date, Label: h.Label})
	}
	return NewCalendar(weeklyOff, holidays)
}

// ClassifyTime classifies a parsed date.
func (c *Calendar) ClassifyTime(t time.Time) CalendarClass {
	class := CalendarClass{WeeklyOff: c.weeklyOff.Contains(t.Weekday())}
	if h, ok := c.holidays[timecalc.FormatDate(t)]; ok {
		class.Holiday = true
		class.HolidayLabel = h.Label
	}
	return class
}

// Classify classifies a DD-MMM-YYYY date.
func (c *Calendar) Classify(date string) (CalendarClass, error) {
	t, err := timecalc.ParseDate(date)
	if err != nil {
		return CalendarClass{}, err
	}
	return c.ClassifyTime(t), nil
}

// Holidays returns the configured holidays keyed by date.
func (c *Calendar) Holidays() map[string]domain.Holiday {
	out := make(map[string]domain.Holiday, len(c.holidays))
	for k, v := range c.holidays {
		out[k] = v
	}
	return out
}
