package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/rollcall/rollcall-backend/internal/attendance/domain"
	"github.com/rollcall/rollcall-backend/internal/attendance/timecalc"
)

// BiometricLookup maps device ids onto employees.
type BiometricLookup interface {
	FindByBiometricID(ctx context.Context, biometricID string) (*domain.Employee, error)
	GetByNumber(ctx context.Context, number string) (*domain.Employee, error)
}

// ConsolidationResult is the outcome of folding raw swipes into daily punches.
type ConsolidationResult struct {
	Punches []domain.Punch `json:"punches"`
	// Unmatched lists distinct device ids with no employee, in first-seen order.
	Unmatched []string `json:"unmatched"`
	// Invalid counts swipes with an unreadable date or time.
	Invalid int `json:"invalid"`
}

type swipeGroup struct {
	emp   *domain.Employee
	date  time.Time
	times []int
}

// ConsolidatePunches groups raw swipes by employee and date. The earliest
// swipe becomes the in-time and the latest the out-time; a single swipe
// yields an in-time only. Device ids are matched against the biometric id
// first and the employee number second.
func ConsolidatePunches(ctx context.Context, raw []domain.RawPunch, employees BiometricLookup) (*ConsolidationResult, error) {
	res := &ConsolidationResult{Punches: []domain.Punch{}, Unmatched: []string{}}

	groups := make(map[domain.RecordKey]*swipeGroup)
	var order []domain.RecordKey
	resolved := make(map[string]*domain.Employee)
	unmatched := make(map[string]bool)

	for _, sw := range raw {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		norm, err := timecalc.NormalizeDate(sw.Date)
		if err != nil {
			res.Invalid++
			continue
		}
		d, _ := timecalc.ParseDate(norm)
		minutes, ok := timecalc.ParseClock(sw.Time)
		if !ok {
			res.Invalid++
			continue
		}

		id := strings.TrimSpace(sw.BiometricID)
		idKey := domain.EmployeeKey(id)
		emp, seen := resolved[idKey]
		if !seen {
			emp = findByDeviceID(ctx, employees, id)
			resolved[idKey] = emp
		}
		if emp == nil {
			if !unmatched[idKey] {
				unmatched[idKey] = true
				res.Unmatched = append(res.Unmatched, id)
			}
			continue
		}

		key := domain.RecordKey{Employee: emp.Key(), Date: timecalc.FormatDate(d)}
		g, ok := groups[key]
		if !ok {
			g = &swipeGroup{emp: emp, date: d}
			groups[key] = g
			order = append(order, key)
		}
		g.times = append(g.times, minutes)
	}

	sort.SliceStable(order, func(i, j int) bool {
		if order[i].Employee != order[j].Employee {
			return order[i].Employee < order[j].Employee
		}
		return groups[order[i]].date.Before(groups[order[j]].date)
	})

	for _, key := range order {
		g := groups[key]
		sort.Ints(g.times)

		p := domain.Punch{
			EmployeeNumber: g.emp.Number,
			EmployeeName:   g.emp.Name,
			Date:           key.Date,
			InTime:         timecalc.FormatClock(g.times[0]),
			ShiftID:        g.emp.ShiftID,
		}
		if len(g.times) > 1 {
			p.OutTime = timecalc.FormatClock(g.times[len(g.times)-1])
		}
		res.Punches = append(res.Punches, p)
	}
	return res, nil
}

func findByDeviceID(ctx context.Context, employees BiometricLookup, id string) *domain.Employee {
	if id == "" {
		return nil
	}
	if emp, err := employees.FindByBiometricID(ctx, id); err == nil {
		return emp
	}
	if emp, err := employees.GetByNumber(ctx, id); err == nil {
		return emp
	}
	return nil
}
