package service

import (
	"sync"

	"github.com/rollcall/rollcall-backend/internal/attendance/domain"
)

type toleranceKey struct {
	employee string
	month    string
}

// ToleranceTracker counts borderline late-in and early-out occasions per
// employee per month against the shift's shared AllowedLateCount.
type ToleranceTracker struct {
	mu   sync.Mutex
	used map[toleranceKey]int
}

// NewToleranceTracker creates an empty tracker
func NewToleranceTracker() *ToleranceTracker {
	return &ToleranceTracker{used: make(map[toleranceKey]int)}
}

// Exhausted reports whether the employee has used up the month's allowance.
// Late-exempt employees never exhaust it.
func (t *ToleranceTracker) Exhausted(employee, month string, allowed int, exempt bool) bool {
	if exempt {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.used[toleranceKey{domain.EmployeeKey(employee), month}] >= allowed
}

// Observe consumes one occasion for each tolerated borderline violation in
// the result. Violations inside the shift's grace minutes are free.
func (t *ToleranceTracker) Observe(employee, month string, res ResolveResult, shift domain.Shift, policy Policy) {
	n := 0
	if !res.IsLate && res.LateMinutes > shift.LateInGraceMinutes &&
		IsBorderline(res.LateMinutes, policy.ViolationThresholdMinutes) {
		n++
	}
	if !res.IsEarly && res.EarlyMinutes > shift.EarlyOutGraceMinutes &&
		IsBorderline(res.EarlyMinutes, policy.ViolationThresholdMinutes) {
		n++
	}
	if n == 0 {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.used[toleranceKey{domain.EmployeeKey(employee), month}] += n
}

// Used returns the occasions consumed so far.
func (t *ToleranceTracker) Used(employee, month string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.used[toleranceKey{domain.EmployeeKey(employee), month}]
}

// Reset forgets all counts.
func (t *ToleranceTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.used = make(map[toleranceKey]int)
}
