package service

import (
	"sort"
	"strings"
	"time"

	"github.com/rollcall/rollcall-backend/internal/attendance/domain"
	"github.com/rollcall/rollcall-backend/internal/attendance/timecalc"
)

// AuditBucket is a triage bucket within the audit queue.
type AuditBucket string

const (
	BucketMissingPunch   AuditBucket = "missing-punch"
	BucketShiftDeviation AuditBucket = "shift-deviation"
	BucketUnder4Hours    AuditBucket = "under-4-hours"
	BucketFourToSeven    AuditBucket = "four-to-seven-hours"
	BucketLateEarly      AuditBucket = "late-early"
	BucketOther          AuditBucket = "other"
)

// AuditBuckets lists the buckets in priority order.
var AuditBuckets = []AuditBucket{
	BucketMissingPunch,
	BucketShiftDeviation,
	BucketUnder4Hours,
	BucketFourToSeven,
	BucketLateEarly,
	BucketOther,
}

// Severity colors repeat late/early offenders.
type Severity string

const (
	SeverityNone  Severity = ""
	SeverityGreen Severity = "green"
	SeverityAmber Severity = "amber"
	SeverityRed   Severity = "red"
)

// SeverityFor maps an occurrence number to green, amber or red (3rd and later).
func SeverityFor(occurrence int) Severity {
	switch {
	case occurrence <= 0:
		return SeverityNone
	case occurrence == 1:
		return SeverityGreen
	case occurrence == 2:
		return SeverityAmber
	default:
		return SeverityRed
	}
}

// AuditEntry is an audit record with its bucket and, for late/early
// records, its occurrence rank within the employee's month.
type AuditEntry struct {
	Record     domain.ReconciliationRecord
	Bucket     AuditBucket
	Occurrence int
	Severity   Severity
}

// AuditBucketFor classifies one record. Deviation text wins over hours, and
// hours win over late/early minutes.
func AuditBucketFor(rec domain.ReconciliationRecord) AuditBucket {
	dev := rec.Deviation
	switch {
	case strings.Contains(dev, "Missing") || strings.Contains(dev, "Punch"):
		return BucketMissingPunch
	case strings.Contains(dev, "Shift") || strings.Contains(dev, "Very Early"):
		return BucketShiftDeviation
	case rec.HoursWorked < 4:
		return BucketUnder4Hours
	case rec.HoursWorked < 7:
		return BucketFourToSeven
	case rec.LateMinutes != 0 || rec.EarlyMinutes != 0:
		return BucketLateEarly
	default:
		return BucketOther
	}
}

// CategorizeAudit buckets audit records and ranks late/early occurrences per
// employee per calendar month by ascending date. Every bucket is returned,
// possibly empty, ordered by date. Records with an unreadable date keep
// occurrence zero.
func CategorizeAudit(records []domain.ReconciliationRecord) map[AuditBucket][]AuditEntry {
	out := make(map[AuditBucket][]AuditEntry, len(AuditBuckets))
	for _, b := range AuditBuckets {
		out[b] = []AuditEntry{}
	}

	dates := make([]time.Time, len(records))
	dated := make([]bool, len(records))
	order := make([]int, len(records))
	for i, rec := range records {
		d, err := timecalc.ParseDate(rec.Date)
		dates[i], dated[i] = d, err == nil
		order[i] = i
	}
	// Undated records go last and are never ranked.
	sort.SliceStable(order, func(a, b int) bool {
		ia, ib := order[a], order[b]
		if dated[ia] != dated[ib] {
			return dated[ia]
		}
		return dates[ia].Before(dates[ib])
	})

	type monthKey struct {
		employee string
		month    string
	}
	seen := make(map[monthKey]int)

	for _, i := range order {
		rec := records[i]
		entry := AuditEntry{Record: rec, Bucket: AuditBucketFor(rec)}
		if entry.Bucket == BucketLateEarly && dated[i] {
			k := monthKey{domain.EmployeeKey(rec.EmployeeNumber), timecalc.MonthKey(dates[i])}
			seen[k]++
			entry.Occurrence = seen[k]
			entry.Severity = SeverityFor(entry.Occurrence)
		}
		out[entry.Bucket] = append(out[entry.Bucket], entry)
	}
	return out
}
