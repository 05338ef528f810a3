package domain

import "strings"

// FullDayCodes are the reviewer-selectable full-day final statuses.
var FullDayCodes = []string{"P", "A", "CL", "PL", "ML", "MEL", "CO", "LOP", "WO", "H"}

// LeaveCodes are the full-day codes that record an approved leave.
var LeaveCodes = []string{"CL", "PL", "ML", "MEL", "CO"}

// longFormStatuses are the values the resolver proposes before review.
var longFormStatuses = []string{"Present", "Absent", "WeeklyOff", "Holiday", "WorkedOff", "HalfDay"}

var finalStatusSet = buildFinalStatusSet()

func buildFinalStatusSet() map[string]struct{} {
	set := make(map[string]struct{}, len(FullDayCodes)*len(FullDayCodes)+len(longFormStatuses))
	for _, code := range FullDayCodes {
		set[code] = struct{}{}
	}
	for _, first := range FullDayCodes {
		for _, second := range FullDayCodes {
			if first != second {
				set[first+"/"+second] = struct{}{}
			}
		}
	}
	for _, s := range longFormStatuses {
		set[s] = struct{}{}
	}
	return set
}

// FinalStatusOptions lists every allowed final status: full-day codes, then
// half-day pairs, then the long forms.
func FinalStatusOptions() []string {
	out := make([]string, 0, len(finalStatusSet))
	out = append(out, FullDayCodes...)
	for _, first := range FullDayCodes {
		for _, second := range FullDayCodes {
			if first != second {
				out = append(out, first+"/"+second)
			}
		}
	}
	return append(out, longFormStatuses...)
}

// IsValidFinalStatus reports whether s belongs to the closed final-status set.
func IsValidFinalStatus(s string) bool {
	_, ok := finalStatusSet[strings.TrimSpace(s)]
	return ok
}

// IsLeaveCode reports whether code is a full-day leave.
func IsLeaveCode(code string) bool {
	for _, c := range LeaveCodes {
		if c == code {
			return true
		}
	}
	return false
}
