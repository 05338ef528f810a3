package domain

import (
	"fmt"
	"strings"
)

// Category names one reconciliation queue.
type Category string

const (
	CategoryAbsent       Category = "absent"
	CategoryPresent      Category = "present"
	CategoryWorkedOff    Category = "workedoff"
	CategoryOffDays      Category = "offdays"
	CategoryErrors       Category = "errors"
	CategoryAudit        Category = "audit"
	CategoryUnclassified Category = "unclassified"
)

// ReviewCategories are the six queues gating finalize, in display order.
var ReviewCategories = []Category{
	CategoryAbsent,
	CategoryPresent,
	CategoryWorkedOff,
	CategoryOffDays,
	CategoryErrors,
	CategoryAudit,
}

// AllCategories includes the unclassified queue.
var AllCategories = append(append([]Category{}, ReviewCategories...), CategoryUnclassified)

// Title returns the human-facing queue name.
func (c Category) Title() string {
	switch c {
	case CategoryAbsent:
		return "Absent"
	case CategoryPresent:
		return "Present"
	case CategoryWorkedOff:
		return "Worked Off"
	case CategoryOffDays:
		return "Off Days"
	case CategoryErrors:
		return "Errors"
	case CategoryAudit:
		return "Audit Queue"
	case CategoryUnclassified:
		return "Unclassified"
	}
	return string(c)
}

// ParseCategory accepts a queue name in any case, with or without separators.
func ParseCategory(s string) (Category, error) {
	key := strings.ToLower(strings.NewReplacer(" ", "", "-", "", "_", "").Replace(strings.TrimSpace(s)))
	for _, c := range AllCategories {
		if string(c) == key {
			return c, nil
		}
	}
	if key == "auditqueue" {
		return CategoryAudit, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}
