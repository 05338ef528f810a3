package service

import (
	"fmt"

	"github.com/rollcall/rollcall-backend/internal/attendance/domain"
	"github.com/rollcall/rollcall-backend/internal/attendance/spreadsheet"
	"github.com/rollcall/rollcall-backend/pkg/errors"
)

var (
	dateAliases         = []string{"date", "attendance date", "punch date", "day"}
	inTimeAliases       = []string{"in time", "in", "first in", "check in", "in punch"}
	outTimeAliases      = []string{"out time", "out", "last out", "check out", "out punch"}
	statusAliases       = []string{"status", "attendance status", "excel status"}
	deviationColAliases = []string{"deviation", "remarks", "exception"}
	leavePendingAliases = []string{"leave pending", "pending leave", "leave applied"}
	swipeTimeAliases    = []string{"time", "punch time", "swipe time", "log time"}
	finalStatusAliases  = []string{"final status", "status", "reviewed status"}
	commentAliases      = []string{"comments", "comment", "remarks", "notes"}
)

func missingColumn(err error) error {
	return errors.Wrap(err, "BAD_REQUEST", "spreadsheet rejected")
}

// ReadPunches converts a daily attendance sheet into punches. Dates are
// normalized to DD-MMM-YYYY and times to HH:MM; a malformed date fails the
// whole sheet.
func ReadPunches(sheet *spreadsheet.Sheet) ([]domain.Punch, error) {
	numberCol, err := sheet.Require(employeeNumberAliases...)
	if err != nil {
		return nil, missingColumn(err)
	}
	dateCol, err := sheet.Require(dateAliases...)
	if err != nil {
		return nil, missingColumn(err)
	}

	punches := make([]domain.Punch, 0, len(sheet.Rows))
	for i, row := range sheet.Rows {
		number := row[numberCol]
		if number == "" {
			continue
		}
		date, err := spreadsheet.DateCell(row[dateCol])
		if err != nil {
			return nil, errors.BadRequest(fmt.Sprintf("row %d: %v", i+2, err))
		}
		leave, _ := ParseFlag(row.Get(leavePendingAliases...))

		punches = append(punches, domain.Punch{
			EmployeeNumber: number,
			EmployeeName:   row.Get(employeeNameAliases...),
			Date:           date,
			InTime:         spreadsheet.ClockCell(row.Get(inTimeAliases...)),
			OutTime:        spreadsheet.ClockCell(row.Get(outTimeAliases...)),
			Status:         row.Get(statusAliases...),
			ShiftID:        row.Get(shiftAliases...),
			Deviation:      row.Get(deviationColAliases...),
			LeavePending:   leave,
		})
	}
	return punches, nil
}

// ReadRawPunches converts a device log sheet into swipes.
func ReadRawPunches(sheet *spreadsheet.Sheet) ([]domain.RawPunch, error) {
	idCol, err := sheet.Require(append(append([]string{}, biometricAliases...), employeeNumberAliases...)...)
	if err != nil {
		return nil, missingColumn(err)
	}
	dateCol, err := sheet.Require(dateAliases...)
	if err != nil {
		return nil, missingColumn(err)
	}
	timeCol, err := sheet.Require(swipeTimeAliases...)
	if err != nil {
		return nil, missingColumn(err)
	}

	out := make([]domain.RawPunch, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		date, err := spreadsheet.DateCell(row[dateCol])
		if err != nil {
			date = row[dateCol]
		}
		out = append(out, domain.RawPunch{
			BiometricID: row[idCol],
			Date:        date,
			Time:        spreadsheet.ClockCell(row[timeCol]),
		})
	}
	return out, nil
}

// ReadOverlay converts a reviewed status sheet into overlay rows. Dates that
// cannot be normalized are kept as written and will not match.
func ReadOverlay(sheet *spreadsheet.Sheet) ([]domain.OverlayRow, error) {
	numberCol, err := sheet.Require(employeeNumberAliases...)
	if err != nil {
		return nil, missingColumn(err)
	}
	dateCol, err := sheet.Require(dateAliases...)
	if err != nil {
		return nil, missingColumn(err)
	}
	if _, err := sheet.Require(finalStatusAliases...); err != nil {
		return nil, missingColumn(err)
	}

	out := make([]domain.OverlayRow, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		date, err := spreadsheet.DateCell(row[dateCol])
		if err != nil {
			date = row[dateCol]
		}
		out = append(out, domain.OverlayRow{
			EmployeeNumber: row[numberCol],
			Date:           date,
			FinalStatus:    row.Get(finalStatusAliases...),
			Comments:       row.Get(commentAliases...),
		})
	}
	return out, nil
}
