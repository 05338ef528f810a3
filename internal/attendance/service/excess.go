package service

import (
	"context"

	"github.com/rollcall/rollcall-backend/internal/attendance/domain"
	"github.com/rollcall/rollcall-backend/internal/attendance/timecalc"
)

// ExcessKind separates overtime on present days from worked-off days.
type ExcessKind string

const (
	ExcessPresent   ExcessKind = "present"
	ExcessWorkedOff ExcessKind = "worked-off"
)

// ExcessBand buckets excess by magnitude.
type ExcessBand string

const (
	ExcessUnder1h  ExcessBand = "under-1h"
	Excess1To2h    ExcessBand = "1-2h"
	Excess2To4h    ExcessBand = "2-4h"
	Excess4hOrMore ExcessBand = "4h-plus"
)

// ExcessBands lists the bands in ascending order.
var ExcessBands = []ExcessBand{ExcessUnder1h, Excess1To2h, Excess2To4h, Excess4hOrMore}

// ExcessKinds lists the kinds in display order.
var ExcessKinds = []ExcessKind{ExcessPresent, ExcessWorkedOff}

// ExcessKey addresses one of the eight display buckets.
type ExcessKey struct {
	Kind ExcessKind
	Band ExcessBand
}

// ExcessEntry is one record with payable excess time.
type ExcessEntry struct {
	Record        domain.AttendanceRecord
	ShiftID       string
	ExcessMinutes int
	ExcessHours   float64
}

// BandForExcess maps excess minutes onto a band.
func BandForExcess(minutes int) ExcessBand {
	switch {
	case minutes < 60:
		return ExcessUnder1h
	case minutes < 120:
		return Excess1To2h
	case minutes < 240:
		return Excess2To4h
	default:
		return Excess4hOrMore
	}
}

// ExcessMinutes computes payable excess for a Present or WorkedOff record.
// Worked-off days pay from shift start to punch out; present days pay only
// past shift end. ok is false when the record yields no positive excess.
func ExcessMinutes(rec domain.AttendanceRecord, shift domain.Shift) (int, ExcessKind, bool) {
	out, hasOut := rec.OutMinutes()
	if !hasOut {
		return 0, "", false
	}
	in, hasIn := rec.InMinutes()
	overnightPunch := hasIn && out < in
	start := shift.StartMinutes()

	switch rec.Status {
	case domain.StatusWorkedOff:
		excess := out - start
		if excess < 0 && overnightPunch {
			excess += timecalc.MinutesPerDay
		}
		return excess, ExcessWorkedOff, excess > 0

	case domain.StatusPresent:
		end := shift.EndMinutes()
		o := out
		if shift.Overnight() {
			if o < start {
				o += timecalc.MinutesPerDay
			}
			end += timecalc.MinutesPerDay
		} else if overnightPunch {
			o += timecalc.MinutesPerDay
		}
		excess := o - end
		return excess, ExcessPresent, excess > 0
	}
	return 0, "", false
}

// ClassifyExcess buckets every record with positive excess into the eight
// (kind, band) buckets. All eight keys are present in the result.
func ClassifyExcess(ctx context.Context, records []domain.AttendanceRecord, shifts ShiftLookup) (map[ExcessKey][]ExcessEntry, error) {
	out := make(map[ExcessKey][]ExcessEntry, len(ExcessKinds)*len(ExcessBands))
	for _, k := range ExcessKinds {
		for _, b := range ExcessBands {
			out[ExcessKey{Kind: k, Band: b}] = []ExcessEntry{}
		}
	}

	for _, rec := range records {
		if rec.Status != domain.StatusPresent && rec.Status != domain.StatusWorkedOff {
			continue
		}
		shift, err := shifts.Resolve(ctx, rec.ShiftID)
		if err != nil {
			return nil, err
		}

		minutes, kind, ok := ExcessMinutes(rec, *shift)
		if !ok {
			continue
		}
		key := ExcessKey{Kind: kind, Band: BandForExcess(minutes)}
		out[key] = append(out[key], ExcessEntry{
			Record:        rec,
			ShiftID:       shift.ID,
			ExcessMinutes: minutes,
			ExcessHours:   timecalc.Hours(minutes),
		})
	}
	return out, nil
}
