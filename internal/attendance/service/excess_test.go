package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rollcall/rollcall-backend/internal/attendance/domain"
	"github.com/rollcall/rollcall-backend/pkg/testutil"
)

func onShift(id string) func(*domain.AttendanceRecord) {
	return func(r *domain.AttendanceRecord) { r.ShiftID = id }
}

func withPunches(in, out string) func(*domain.AttendanceRecord) {
	return func(r *domain.AttendanceRecord) {
		r.InTime = in
		r.OutTime = out
	}
}

func TestBandForExcess(t *testing.T) {
	assert.Equal(t, ExcessUnder1h, BandForExcess(1))
	assert.Equal(t, ExcessUnder1h, BandForExcess(59))
	assert.Equal(t, Excess1To2h, BandForExcess(60))
	assert.Equal(t, Excess2To4h, BandForExcess(120))
	assert.Equal(t, Excess4hOrMore, BandForExcess(240))
}

func TestExcessMinutes(t *testing.T) {
	gen := generalShift()
	night := domain.Shift{ID: "NIGHT", Start: "22:00", End: "06:00"}
	f := testutil.NewFixtureFactory()

	tests := []struct {
		name   string
		rec    domain.AttendanceRecord
		shift  domain.Shift
		want   int
		kind   ExcessKind
		wantOK bool
	}{
		{"stayed late", f.Record("E1", "02-Jan-2024", domain.StatusPresent, withPunches("09:00", "18:30")), gen, 30, ExcessPresent, true},
		{"left on time", f.Record("E1", "02-Jan-2024", domain.StatusPresent, withPunches("09:00", "18:00")), gen, 0, ExcessPresent, false},
		{"left early", f.Record("E1", "02-Jan-2024", domain.StatusPresent, withPunches("09:00", "17:00")), gen, -60, ExcessPresent, false},
		{"worked past midnight", f.Record("E1", "02-Jan-2024", domain.StatusPresent, withPunches("09:00", "01:00")), gen, 420, ExcessPresent, true},
		{"night shift overstay", f.Record("E1", "02-Jan-2024", domain.StatusPresent, withPunches("22:00", "07:30")), night, 90, ExcessPresent, true},
		{"worked off from shift start", f.Record("E1", "07-Jan-2024", domain.StatusWorkedOff, withPunches("08:00", "14:00")), gen, 300, ExcessWorkedOff, true},
		{"no out punch", f.Record("E1", "02-Jan-2024", domain.StatusPresent, withPunches("09:00", "")), gen, 0, "", false},
		{"absent is ignored", f.Record("E1", "02-Jan-2024", domain.StatusAbsent), gen, 0, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, kind, ok := ExcessMinutes(tt.rec, tt.shift)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.kind, kind)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyExcess(t *testing.T) {
	f := testutil.NewFixtureFactory()
	records := []domain.AttendanceRecord{
		f.Record("E1", "02-Jan-2024", domain.StatusPresent, withPunches("09:00", "18:30")),
		f.Record("E1", "03-Jan-2024", domain.StatusPresent, withPunches("09:00", "20:00")),
		f.Record("E1", "04-Jan-2024", domain.StatusPresent, withPunches("09:00", "17:00")),
		f.Record("E1", "07-Jan-2024", domain.StatusWorkedOff, withPunches("09:00", "14:00")),
		f.Record("E1", "14-Jan-2024", domain.StatusWorkedOff, withPunches("08:00", "10:30")),
		f.Record("N1", "02-Jan-2024", domain.StatusPresent, withPunches("22:00", "07:30"), onShift("NIGHT")),
		f.Record("E2", "02-Jan-2024", domain.StatusAbsent),
	}

	got, err := ClassifyExcess(context.Background(), records, newTestShifts(t))
	require.NoError(t, err)
	assert.Len(t, got, 8)

	assert.Len(t, got[ExcessKey{ExcessPresent, ExcessUnder1h}], 1)
	assert.Len(t, got[ExcessKey{ExcessPresent, Excess2To4h}], 1)
	assert.Empty(t, got[ExcessKey{ExcessPresent, Excess4hOrMore}])
	assert.Len(t, got[ExcessKey{ExcessWorkedOff, Excess4hOrMore}], 1)
	assert.Len(t, got[ExcessKey{ExcessWorkedOff, Excess1To2h}], 1)

	nightBucket := got[ExcessKey{ExcessPresent, Excess1To2h}]
	require.Len(t, nightBucket, 1)
	assert.Equal(t, "NIGHT", nightBucket[0].ShiftID)
	assert.Equal(t, 90, nightBucket[0].ExcessMinutes)
	assert.Equal(t, 1.5, nightBucket[0].ExcessHours)

	assert.Equal(t, "GEN", got[ExcessKey{ExcessPresent, ExcessUnder1h}][0].ShiftID)
}

func TestClassifyExcess_UnknownShiftUsesDefault(t *testing.T) {
	f := testutil.NewFixtureFactory()
	got, err := ClassifyExcess(context.Background(), []domain.AttendanceRecord{
		f.Record("E1", "02-Jan-2024", domain.StatusPresent, withPunches("09:00", "18:45"), onShift("SWING")),
	}, newTestShifts(t))
	require.NoError(t, err)

	entries := got[ExcessKey{ExcessPresent, ExcessUnder1h}]
	require.Len(t, entries, 1)
	assert.Equal(t, "GEN", entries[0].ShiftID)
	assert.Equal(t, 45, entries[0].ExcessMinutes)
}
