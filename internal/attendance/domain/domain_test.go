package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		raw  string
		want Status
	}{
		{"", StatusBlank},
		{"  ", StatusBlank},
		{"Present", StatusPresent},
		{"clean", StatusPresent},
		{"P", StatusPresent},
		{"Absent", StatusAbsent},
		{"LOP", StatusAbsent},
		{"Half Day", StatusHalfDay},
		{"half-day", StatusHalfDay},
		{"P/CL", StatusHalfDay},
		{"WorkedOff", StatusWorkedOff},
		{"Worked Off", StatusWorkedOff},
		{"WeeklyOff", StatusWeeklyOff},
		{"WO", StatusWeeklyOff},
		{"Holiday", StatusHoliday},
		{"Audit", StatusAudit},
		{"Very Late", StatusVeryLate},
		{"Error - Duplicate Punch", StatusError},
		{"SHIFT ERROR", StatusError},
		{"CL", StatusUnclassified},
		{"On Duty", StatusUnclassified},
		{"X/Y", StatusUnclassified},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseStatus(tt.raw))
		})
	}
}

func TestStatus_IsClean(t *testing.T) {
	clean := map[Status]bool{
		StatusPresent:   true,
		StatusWeeklyOff: true,
		StatusHoliday:   true,
		StatusWorkedOff: true,
	}
	for s := StatusBlank; s <= StatusUnclassified; s++ {
		assert.Equal(t, clean[s], s.IsClean(), s.String())
	}
}

func TestFinalStatusSet(t *testing.T) {
	options := FinalStatusOptions()
	assert.Len(t, options, 10+10*9+6)

	for _, s := range []string{"P", "MEL", "P/CL", "A/LOP", "LOP/A", "Present", "HalfDay"} {
		assert.True(t, IsValidFinalStatus(s), s)
	}
	for _, s := range []string{"P/P", "X", "present", "P/CL/A", "Leave"} {
		assert.False(t, IsValidFinalStatus(s), s)
	}

	assert.True(t, IsLeaveCode("ML"))
	assert.False(t, IsLeaveCode("LOP"))
}

func TestEmployeeKey(t *testing.T) {
	assert.Equal(t, "emp001", EmployeeKey("  EMP001 "))
	assert.Equal(t, EmployeeKey("émp-01"), EmployeeKey("ÉMP-01"))

	p := Punch{EmployeeNumber: " E7 ", Date: "01-Jan-2025"}
	assert.Equal(t, RecordKey{Employee: "e7", Date: "01-Jan-2025"}, p.Key())
}

func TestParseWeekday(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Weekday
		wantErr bool
	}{
		{"Sunday", time.Sunday, false},
		{"sat", time.Saturday, false},
		{"0", time.Sunday, false},
		{"6", time.Saturday, false},
		{"7", 0, true},
		{"su", 0, true},
		{"funday", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseWeekday(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	set, err := NewWeeklyOffSet([]string{"sunday", "6"})
	require.NoError(t, err)
	assert.True(t, set.Contains(time.Sunday))
	assert.True(t, set.Contains(time.Saturday))
	assert.False(t, set.Contains(time.Monday))
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory("Worked-Off")
	require.NoError(t, err)
	assert.Equal(t, CategoryWorkedOff, c)

	c, err = ParseCategory("Audit Queue")
	require.NoError(t, err)
	assert.Equal(t, CategoryAudit, c)

	_, err = ParseCategory("overtime")
	assert.ErrorIs(t, err, ErrUnknownCategory)

	assert.Len(t, ReviewCategories, 6)
	assert.Len(t, AllCategories, 7)
}

func TestBandForHours(t *testing.T) {
	assert.Equal(t, BandNone, BandForHours(0))
	assert.Equal(t, BandRed, BandForHours(3.99))
	assert.Equal(t, BandAmber, BandForHours(4))
	assert.Equal(t, BandGreen, BandForHours(7))
	assert.Equal(t, BandGreen, BandForHours(12))
	assert.Equal(t, BandPurple, BandForHours(12.5))
}

func TestAttendanceRecord_StatusLabel(t *testing.T) {
	raw := AttendanceRecord{Punch: Punch{Status: "Error - Duplicate"}, Status: StatusError}
	assert.Equal(t, "Error - Duplicate", raw.StatusLabel())

	resolved := AttendanceRecord{Status: StatusHalfDay}
	assert.Equal(t, "HalfDay", resolved.StatusLabel())

	overridden := AttendanceRecord{Punch: Punch{Status: "Absent"}, Status: StatusPresent}
	assert.Equal(t, "Present", overridden.StatusLabel())
}
