package spreadsheet

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/rollcall/rollcall-backend/pkg/errors"
)

func workbookBytes(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		values := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &values))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func TestNormalizeHeader(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Emp. No", "emp no"},
		{"emp_no", "emp no"},
		{"  EMP   NO ", "emp no"},
		{"In-Time", "in time"},
		{"Attendance %", "attendance"},
		{"", ""},
		{"Shift Deviation (Y/N)", "shift deviation y n"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeHeader(tt.in), tt.in)
	}
}

func TestRead_XLSX(t *testing.T) {
	data := workbookBytes(t, [][]any{
		{},
		{"Emp. No", "Employee Name", "Date", "In Time"},
		{"E1", "Asha", "02-Jan-2024", "09:05"},
		{"", "", "", ""},
		{" E2 ", "Ravi", "03-Jan-2024"},
	})

	sheet, err := Read(bytes.NewReader(data), "punches.xlsx")
	require.NoError(t, err)
	assert.Equal(t, []string{"emp no", "employee name", "date", "in time"}, sheet.Headers)
	require.Len(t, sheet.Rows, 2)

	assert.Equal(t, "E1", sheet.Rows[0].Get("employee number", "emp no"))
	assert.Equal(t, "09:05", sheet.Rows[0].Get("In Time"))
	assert.Equal(t, "E2", sheet.Rows[1]["emp no"])
	assert.Equal(t, "", sheet.Rows[1]["in time"], "short rows are padded")

	col, ok := sheet.Column("employee id", "Emp No")
	assert.True(t, ok)
	assert.Equal(t, "emp no", col)

	_, err = sheet.Require("biometric id", "device id")
	var missing *MissingColumnError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "biometric id", missing.Column)
	assert.Equal(t, "missing required column: biometric id", err.Error())
	assert.True(t, errors.Is(err, errors.ErrBadRequest))
}

func TestRead_Rejections(t *testing.T) {
	_, err := Read(strings.NewReader("a,b\n1,2\n"), "punches.csv")
	assert.True(t, errors.Is(err, errors.ErrUnsupported))

	_, err = Read(bytes.NewReader(workbookBytes(t, nil)), "empty.xlsx")
	assert.True(t, errors.Is(err, errors.ErrBadRequest))

	_, err = Read(strings.NewReader("not a workbook"), "broken.xlsx")
	assert.Error(t, err)
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteFile(dir, "master.xlsx", Table{
		Sheet:   "Employees",
		Columns: []string{"Employee Number", "Active"},
		Rows:    [][]any{{"E1", "Yes"}, {"E2", "No"}},
	})
	require.NoError(t, err)

	sheet, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, "No", sheet.Rows[1].Get("active"))

	_, err = ReadFile(filepath.Join(dir, "missing.xlsx"))
	assert.Error(t, err)
}

func TestDateCell(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "02-Jan-2024", want: "02-Jan-2024"},
		{in: "2-jan-2024", want: "02-Jan-2024"},
		{in: "2024-01-02", want: "02-Jan-2024"},
		{in: "02/01/2024", want: "02-Jan-2024"},
		{in: "45293", want: "02-Jan-2024"},
		{in: "someday", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := DateCell(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClockCell(t *testing.T) {
	assert.Equal(t, "09:05", ClockCell("9:05"))
	assert.Equal(t, "18:30", ClockCell("18:30:00"))
	assert.Equal(t, "12:00", ClockCell("0.5"))
	assert.Equal(t, "06:00", ClockCell("0.25"))
	assert.Equal(t, "NA", ClockCell("NA"))
	assert.Equal(t, "", ClockCell("  "))
}

func TestFileName(t *testing.T) {
	at := time.Date(2024, time.January, 31, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, "daily_status_31-Jan-2024.xlsx", FileName("daily_status", at))
	assert.Equal(t, "audit_queue_31-Jan-2024.xlsx", FileName("audit queue", at))
}

func TestBuild(t *testing.T) {
	_, err := Build()
	assert.Error(t, err)

	f, err := Build(
		Table{Sheet: "Present", Columns: []string{"Employee", "Hours"}, Rows: [][]any{{"E1", 9.5}}},
		Table{Sheet: "A very long sheet name that exceeds the limit", Columns: []string{"X"}},
		Table{Sheet: "In/Out", Columns: []string{"Y"}},
	)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{"Present", "A very long sheet name that exc", "In-Out"}, f.GetSheetList())

	header, err := f.GetCellValue("Present", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Employee", header)
	hours, err := f.GetCellValue("Present", "B2")
	require.NoError(t, err)
	assert.Equal(t, "9.5", hours)

	styleID, err := f.GetCellStyle("Present", "B1")
	require.NoError(t, err)
	assert.NotZero(t, styleID, "header cells are styled")
}
