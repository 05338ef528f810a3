// Package spreadsheet reads uploaded workbooks into generic key-value rows and
// writes report tables as styled .xlsx files.
package spreadsheet

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"github.com/rollcall/rollcall-backend/internal/attendance/timecalc"
	"github.com/rollcall/rollcall-backend/pkg/errors"
)

const maxXLSRows = 100000

// Row maps normalized header names to trimmed cell values.
type Row map[string]string

// Get returns the first non-empty value among the given column aliases.
func (r Row) Get(aliases ...string) string {
	for _, a := range aliases {
		if v := r[NormalizeHeader(a)]; v != "" {
			return v
		}
	}
	return ""
}

// Sheet is a header row plus data rows.
type Sheet struct {
	Headers []string
	Rows    []Row
}

// MissingColumnError reports a required column absent from the header row.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return "missing required column: " + e.Column
}

// Is makes a missing column match errors.ErrBadRequest.
func (e *MissingColumnError) Is(target error) bool {
	return target == errors.ErrBadRequest
}

// Column returns the first alias present in the header row.
func (s *Sheet) Column(aliases ...string) (string, bool) {
	for _, a := range aliases {
		n := NormalizeHeader(a)
		for _, h := range s.Headers {
			if h == n {
				return n, true
			}
		}
	}
	return "", false
}

// Require returns a *MissingColumnError naming the first alias when none of
// the aliases is present.
func (s *Sheet) Require(aliases ...string) (string, error) {
	col, ok := s.Column(aliases...)
	if !ok {
		name := ""
		if len(aliases) > 0 {
			name = aliases[0]
		}
		return "", &MissingColumnError{Column: name}
	}
	return col, nil
}

// NormalizeHeader lower-cases a header and collapses punctuation and spacing
// so "Emp. No", "emp_no" and "EMP NO" compare equal.
func NormalizeHeader(header string) string {
	var b strings.Builder
	space := false
	for _, r := range strings.ToLower(strings.TrimSpace(header)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteRune(r)
			space = false
			continue
		}
		space = true
	}
	return b.String()
}

// ReadFile reads the first worksheet of an .xlsx or .xls file.
func ReadFile(path string) (*Sheet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f, filepath.Base(path))
}

// Read parses a workbook. The file name's extension selects the format.
func Read(reader io.Reader, filename string) (*Sheet, error) {
	rows, err := readRows(reader, filename)
	if err != nil {
		return nil, err
	}
	return toSheet(rows)
}

func readRows(reader io.Reader, filename string) ([][]string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".xls":
		workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
		if err != nil {
			return nil, errors.Wrap(err, "BAD_REQUEST", "cannot read "+filename)
		}
		if workbook.NumSheets() == 0 {
			return nil, errors.BadRequest("no worksheet found in " + filename)
		}
		if workbook.NumSheets() > 1 {
			return nil, errors.BadRequest("multiple worksheets found in " + filename + "; upload a single sheet")
		}
		return workbook.ReadAllCells(maxXLSRows), nil

	case ".xlsx", ".xlsm":
		file, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, errors.Wrap(err, "BAD_REQUEST", "cannot read "+filename)
		}
		defer func() { _ = file.Close() }()

		sheetName := file.GetSheetName(0)
		if sheetName == "" {
			return nil, errors.BadRequest("no worksheet found in " + filename)
		}
		return file.GetRows(sheetName)

	default:
		return nil, errors.Unsupported(fmt.Sprintf("unsupported spreadsheet type %q", ext))
	}
}

func toSheet(rows [][]string) (*Sheet, error) {
	// skip leading blank rows
	for len(rows) > 0 && blankRow(rows[0]) {
		rows = rows[1:]
	}
	if len(rows) == 0 {
		return nil, errors.BadRequest("worksheet is empty")
	}

	sheet := &Sheet{Headers: make([]string, len(rows[0]))}
	for i, h := range rows[0] {
		sheet.Headers[i] = NormalizeHeader(h)
	}

	for _, raw := range rows[1:] {
		if blankRow(raw) {
			continue
		}
		row := make(Row, len(sheet.Headers))
		for i, h := range sheet.Headers {
			if h == "" {
				continue
			}
			if _, dup := row[h]; dup {
				continue
			}
			row[h] = cellValue(raw, i)
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	return sheet, nil
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// DateCell normalizes a date cell to DD-MMM-YYYY. Excel serial numbers are
// converted; other text is parsed with the accepted date layouts.
func DateCell(value string) (string, error) {
	value = strings.TrimSpace(value)
	if serial, err := strconv.ParseFloat(value, 64); err == nil && serial >= 1 && serial < 2958466 {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return "", fmt.Errorf("invalid date serial %q: %w", value, err)
		}
		return timecalc.FormatDate(t), nil
	}
	return timecalc.NormalizeDate(value)
}

// ClockCell normalizes a time cell to HH:MM. Day fractions written by Excel
// are converted; sentinels and text pass through unchanged.
func ClockCell(value string) string {
	value = strings.TrimSpace(value)
	if frac, err := strconv.ParseFloat(value, 64); err == nil && frac >= 0 && frac < 1 {
		minutes := int(frac*timecalc.MinutesPerDay + 0.5)
		return timecalc.FormatClock(minutes)
	}
	if m, ok := timecalc.ParseClock(value); ok {
		return timecalc.FormatClock(m)
	}
	return value
}
