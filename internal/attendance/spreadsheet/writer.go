package spreadsheet

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/rollcall/rollcall-backend/internal/attendance/timecalc"
)

// Table is one worksheet of an export.
type Table struct {
	Sheet   string
	Columns []string
	Rows    [][]any
}

// FileName builds the export name "<view>_<DD-MMM-YYYY>.xlsx".
func FileName(view string, at time.Time) string {
	view = strings.NewReplacer(" ", "_", "/", "-").Replace(strings.TrimSpace(view))
	return fmt.Sprintf("%s_%s.xlsx", view, timecalc.FormatDate(at))
}

// Build renders tables into a workbook. The caller closes it.
func Build(tables ...Table) (*excelize.File, error) {
	if len(tables) == 0 {
		return nil, fmt.Errorf("no tables to write")
	}

	f := excelize.NewFile()
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for i, t := range tables {
		name := sheetName(t.Sheet, i)
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				_ = f.Close()
				return nil, err
			}
		} else if _, err := f.NewSheet(name); err != nil {
			_ = f.Close()
			return nil, err
		}

		if err := writeTable(f, name, t, headerStyle); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("write sheet %s: %w", name, err)
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

func writeTable(f *excelize.File, sheet string, t Table, headerStyle int) error {
	header := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	if len(t.Columns) > 0 {
		last, err := excelize.CoordinatesToCellName(len(t.Columns), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
			return err
		}
		lastCol, _ := excelize.ColumnNumberToName(len(t.Columns))
		if err := f.SetColWidth(sheet, "A", lastCol, 16); err != nil {
			return err
		}
	}

	for r, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}
	return nil
}

// sheet names are limited to 31 characters and may not contain []:*?/\
func sheetName(name string, idx int) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '-'
		}
		return r
	}, strings.TrimSpace(name))
	if name == "" {
		name = fmt.Sprintf("Sheet%d", idx+1)
	}
	if len(name) > 31 {
		name = name[:31]
	}
	return name
}

// Write renders tables as .xlsx to w.
func Write(w io.Writer, tables ...Table) error {
	f, err := Build(tables...)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return f.Write(w)
}

// WriteFile renders tables as .xlsx into dir/name and returns the full path.
func WriteFile(dir, name string, tables ...Table) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, name)

	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := Write(out, tables...); err != nil {
		_ = out.Close()
		return "", err
	}
	return path, out.Close()
}
