package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rollcall/rollcall-backend/internal/attendance/domain"
	"github.com/rollcall/rollcall-backend/internal/attendance/repository"
	"github.com/rollcall/rollcall-backend/internal/attendance/spreadsheet"
	"github.com/rollcall/rollcall-backend/pkg/errors"
	"github.com/rollcall/rollcall-backend/pkg/logger"
	"github.com/rollcall/rollcall-backend/pkg/testutil"
)

func readWorkbook(t *testing.T, rows [][]string) *spreadsheet.Sheet {
	t.Helper()
	sheet, err := spreadsheet.ReadFile(testutil.WriteWorkbook(t, "upload.xlsx", rows))
	require.NoError(t, err)
	return sheet
}

func TestEmployeeService_Import(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewEmployeeRepository()
	svc := NewEmployeeService(repo, logger.Nop())

	summary, err := svc.Import(ctx, readWorkbook(t, [][]string{
		{"Emp Code", "Name", "Dept", "Bio ID", "Shift", "Late Exempt", "OT Eligible"},
		{"E1", "Asha", "Ops", "1001", "gen", "yes", "N"},
		{"E2", "Ravi", "Finance", "1002", "night", "", ""},
		{"", "Nobody", "Ops", "", "", "", ""},
	}))
	require.NoError(t, err)
	assert.Equal(t, ImportSummary{Added: 2, Skipped: 1}, *summary)

	asha, err := repo.GetByNumber(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, "Asha", asha.Name)
	assert.Equal(t, "GEN", asha.ShiftID)
	assert.True(t, asha.LateExempt)
	assert.False(t, asha.OvertimeEligible)
	assert.True(t, asha.Active, "new employees default to active")

	summary, err = svc.Import(ctx, readWorkbook(t, [][]string{
		{"Employee Number", "Department", "Active"},
		{"e1", "", "No"},
		{"E3", "Sales", ""},
	}))
	require.NoError(t, err)
	assert.Equal(t, ImportSummary{Added: 1, Updated: 1}, *summary)

	asha, err = repo.GetByNumber(ctx, "E1")
	require.NoError(t, err)
	assert.Equal(t, "Ops", asha.Department, "blank cells keep the stored value")
	assert.Equal(t, "Asha", asha.Name)
	assert.False(t, asha.Active)
	assert.True(t, asha.LateExempt)
	assert.Equal(t, 3, repo.Count(ctx))
}

func TestEmployeeService_ImportRejectsSheetWithoutNumberColumn(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewEmployeeRepository()
	svc := NewEmployeeService(repo, logger.Nop())

	_, err := svc.Import(ctx, readWorkbook(t, [][]string{
		{"Name", "Department"},
		{"Asha", "Ops"},
	}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMissingEmployeeColumn))
	assert.Equal(t, "BAD_REQUEST", errors.CodeOf(err))
	assert.Zero(t, repo.Count(ctx), "nothing is written")

	_, err = svc.Import(ctx, nil)
	assert.True(t, errors.Is(err, errors.ErrBadRequest))
}

func TestEmployeeService_Clear(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewEmployeeRepository()
	_, err := repo.Upsert(ctx, &domain.Employee{Number: "E1"})
	require.NoError(t, err)

	require.NoError(t, NewEmployeeService(repo, logger.Nop()).Clear(ctx))
	assert.Zero(t, repo.Count(ctx))
}

func TestParseFlag(t *testing.T) {
	testutil.RunTestCases(t, []testutil.TestCase[string, [2]bool]{
		{Name: "yes", Input: "Yes", Expected: [2]bool{true, true}},
		{Name: "one", Input: "1", Expected: [2]bool{true, true}},
		{Name: "not eligible", Input: " Not Eligible ", Expected: [2]bool{false, true}},
		{Name: "no", Input: "n", Expected: [2]bool{false, true}},
		{Name: "blank", Input: "", Expected: [2]bool{false, false}},
		{Name: "unknown", Input: "maybe", Expected: [2]bool{false, false}},
	}, func(in string) ([2]bool, error) {
		v, ok := ParseFlag(in)
		return [2]bool{v, ok}, nil
	})
}
