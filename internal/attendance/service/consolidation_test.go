package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rollcall/rollcall-backend/internal/attendance/domain"
	"github.com/rollcall/rollcall-backend/internal/attendance/repository"
	"github.com/rollcall/rollcall-backend/pkg/testutil"
)

func TestConsolidatePunches(t *testing.T) {
	ctx := context.Background()
	f := testutil.NewFixtureFactory()
	repo := repository.NewEmployeeRepository()

	asha := f.Employee(func(e *domain.Employee) { e.Name = "Asha" })
	ravi := f.Employee(func(e *domain.Employee) { e.ShiftID = "NIGHT"; e.BiometricID = "" })
	for _, e := range []domain.Employee{asha, ravi} {
		_, err := repo.Upsert(ctx, &e)
		require.NoError(t, err)
	}

	res, err := ConsolidatePunches(ctx, []domain.RawPunch{
		{BiometricID: asha.BiometricID, Date: "02-Jan-2024", Time: "13:00"},
		{BiometricID: asha.BiometricID, Date: "2024-01-02", Time: "08:55"},
		{BiometricID: asha.BiometricID, Date: "02-Jan-2024", Time: "18:10"},
		{BiometricID: asha.BiometricID, Date: "01-Jan-2024", Time: "09:00"},
		{BiometricID: "e002", Date: "02-Jan-2024", Time: "22:05"},
		{BiometricID: "9999", Date: "02-Jan-2024", Time: "09:00"},
		{BiometricID: "9999", Date: "03-Jan-2024", Time: "09:00"},
		{BiometricID: "7777", Date: "02-Jan-2024", Time: "09:00"},
		{BiometricID: asha.BiometricID, Date: "yesterday", Time: "09:00"},
		{BiometricID: asha.BiometricID, Date: "02-Jan-2024", Time: "late"},
	}, repo)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Invalid)
	assert.Equal(t, []string{"9999", "7777"}, res.Unmatched)
	require.Len(t, res.Punches, 3)

	assert.Equal(t, domain.Punch{EmployeeNumber: "E001", EmployeeName: "Asha", Date: "01-Jan-2024", InTime: "09:00", ShiftID: "GEN"}, res.Punches[0],
		"a single swipe is an in-time only")
	assert.Equal(t, "02-Jan-2024", res.Punches[1].Date)
	assert.Equal(t, "08:55", res.Punches[1].InTime)
	assert.Equal(t, "18:10", res.Punches[1].OutTime)

	assert.Equal(t, "E002", res.Punches[2].EmployeeNumber, "falls back to employee number")
	assert.Equal(t, "NIGHT", res.Punches[2].ShiftID)
}

func TestConsolidatePunches_Empty(t *testing.T) {
	res, err := ConsolidatePunches(context.Background(), nil, repository.NewEmployeeRepository())
	require.NoError(t, err)
	assert.Empty(t, res.Punches)
	assert.Empty(t, res.Unmatched)
	assert.NotNil(t, res.Punches)
}
