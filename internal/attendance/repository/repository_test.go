package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rollcall/rollcall-backend/internal/attendance/domain"
	"github.com/rollcall/rollcall-backend/internal/attendance/repository"
	"github.com/rollcall/rollcall-backend/pkg/config"
	"github.com/rollcall/rollcall-backend/pkg/errors"
)

func TestEmployeeRepository_Upsert(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewEmployeeRepository()

	created, err := repo.Upsert(ctx, &domain.Employee{Number: "EMP001", Name: "Asha"})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.Upsert(ctx, &domain.Employee{Number: " emp001 ", Name: "Asha Rao"})
	require.NoError(t, err)
	assert.False(t, created, "case-folded number updates the same row")

	emp, err := repo.GetByNumber(ctx, "Emp001")
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", emp.Name)
	assert.Equal(t, 1, repo.Count(ctx))

	_, err = repo.Upsert(ctx, &domain.Employee{Number: "  "})
	assert.True(t, errors.Is(err, errors.ErrBadRequest))
}

func TestEmployeeRepository_ListAndClear(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewEmployeeRepository()

	for _, n := range []string{"B2", "A1", "C3"} {
		_, err := repo.Upsert(ctx, &domain.Employee{Number: n, BiometricID: "bio-" + n})
		require.NoError(t, err)
	}

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "B2", list[0].Number)
	assert.Equal(t, "C3", list[2].Number)

	emp, err := repo.FindByBiometricID(ctx, "BIO-A1")
	require.NoError(t, err)
	assert.Equal(t, "A1", emp.Number)

	_, err = repo.FindByBiometricID(ctx, "bio-Z9")
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	require.NoError(t, repo.Clear(ctx))
	assert.Equal(t, 0, repo.Count(ctx))
	_, err = repo.GetByNumber(ctx, "A1")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestEmployeeRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewEmployeeRepository()
	_, err := repo.Upsert(ctx, &domain.Employee{Number: "E1", Name: "Original"})
	require.NoError(t, err)

	emp, err := repo.GetByNumber(ctx, "E1")
	require.NoError(t, err)
	emp.Name = "Mutated"

	again, err := repo.GetByNumber(ctx, "E1")
	require.NoError(t, err)
	assert.Equal(t, "Original", again.Name)
}

func TestShiftRepository(t *testing.T) {
	ctx := context.Background()

	repo, err := repository.NewShiftRepositoryFromConfig(ctx, []config.ShiftConfig{
		{ID: "GEN", Start: "09:00", End: "18:00", AllowedLateCount: 3},
		{ID: "night", Start: "22:00", End: "06:00"},
	}, "gen")
	require.NoError(t, err)

	shift, err := repo.Get(ctx, "NIGHT")
	require.NoError(t, err)
	assert.True(t, shift.Overnight())

	shift, err = repo.Resolve(ctx, "unknown")
	require.NoError(t, err)
	assert.Equal(t, "GEN", shift.ID)

	shift, err = repo.Resolve(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 540, shift.StartMinutes())

	assert.Len(t, repo.List(ctx), 2)

	_, err = repo.Get(ctx, "SPLIT")
	assert.ErrorIs(t, err, domain.ErrUnknownShift)
}

func TestShiftRepository_Validation(t *testing.T) {
	ctx := context.Background()

	_, err := repository.NewShiftRepositoryFromConfig(ctx, []config.ShiftConfig{
		{ID: "BAD", Start: "9am", End: "18:00"},
	}, "BAD")
	assert.True(t, errors.Is(err, errors.ErrValidation))

	_, err = repository.NewShiftRepositoryFromConfig(ctx, []config.ShiftConfig{
		{ID: "GEN", Start: "09:00", End: "18:00"},
	}, "OTHER")
	assert.ErrorIs(t, err, domain.ErrUnknownShift)
}
