package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/rollcall/rollcall-backend/internal/attendance/domain"
	"github.com/rollcall/rollcall-backend/pkg/config"
	"github.com/rollcall/rollcall-backend/pkg/errors"
	"github.com/rollcall/rollcall-backend/pkg/validate"
)

// ShiftRepository holds configured shifts in memory
type ShiftRepository struct {
	mu        sync.RWMutex
	shifts    map[string]domain.Shift
	defaultID string
}

// NewShiftRepository creates a shift repository with the given default shift id
func NewShiftRepository(defaultID string) *ShiftRepository {
	return &ShiftRepository{
		shifts:    make(map[string]domain.Shift),
		defaultID: normalizeShiftID(defaultID),
	}
}

// NewShiftRepositoryFromConfig loads and validates the configured shifts.
func NewShiftRepositoryFromConfig(ctx context.Context, shifts []config.ShiftConfig, defaultID string) (*ShiftRepository, error) {
	r := NewShiftRepository(defaultID)
	for _, sc := range shifts {
		shift := domain.Shift{
			ID:                   sc.ID,
			Name:                 sc.Name,
			Start:                sc.Start,
			End:                  sc.End,
			EarlyInGraceMinutes:  sc.EarlyInGraceMinutes,
			LateInGraceMinutes:   sc.LateInGraceMinutes,
			EarlyOutGraceMinutes: sc.EarlyOutGraceMinutes,
			AllowedLateCount:     sc.AllowedLateCount,
		}
		if err := r.Save(ctx, shift); err != nil {
			return nil, err
		}
	}
	if _, err := r.Default(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

// Save validates and stores a shift, replacing one with the same id
func (r *ShiftRepository) Save(ctx context.Context, shift domain.Shift) error {
	if err := validate.Struct(shift); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.shifts[normalizeShiftID(shift.ID)] = shift
	return nil
}

// Get returns a shift by id
func (r *ShiftRepository) Get(ctx context.Context, id string) (*domain.Shift, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	shift, ok := r.shifts[normalizeShiftID(id)]
	if !ok {
		return nil, errors.Wrap(domain.ErrUnknownShift, "NOT_FOUND", "shift "+id+" not found")
	}
	return &shift, nil
}

// Default returns the fallback shift for punches without a shift reference
func (r *ShiftRepository) Default(ctx context.Context) (*domain.Shift, error) {
	return r.Get(ctx, r.defaultID)
}

// Resolve returns the shift with the given id, or the default when id is
// empty or unknown.
func (r *ShiftRepository) Resolve(ctx context.Context, id string) (*domain.Shift, error) {
	if strings.TrimSpace(id) != "" {
		if shift, err := r.Get(ctx, id); err == nil {
			return shift, nil
		}
	}
	return r.Default(ctx)
}

// List returns every shift ordered by id
func (r *ShiftRepository) List(ctx context.Context) []domain.Shift {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Shift, 0, len(r.shifts))
	for _, s := range r.shifts {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func normalizeShiftID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}
