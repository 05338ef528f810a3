package repository

import (
	"context"
	"sync"

	"github.com/rollcall/rollcall-backend/internal/attendance/domain"
	"github.com/rollcall/rollcall-backend/pkg/errors"
)

// EmployeeRepository holds the employee master in memory, keyed by
// case-folded employee number. Insertion order is preserved for listings.
type EmployeeRepository struct {
	mu    sync.RWMutex
	byKey map[string]*domain.Employee
	order []string
}

// NewEmployeeRepository creates an empty employee repository
func NewEmployeeRepository() *EmployeeRepository {
	return &EmployeeRepository{
		byKey: make(map[string]*domain.Employee),
	}
}

// Upsert inserts the employee or replaces the stored row with the same key.
// It reports whether a new row was created.
func (r *EmployeeRepository) Upsert(ctx context.Context, emp *domain.Employee) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	key := emp.Key()
	if key == "" {
		return false, errors.BadRequest("employee number is empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *emp
	_, exists := r.byKey[key]
	r.byKey[key] = &cp
	if !exists {
		r.order = append(r.order, key)
	}
	return !exists, nil
}

// GetByNumber looks an employee up case-insensitively.
func (r *EmployeeRepository) GetByNumber(ctx context.Context, number string) (*domain.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	emp, ok := r.byKey[domain.EmployeeKey(number)]
	if !ok {
		return nil, errors.NotFound("employee")
	}
	cp := *emp
	return &cp, nil
}

// FindByBiometricID returns the employee enrolled under a device id.
func (r *EmployeeRepository) FindByBiometricID(ctx context.Context, biometricID string) (*domain.Employee, error) {
	key := domain.EmployeeKey(biometricID)

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, k := range r.order {
		emp := r.byKey[k]
		if emp.BiometricID != "" && domain.EmployeeKey(emp.BiometricID) == key {
			cp := *emp
			return &cp, nil
		}
	}
	return nil, errors.NotFound("employee")
}

// List returns every employee in insertion order.
func (r *EmployeeRepository) List(ctx context.Context) ([]domain.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Employee, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, *r.byKey[k])
	}
	return out, nil
}

// Count returns the number of stored employees.
func (r *EmployeeRepository) Count(ctx context.Context) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Clear discards the whole collection.
func (r *EmployeeRepository) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byKey = make(map[string]*domain.Employee)
	r.order = nil
	return nil
}
