package reference

import (
	"context"
	"fmt"
	"sync"

	"github.com/turtacn/ecowarn/internal/domain/exposure"
	"github.com/turtacn/ecowarn/pkg/errors"
)

// Source supplies parsed reference tables.  Implementations return an
// ErrCodeReferenceDataMissing error when the requested table does not exist.
type Source interface {
	Load(ctx context.Context, medium exposure.Medium, endpoint exposure.Endpoint) (*Table, error)
}

// HealthChecker is implemented by sources that can report readiness without
// loading a table.
type HealthChecker interface {
	Check(ctx context.Context) error
}

// Missing builds the error returned when a table cannot be found at location.
func Missing(medium exposure.Medium, endpoint exposure.Endpoint, location string) *errors.AppError {
	return errors.New(errors.ErrCodeReferenceDataMissing,
		fmt.Sprintf("missing reference table for %s %s", medium, endpoint)).
		WithDetail(location)
}

// MemorySource serves tables held in memory.  Safe for concurrent use.
type MemorySource struct {
	mu     sync.RWMutex
	tables map[string]*Table
}

// NewMemorySource returns a MemorySource preloaded with tables.
func NewMemorySource(tables ...*Table) *MemorySource {
	m := &MemorySource{tables: make(map[string]*Table, len(tables))}
	for _, t := range tables {
		m.Put(t)
	}
	return m
}

// Put adds or replaces the table for its (medium, endpoint).
func (m *MemorySource) Put(t *Table) {
	m.mu.Lock()
	m.tables[t.Key()] = t
	m.mu.Unlock()
}

// Delete removes the table for (medium, endpoint).
func (m *MemorySource) Delete(medium exposure.Medium, endpoint exposure.Endpoint) {
	m.mu.Lock()
	delete(m.tables, fmt.Sprintf("%s/%s", medium, endpoint))
	m.mu.Unlock()
}

// Load implements Source.
func (m *MemorySource) Load(_ context.Context, medium exposure.Medium, endpoint exposure.Endpoint) (*Table, error) {
	key := fmt.Sprintf("%s/%s", medium, endpoint)
	m.mu.RLock()
	t, ok := m.tables[key]
	m.mu.RUnlock()
	if !ok {
		return nil, Missing(medium, endpoint, "memory:"+key)
	}
	return t, nil
}

// Check implements HealthChecker.
func (m *MemorySource) Check(_ context.Context) error { return nil }

//Personal.AI order the ending
