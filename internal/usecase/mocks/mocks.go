package mocks

import (
	"context"
	"strconv"
	"sync"

	"github.com/finpipe/statement-ledger/internal/domain"
)

// InMemoryRawRepository is an in-memory RawMovementRepository.
// Ids are assigned on append, starting at 1.
type InMemoryRawRepository struct {
	mu     sync.RWMutex
	rows   []*domain.RawMovement
	nextID int64

	AppendBatchFunc func(ctx context.Context, movements []*domain.RawMovement) error
	ListAllFunc     func(ctx context.Context) ([]*domain.RawMovement, error)
}

func NewInMemoryRawRepository() *InMemoryRawRepository {
	return &InMemoryRawRepository{nextID: 1}
}

func (r *InMemoryRawRepository) AppendBatch(ctx context.Context, movements []*domain.RawMovement) error {
	if r.AppendBatchFunc != nil {
		return r.AppendBatchFunc(ctx, movements)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range movements {
		stored := *m
		stored.ID = r.nextID
		r.nextID++
		r.rows = append(r.rows, &stored)
	}
	return nil
}

func (r *InMemoryRawRepository) ListAll(ctx context.Context) ([]*domain.RawMovement, error) {
	if r.ListAllFunc != nil {
		return r.ListAllFunc(ctx)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.RawMovement, len(r.rows))
	copy(out, r.rows)
	return out, nil
}

// Len returns the number of stored rows.
func (r *InMemoryRawRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rows)
}

// InMemoryClassifiedRepository is an append-only ClassifiedMovementRepository.
type InMemoryClassifiedRepository struct {
	mu   sync.RWMutex
	rows []*domain.ClassifiedMovement

	AppendBatchFunc func(ctx context.Context, movements []*domain.ClassifiedMovement) error
}

func NewInMemoryClassifiedRepository() *InMemoryClassifiedRepository {
	return &InMemoryClassifiedRepository{}
}

func (r *InMemoryClassifiedRepository) AppendBatch(ctx context.Context, movements []*domain.ClassifiedMovement) error {
	if r.AppendBatchFunc != nil {
		return r.AppendBatchFunc(ctx, movements)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, movements...)
	return nil
}

// Rows returns a copy of the stored rows.
func (r *InMemoryClassifiedRepository) Rows() []*domain.ClassifiedMovement {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.ClassifiedMovement, len(r.rows))
	copy(out, r.rows)
	return out
}

// StubSchemaManager is a SchemaManager with optional failures.
type StubSchemaManager struct {
	ConnErr   error
	EnsureErr error
}

func (s *StubSchemaManager) CheckConnection(ctx context.Context) error { return s.ConnErr }
func (s *StubSchemaManager) EnsureSchema(ctx context.Context) error    { return s.EnsureErr }

// SequentialIDGenerator returns "run-1", "run-2", ...
type SequentialIDGenerator struct {
	mu sync.Mutex
	n  int
}

func (g *SequentialIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return "run-" + strconv.Itoa(g.n)
}
