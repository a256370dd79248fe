// mock_storage.go - In-memory storage implementation for testing
package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/logshare/backend/internal/models"
	"github.com/logshare/backend/internal/storage"
)

// MockStore implements storage.Store in memory. Each operation can be made to
// fail by setting the matching *Err field.
type MockStore struct {
	mu      sync.RWMutex
	records map[string]*models.LogRecord
	seq     int

	Limits    storage.Limits
	Retention time.Duration
	Now       func() time.Time

	ExistsErr error
	CreateErr error
	ReadErr   error
	RenewErr  error
	DeleteErr error
	SweepErr  error

	// Calls counts invocations per operation name.
	Calls map[string]int
}

// NewMockStore creates an empty MockStore with default limits.
func NewMockStore() *MockStore {
	return &MockStore{
		records:   make(map[string]*models.LogRecord),
		Limits:    storage.DefaultLimits(),
		Retention: storage.DefaultRetention,
		Now:       time.Now,
		Calls:     make(map[string]int),
	}
}

var _ storage.Store = (*MockStore)(nil)

func (m *MockStore) called(op string) {
	m.Calls[op]++
}

// CallCount returns how often op was invoked.
func (m *MockStore) CallCount(op string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.Calls[op]
}

// Put stores a record directly, bypassing limits.
func (m *MockStore) Put(rec *models.LogRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *rec
	m.records[rec.ID] = &cp
}

// Len returns the number of stored records.
func (m *MockStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

func (m *MockStore) Exists(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.called("exists")

	if m.ExistsErr != nil {
		return false, m.ExistsErr
	}
	_, ok := m.records[id]
	return ok, nil
}

func (m *MockStore) Create(ctx context.Context, body []byte) (*models.LogRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.called("create")

	if err := m.Limits.Check(body); err != nil {
		return nil, err
	}
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}

	m.seq++
	now := m.Now()
	rec := &models.LogRecord{
		ID:             fmt.Sprintf("test%06d", m.seq),
		Body:           append([]byte(nil), body...),
		CreatedAt:      now,
		LastAccessedAt: now,
	}
	m.records[rec.ID] = rec

	cp := *rec
	return &cp, nil
}

func (m *MockStore) Read(ctx context.Context, id string) (*models.LogRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.called("read")

	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	rec, ok := m.records[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (m *MockStore) Renew(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.called("renew")

	if m.RenewErr != nil {
		return m.RenewErr
	}
	if rec, ok := m.records[id]; ok {
		rec.LastAccessedAt = m.Now()
	}
	return nil
}

func (m *MockStore) Delete(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.called("delete")

	if m.DeleteErr != nil {
		return false, m.DeleteErr
	}
	_, ok := m.records[id]
	delete(m.records, id)
	return ok, nil
}

func (m *MockStore) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.called("sweep")

	if m.SweepErr != nil {
		return 0, m.SweepErr
	}
	removed := 0
	for id, rec := range m.records {
		if now.Sub(rec.LastAccessedAt) > m.Retention {
			delete(m.records, id)
			removed++
		}
	}
	return removed, nil
}

func (m *MockStore) Close() error {
	return nil
}
