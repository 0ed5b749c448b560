package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Nunes-ND/msg-scheduler/internal/model"
	"github.com/Nunes-ND/msg-scheduler/internal/repository"
)

// memStore is an in-memory repository.Store. WithinTx restores a snapshot when fn fails.
type memStore struct {
	mu       sync.Mutex
	rows     map[uuid.UUID]model.ScheduledMessage
	now      func() time.Time
	failWith error

	// insertHook runs before every Insert; used to simulate a racing writer.
	insertHook func(msg *model.ScheduledMessage) error
}

var _ repository.Store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{
		rows: make(map[uuid.UUID]model.ScheduledMessage),
		now:  time.Now,
	}
}

func (m *memStore) WithinTx(ctx context.Context, fn func(repo repository.ScheduleRepository) error) error {
	m.mu.Lock()
	snapshot := make(map[uuid.UUID]model.ScheduledMessage, len(m.rows))
	for k, v := range m.rows {
		snapshot[k] = v
	}
	m.mu.Unlock()

	if err := fn(m); err != nil {
		m.mu.Lock()
		m.rows = snapshot
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *memStore) FindByTuple(_ context.Context, tuple model.Tuple) (*model.ScheduledMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	for _, row := range m.rows {
		if row.Recipient == tuple.Recipient && row.Message == tuple.Message &&
			row.MessageType == tuple.MessageType && row.SchedulingDate.Equal(tuple.SchedulingDate) {
			found := row
			return &found, nil
		}
	}
	return nil, nil
}

func (m *memStore) Insert(_ context.Context, msg *model.ScheduledMessage) (*model.ScheduledMessage, error) {
	if m.insertHook != nil {
		if err := m.insertHook(msg); err != nil {
			return nil, err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	row := *msg
	row.ID = uuid.New()
	row.CreatedAt = m.now()
	row.UpdatedAt = row.CreatedAt
	m.rows[row.ID] = row
	return &row, nil
}

func (m *memStore) FindByID(_ context.Context, id uuid.UUID) (*model.ScheduledMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	row, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (m *memStore) UpdateScheduled(_ context.Context, id uuid.UUID, scheduled bool) (*model.ScheduledMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	row, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	row.Scheduled = scheduled
	row.UpdatedAt = m.now()
	m.rows[id] = row
	return &row, nil
}

func (m *memStore) DeleteByID(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return false, m.failWith
	}
	if _, ok := m.rows[id]; !ok {
		return false, nil
	}
	delete(m.rows, id)
	return true, nil
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

// memDeletedIDs is an in-memory DeletedIDs. readErr and writeErr fail lookups
// and marks independently.
type memDeletedIDs struct {
	mu       sync.Mutex
	ids      map[uuid.UUID]bool
	readErr  error
	writeErr error
	marks    int
}

func newMemDeletedIDs() *memDeletedIDs {
	return &memDeletedIDs{ids: make(map[uuid.UUID]bool)}
}

func (d *memDeletedIDs) Mark(_ context.Context, id uuid.UUID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.marks++
	if d.writeErr != nil {
		return d.writeErr
	}
	d.ids[id] = true
	return nil
}

func (d *memDeletedIDs) IsDeleted(_ context.Context, id uuid.UUID) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.readErr != nil {
		return false, d.readErr
	}
	return d.ids[id], nil
}
