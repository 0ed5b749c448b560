package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Nunes-ND/msg-scheduler/internal/model"
)

// ErrDuplicateTuple is returned by Insert when storage already holds the same tuple.
var ErrDuplicateTuple = errors.New("scheduled message tuple already exists")

// ScheduleRepository defines the database operations required for scheduled messages.
// Lookups return a nil message and nil error when nothing matches.
type ScheduleRepository interface {
	FindByTuple(ctx context.Context, tuple model.Tuple) (*model.ScheduledMessage, error)
	Insert(ctx context.Context, msg *model.ScheduledMessage) (*model.ScheduledMessage, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.ScheduledMessage, error)
	UpdateScheduled(ctx context.Context, id uuid.UUID, scheduled bool) (*model.ScheduledMessage, error)
	DeleteByID(ctx context.Context, id uuid.UUID) (bool, error)
}

// Store is a ScheduleRepository that can also scope several calls to one transaction.
type Store interface {
	ScheduleRepository
	// WithinTx runs fn against a transaction-bound repository. The transaction
	// commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(repo ScheduleRepository) error) error
}
