package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Nunes-ND/msg-scheduler/internal/model"
	"github.com/Nunes-ND/msg-scheduler/internal/repository"
)

var _ repository.Store = (*ScheduleRepository)(nil)

const uniqueViolation = "23505"

const messageColumns = `id, message_type, message, recipient, scheduling_date, scheduled, created_at, updated_at`

const (
	findByTupleQuery = `SELECT ` + messageColumns + ` FROM messages
        WHERE recipient = $1 AND message = $2 AND message_type = $3 AND scheduling_date = $4
        LIMIT 1`

	insertQuery = `INSERT INTO messages (message_type, message, recipient, scheduling_date, scheduled)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING ` + messageColumns

	findByIDQuery = `SELECT ` + messageColumns + ` FROM messages WHERE id = $1 LIMIT 1`

	updateScheduledQuery = `UPDATE messages
        SET scheduled = $2, updated_at = now()
        WHERE id = $1
        RETURNING ` + messageColumns

	deleteByIDQuery = `DELETE FROM messages WHERE id = $1`
)

// DBTX is satisfied by *pgxpool.Pool, pgx.Tx and pgxmock.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Pool is a DBTX that can open transactions.
type Pool interface {
	DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

// ScheduleRepository provides PostgreSQL backed scheduled message operations.
type ScheduleRepository struct {
	pool   Pool
	db     DBTX
	logger *slog.Logger
}

// NewScheduleRepository creates a new repository instance.
func NewScheduleRepository(pool Pool, logger *slog.Logger) *ScheduleRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScheduleRepository{
		pool:   pool,
		db:     pool,
		logger: logger.With("component", "schedule_repository_pg"),
	}
}

// WithinTx runs fn inside a single transaction. The connection is released on
// every exit path, including a panic inside fn.
func (r *ScheduleRepository) WithinTx(ctx context.Context, fn func(repo repository.ScheduleRepository) error) (err error) {
	if r.pool == nil {
		return errors.New("nested transactions are not supported")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				r.logger.ErrorContext(ctx, "rollback failed", "error", rbErr)
			}
		}
	}()

	if err = fn(&ScheduleRepository{db: tx, logger: r.logger}); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// FindByTuple returns the message matching the full uniqueness tuple, if any.
func (r *ScheduleRepository) FindByTuple(ctx context.Context, tuple model.Tuple) (*model.ScheduledMessage, error) {
	row := r.db.QueryRow(ctx, findByTupleQuery,
		tuple.Recipient, tuple.Message, string(tuple.MessageType), tuple.SchedulingDate)

	msg, err := scanMessage(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find by tuple: %w", err)
	}
	return msg, nil
}

// Insert stores msg and returns the row with its generated id and timestamps.
func (r *ScheduleRepository) Insert(ctx context.Context, msg *model.ScheduledMessage) (*model.ScheduledMessage, error) {
	row := r.db.QueryRow(ctx, insertQuery,
		string(msg.MessageType), msg.Message, msg.Recipient, msg.SchedulingDate, msg.Scheduled)

	created, err := scanMessage(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			r.logger.DebugContext(ctx, "insert hit unique constraint", "constraint", pgErr.ConstraintName)
			return nil, repository.ErrDuplicateTuple
		}
		return nil, fmt.Errorf("insert message: %w", err)
	}

	r.logger.DebugContext(ctx, "message inserted", "id", created.ID)
	return created, nil
}

// FindByID looks a message up by its id.
func (r *ScheduleRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ScheduledMessage, error) {
	msg, err := scanMessage(r.db.QueryRow(ctx, findByIDQuery, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find by id: %w", err)
	}
	return msg, nil
}

// UpdateScheduled sets the scheduled flag and refreshes updated_at.
func (r *ScheduleRepository) UpdateScheduled(ctx context.Context, id uuid.UUID, scheduled bool) (*model.ScheduledMessage, error) {
	msg, err := scanMessage(r.db.QueryRow(ctx, updateScheduledQuery, id, scheduled))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update scheduled flag: %w", err)
	}
	return msg, nil
}

// DeleteByID removes a message and reports whether it existed.
func (r *ScheduleRepository) DeleteByID(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, deleteByIDQuery, id)
	if err != nil {
		return false, fmt.Errorf("delete message: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanMessage(row pgx.Row) (*model.ScheduledMessage, error) {
	var (
		msg         model.ScheduledMessage
		messageType string
	)
	if err := row.Scan(
		&msg.ID,
		&messageType,
		&msg.Message,
		&msg.Recipient,
		&msg.SchedulingDate,
		&msg.Scheduled,
		&msg.CreatedAt,
		&msg.UpdatedAt,
	); err != nil {
		return nil, err
	}
	msg.MessageType = model.MessageType(messageType)
	return &msg, nil
}
