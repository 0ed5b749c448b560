package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Nunes-ND/msg-scheduler/internal/model"
	"github.com/Nunes-ND/msg-scheduler/internal/repository"
)

// DeletedIDs is an optional record of ids whose message was deleted. Ids are
// never reused, so a marker is never stale; storage stays authoritative for
// everything else.
type DeletedIDs interface {
	Mark(ctx context.Context, id uuid.UUID) error
	IsDeleted(ctx context.Context, id uuid.UUID) (bool, error)
}

// SchedulerService validates and records scheduling requests. It never sends anything.
type SchedulerService struct {
	deps   dependencies
	now    func() time.Time
	logger *slog.Logger
}

type dependencies struct {
	store   repository.Store
	deleted DeletedIDs
}

// Dependencies groups constructor requirements for SchedulerService. Deleted may be nil.
type Dependencies struct {
	Store   repository.Store
	Deleted DeletedIDs
}

// SchedulerServiceOptions configures SchedulerService.
type SchedulerServiceOptions struct {
	Now    func() time.Time
	Logger *slog.Logger
}

// CreateInput is a scheduling request already checked for shape by the caller.
type CreateInput struct {
	MessageType    model.MessageType
	Message        string
	Recipient      string
	SchedulingDate string
}

// NewSchedulerService builds a SchedulerService.
func NewSchedulerService(deps Dependencies, opts SchedulerServiceOptions) *SchedulerService {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &SchedulerService{
		deps: dependencies{
			store:   deps.Store,
			deleted: deps.Deleted,
		},
		now:    now,
		logger: logger.With("component", "scheduler_service"),
	}
}

// ParseSchedulingDate parses an RFC 3339 timestamp, fractional seconds allowed,
// truncated to the microsecond precision PostgreSQL keeps.
func ParseSchedulingDate(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, err
	}
	return t.Truncate(time.Microsecond), nil
}

// Create stores a new scheduled message unless the date is not in the future
// or the same tuple is already stored.
func (s *SchedulerService) Create(ctx context.Context, in CreateInput) (model.ScheduledMessage, error) {
	date, err := ParseSchedulingDate(in.SchedulingDate)
	if err != nil {
		return model.ScheduledMessage{}, fmt.Errorf("parse scheduling date: %w", err)
	}

	if !date.After(s.now()) {
		return model.ScheduledMessage{}, ErrInvalidSchedulingDate
	}

	pending := &model.ScheduledMessage{
		MessageType:    in.MessageType,
		Message:        in.Message,
		Recipient:      in.Recipient,
		SchedulingDate: date,
		Scheduled:      true,
	}

	var created *model.ScheduledMessage
	err = s.deps.store.WithinTx(ctx, func(repo repository.ScheduleRepository) error {
		existing, err := repo.FindByTuple(ctx, pending.Tuple())
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrDuplicateSchedule
		}

		created, err = repo.Insert(ctx, pending)
		return err
	})
	if errors.Is(err, repository.ErrDuplicateTuple) {
		// A concurrent request inserted the same tuple between our check and insert.
		return model.ScheduledMessage{}, ErrDuplicateSchedule
	}
	if err != nil {
		if errors.Is(err, ErrDuplicateSchedule) {
			return model.ScheduledMessage{}, err
		}
		return model.ScheduledMessage{}, fmt.Errorf("create scheduled message: %w", err)
	}

	s.logger.InfoContext(ctx, "message scheduled", "id", created.ID, "message_type", created.MessageType)
	return *created, nil
}

// ShowStatus returns the id and scheduled flag of a message.
func (s *SchedulerService) ShowStatus(ctx context.Context, id uuid.UUID) (model.ScheduleStatus, error) {
	if s.knownDeleted(ctx, id) {
		return model.ScheduleStatus{}, ErrMessageNotFound
	}

	msg, err := s.deps.store.FindByID(ctx, id)
	if err != nil {
		return model.ScheduleStatus{}, fmt.Errorf("show status: %w", err)
	}
	if msg == nil {
		return model.ScheduleStatus{}, ErrMessageNotFound
	}
	return msg.Status(), nil
}

// ChangeStatus overwrites the scheduled flag. Any transition, including a no-op, is allowed.
func (s *SchedulerService) ChangeStatus(ctx context.Context, id uuid.UUID, scheduled bool) (model.ScheduleStatus, error) {
	if s.knownDeleted(ctx, id) {
		return model.ScheduleStatus{}, ErrMessageNotFound
	}

	msg, err := s.deps.store.UpdateScheduled(ctx, id, scheduled)
	if err != nil {
		return model.ScheduleStatus{}, fmt.Errorf("change status: %w", err)
	}
	if msg == nil {
		return model.ScheduleStatus{}, ErrMessageNotFound
	}

	s.logger.InfoContext(ctx, "schedule status changed", "id", id, "scheduled", msg.Scheduled)
	return msg.Status(), nil
}

// Delete removes a message. Deleting an unknown id fails with ErrMessageNotFound.
func (s *SchedulerService) Delete(ctx context.Context, id uuid.UUID) error {
	if s.knownDeleted(ctx, id) {
		return ErrMessageNotFound
	}

	existed, err := s.deps.store.DeleteByID(ctx, id)
	if err != nil {
		return fmt.Errorf("delete scheduled message: %w", err)
	}
	if !existed {
		return ErrMessageNotFound
	}

	s.logger.InfoContext(ctx, "scheduled message deleted", "id", id)
	if s.deps.deleted != nil {
		// A missing marker only costs a storage lookup later.
		if err := s.deps.deleted.Mark(ctx, id); err != nil {
			s.logger.WarnContext(ctx, "deleted id marker write failed", "id", id, "error", err)
		}
	}
	return nil
}

// knownDeleted reports a recorded deletion. Lookup failures fall through to storage.
func (s *SchedulerService) knownDeleted(ctx context.Context, id uuid.UUID) bool {
	if s.deps.deleted == nil {
		return false
	}
	deleted, err := s.deps.deleted.IsDeleted(ctx, id)
	if err != nil {
		s.logger.WarnContext(ctx, "deleted id lookup failed", "id", id, "error", err)
		return false
	}
	return deleted
}
