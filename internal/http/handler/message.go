package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Nunes-ND/msg-scheduler/internal/model"
	"github.com/Nunes-ND/msg-scheduler/internal/service"
)

// ScheduleService is the workflow the handlers drive.
type ScheduleService interface {
	Create(ctx context.Context, in service.CreateInput) (model.ScheduledMessage, error)
	ShowStatus(ctx context.Context, id uuid.UUID) (model.ScheduleStatus, error)
	ChangeStatus(ctx context.Context, id uuid.UUID, scheduled bool) (model.ScheduleStatus, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type createScheduleRequest struct {
	MessageType    string `json:"messageType" validate:"required,oneof=EMAIL SMS PUSH WHATSAPP"`
	Message        string `json:"message" validate:"required"`
	Recipient      string `json:"recipient" validate:"required"`
	SchedulingDate string `json:"schedulingDate" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
}

type changeStatusRequest struct {
	Scheduled *bool `json:"scheduled" validate:"required"`
}

// MessageHandler provides HTTP endpoints for scheduled messages.
type MessageHandler struct {
	svc        ScheduleService
	validate   *validator.Validate
	logger     *slog.Logger
	production bool
}

// MessageHandlerOptions configures MessageHandler.
type MessageHandlerOptions struct {
	Logger *slog.Logger
	// Production hides raw error text from 500 responses.
	Production bool
}

// NewMessageHandler builds a MessageHandler.
func NewMessageHandler(svc ScheduleService, opts MessageHandlerOptions) *MessageHandler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &MessageHandler{
		svc:        svc,
		validate:   NewValidator(),
		logger:     logger.With("component", "message_handler"),
		production: opts.Production,
	}
}

// Create handles POST /schedules.
func (h *MessageHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createScheduleRequest
	if err := decodeStrict(r, h.validate, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	msg, err := h.svc.Create(r.Context(), service.CreateInput{
		MessageType:    model.MessageType(req.MessageType),
		Message:        req.Message,
		Recipient:      req.Recipient,
		SchedulingDate: req.SchedulingDate,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, h.logger, http.StatusCreated, msg)
}

// ShowStatus handles GET /schedules/{id}.
func (h *MessageHandler) ShowStatus(w http.ResponseWriter, r *http.Request) {
	id, err := h.pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	status, err := h.svc.ShowStatus(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, status)
}

// ChangeStatus handles PUT /schedules/{id}.
func (h *MessageHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	id, err := h.pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req changeStatusRequest
	if err := decodeStrict(r, h.validate, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	status, err := h.svc.ChangeStatus(r.Context(), id, *req.Scheduled)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, status)
}

// Delete handles DELETE /schedules/{id}.
func (h *MessageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := h.pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *MessageHandler) pathID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "id")
	if err := validateID(h.validate, raw); err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, invalid("id", "uuid", "id must be a UUID")
	}
	return id, nil
}

// writeError is the single place that turns errors into status codes and bodies.
func (h *MessageHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	logger := h.logger.With("method", r.Method, "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()))

	var vErr *validationError
	switch {
	case errors.As(err, &vErr):
		logger.WarnContext(r.Context(), "request rejected", "error", err)
		writeJSON(w, h.logger, http.StatusBadRequest, errorResponse{
			StatusCode: http.StatusBadRequest,
			Error:      http.StatusText(http.StatusBadRequest),
			Message:    invalidInputMessage,
			Details:    vErr.details,
		})
	case errors.Is(err, service.ErrInvalidSchedulingDate):
		logger.InfoContext(r.Context(), "request rejected", "error", err)
		writeJSON(w, h.logger, http.StatusBadRequest, messageResponse{Message: err.Error()})
	case errors.Is(err, service.ErrDuplicateSchedule):
		logger.InfoContext(r.Context(), "request rejected", "error", err)
		writeJSON(w, h.logger, http.StatusConflict, messageResponse{Message: err.Error()})
	case errors.Is(err, service.ErrMessageNotFound):
		logger.InfoContext(r.Context(), "request rejected", "error", err)
		writeJSON(w, h.logger, http.StatusNotFound, messageResponse{Message: err.Error()})
	default:
		logger.ErrorContext(r.Context(), "request failed", "error", err)
		message := err.Error()
		if h.production {
			message = "An unexpected error occurred."
		}
		writeJSON(w, h.logger, http.StatusInternalServerError, errorResponse{
			StatusCode: http.StatusInternalServerError,
			Error:      http.StatusText(http.StatusInternalServerError),
			Message:    message,
		})
	}
}
