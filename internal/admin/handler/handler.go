// Package handler exposes the admin review surface: listing the duplicate
// notifications the fraud pipeline produced and acknowledging them. The
// caller must already have passed the admin auth middleware.
package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"dupguard/internal/notification/models"
	"dupguard/internal/notification/store"
	id "dupguard/pkg/domain"
	derrors "dupguard/pkg/domain-errors"
	"dupguard/pkg/platform/audit"
	"dupguard/pkg/platform/httputil"
	"dupguard/pkg/platform/sentinel"
	"dupguard/pkg/requestcontext"
)

const defaultListLimit = 50

type Handler struct {
	notifications store.Store
	logger        *slog.Logger
	audit         audit.Publisher
	now           func() time.Time
}

type Option func(*Handler)

func WithAuditPublisher(p audit.Publisher) Option {
	return func(h *Handler) { h.audit = p }
}

func New(notifications store.Store, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		notifications: notifications,
		logger:        logger,
		audit:         audit.NopPublisher{},
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the admin notification endpoints.
func (h *Handler) Register(r chi.Router) {
	r.Get("/admin/notifications", h.HandleList)
	r.Post("/admin/notifications/{notificationID}/read", h.HandleMarkRead)
}

// NotificationResponse is the admin-facing notification view.
type NotificationResponse struct {
	ID                 string    `json:"id"`
	Severity           string    `json:"severity"`
	TargetRole         string    `json:"target_role"`
	Report             string    `json:"report"`
	AccountID          string    `json:"account_id"`
	DuplicateAccountID string    `json:"duplicate_account_id"`
	TriggeredBy        string    `json:"triggered_by"`
	CreatedAt          time.Time `json:"created_at"`
	Read               bool      `json:"read"`
}

// HandleList handles GET /admin/notifications. Query params: unread_only
// (bool) and limit (1..200).
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	unreadOnly := r.URL.Query().Get("unread_only") == "true"

	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 200 {
			httputil.WriteError(w, derrors.New(derrors.CodeInvalidInput, "limit must be an integer between 1 and 200"))
			return
		}
		limit = n
	}

	list, err := h.notifications.List(ctx, unreadOnly, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list notifications", "error", err)
		httputil.WriteError(w, derrors.Wrap(err, derrors.CodeInternal, "list notifications"))
		return
	}

	resp := make([]NotificationResponse, 0, len(list))
	for _, n := range list {
		resp = append(resp, toResponse(n))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"notifications": resp})
}

// HandleMarkRead handles POST /admin/notifications/{notificationID}/read.
// Marking an already-read notification again is a no-op success.
func (h *Handler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	notificationID, err := id.ParseNotificationID(chi.URLParam(r, "notificationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.notifications.MarkRead(ctx, notificationID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			httputil.WriteError(w, derrors.Wrap(err, derrors.CodeNotFound, "notification not found"))
			return
		}
		h.logger.ErrorContext(ctx, "failed to mark notification read", "error", err)
		httputil.WriteError(w, derrors.Wrap(err, derrors.CodeInternal, "mark notification read"))
		return
	}

	h.audit.Emit(ctx, audit.Event{
		Action:         audit.ActionNotificationRead,
		Timestamp:      h.now(),
		NotificationID: notificationID.String(),
		RequestID:      requestcontext.RequestID(ctx),
		AdminSubject:   requestcontext.AdminSubject(ctx),
	})

	w.WriteHeader(http.StatusNoContent)
}

func toResponse(n *models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:                 n.ID.String(),
		Severity:           string(n.Severity),
		TargetRole:         n.TargetRole,
		Report:             n.Report,
		AccountID:          n.AccountID.String(),
		DuplicateAccountID: n.DuplicateAccountID.String(),
		TriggeredBy:        n.TriggeredBy,
		CreatedAt:          n.CreatedAt,
		Read:               n.Read,
	}
}
