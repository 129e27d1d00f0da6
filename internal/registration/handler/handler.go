package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"dupguard/internal/account/models"
	"dupguard/internal/account/store"
	"dupguard/internal/registration"
	id "dupguard/pkg/domain"
	"dupguard/pkg/platform/httputil"
)

// Service defines the interface for registration operations.
type Service interface {
	Register(ctx context.Context, req registration.NewAccount) (*models.Account, error)
	UpdateProfile(ctx context.Context, accountID id.AccountID, update store.ProfileUpdate) (*models.Account, error)
}

// Handler wires provider registration endpoints to the registration service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a registration handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts registration endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/providers", h.HandleRegister)
	r.Patch("/providers/{accountID}", h.HandleUpdateProfile)
}

// RegisterRequest is the POST /providers payload.
type RegisterRequest struct {
	Kind              string `json:"kind"`
	Name              string `json:"name"`
	BankName          string `json:"bank_name,omitempty"`
	BankAccountNumber string `json:"bank_account_number,omitempty"`
	WhatsappNumber    string `json:"whatsapp_number,omitempty"`
	KtpNumber         string `json:"ktp_number,omitempty"`
}

// UpdateProfileRequest is the PATCH /providers/{id} payload; absent fields
// stay unchanged.
type UpdateProfileRequest struct {
	Name              *string `json:"name,omitempty"`
	BankName          *string `json:"bank_name,omitempty"`
	BankAccountNumber *string `json:"bank_account_number,omitempty"`
	WhatsappNumber    *string `json:"whatsapp_number,omitempty"`
	KtpNumber         *string `json:"ktp_number,omitempty"`
}

// AccountResponse is the account view returned to the registrant. Sensitive
// matching fields are echoed back; lifecycle flags show the effect of the
// duplicate check, but the check itself never fails this request.
type AccountResponse struct {
	ID                 string    `json:"id"`
	Kind               string    `json:"kind"`
	Name               string    `json:"name"`
	CreatedAt          time.Time `json:"created_at"`
	BankName           string    `json:"bank_name,omitempty"`
	BankAccountNumber  string    `json:"bank_account_number,omitempty"`
	WhatsappNumber     string    `json:"whatsapp_number,omitempty"`
	KtpNumber          string    `json:"ktp_number,omitempty"`
	IsActive           bool      `json:"is_active"`
	FlaggedForReview   bool      `json:"flagged_for_review"`
	DeactivationReason string    `json:"deactivation_reason,omitempty"`
}

// HandleRegister handles POST /providers.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.DecodeJSON[RegisterRequest](w, r, h.logger)
	if !ok {
		return
	}

	account, err := h.service.Register(ctx, registration.NewAccount{
		Kind:              models.Kind(req.Kind),
		Name:              req.Name,
		BankName:          req.BankName,
		BankAccountNumber: req.BankAccountNumber,
		WhatsappNumber:    req.WhatsappNumber,
		KtpNumber:         req.KtpNumber,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, toResponse(account))
}

// HandleUpdateProfile handles PATCH /providers/{accountID}.
func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountID, err := id.ParseAccountID(chi.URLParam(r, "accountID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeJSON[UpdateProfileRequest](w, r, h.logger)
	if !ok {
		return
	}

	account, err := h.service.UpdateProfile(ctx, accountID, store.ProfileUpdate{
		Name:              req.Name,
		BankName:          req.BankName,
		BankAccountNumber: req.BankAccountNumber,
		WhatsappNumber:    req.WhatsappNumber,
		KtpNumber:         req.KtpNumber,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toResponse(account))
}

func toResponse(account *models.Account) AccountResponse {
	return AccountResponse{
		ID:                 account.ID.String(),
		Kind:               string(account.Kind),
		Name:               account.Name,
		CreatedAt:          account.CreatedAt,
		BankName:           account.BankName,
		BankAccountNumber:  account.BankAccountNumber,
		WhatsappNumber:     account.WhatsappNumber,
		KtpNumber:          account.KtpNumber,
		IsActive:           account.IsActive,
		FlaggedForReview:   account.FlaggedForReview,
		DeactivationReason: account.DeactivationReason,
	}
}
