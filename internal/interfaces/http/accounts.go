package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"horizon/internal/domain/dashboard"
	"horizon/internal/shared/middleware"
)

type DashboardService interface {
	GetAccounts(ctx context.Context, userID string) (*dashboard.Summary, error)
	GetAccountBySharableID(ctx context.Context, userID, sharableID string) (*dashboard.Account, error)
}

type AccountsHandler struct {
	dashboard DashboardService
}

func NewAccountsHandler(dashboard DashboardService) *AccountsHandler {
	return &AccountsHandler{dashboard: dashboard}
}

// HandleListAccounts returns the user's linked accounts and their totals.
func (h *AccountsHandler) HandleListAccounts(w http.ResponseWriter, r *http.Request) {
	u, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
		return
	}

	summary, err := h.dashboard.GetAccounts(r.Context(), u.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

func (h *AccountsHandler) HandleGetAccount(w http.ResponseWriter, r *http.Request) {
	u, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
		return
	}

	sharableID := chi.URLParam(r, "sharableId")
	if sharableID == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "sharable id is required"})
		return
	}

	account, err := h.dashboard.GetAccountBySharableID(r.Context(), u.ID, sharableID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, account)
}
