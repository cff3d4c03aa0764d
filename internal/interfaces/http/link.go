package http

import (
	"context"
	"net/http"

	"horizon/internal/domain/linking"
	"horizon/internal/domain/user"
	"horizon/internal/shared/middleware"
)

type LinkingService interface {
	CreateLinkToken(ctx context.Context, u *user.User) (string, error)
	ExchangePublicToken(ctx context.Context, publicToken string, u *user.User) (*linking.ExchangeResult, error)
}

type LinkHandler struct {
	linking LinkingService
}

func NewLinkHandler(linking LinkingService) *LinkHandler {
	return &LinkHandler{linking: linking}
}

type LinkTokenResponse struct {
	LinkToken string `json:"linkToken"`
}

type ExchangeRequest struct {
	PublicToken string `json:"publicToken"`
}

func (h *LinkHandler) HandleCreateLinkToken(w http.ResponseWriter, r *http.Request) {
	u, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
		return
	}

	token, err := h.linking.CreateLinkToken(r.Context(), u)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, LinkTokenResponse{LinkToken: token})
}

// HandleExchange runs the bank linking workflow for a public token
// returned by the link widget.
func (h *LinkHandler) HandleExchange(w http.ResponseWriter, r *http.Request) {
	u, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
		return
	}

	var req ExchangeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.linking.ExchangePublicToken(r.Context(), req.PublicToken, u)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
