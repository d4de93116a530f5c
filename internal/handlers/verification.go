package handlers

import (
	"net/http"

	"github.com/vibehub/backend/internal/services"
)

type requestCodeBody struct {
	Email string `json:"email"`
}

type verifyCodeBody struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// VerificationHandler exposes email verification codes. Its routes are
// public.
type VerificationHandler struct {
	verification *services.VerificationService
}

func NewVerificationHandler(verification *services.VerificationService) *VerificationHandler {
	return &VerificationHandler{verification: verification}
}

// RequestCode handles POST /api/auth/codes
func (h *VerificationHandler) RequestCode(w http.ResponseWriter, r *http.Request) {
	var body requestCodeBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.verification.Issue(r.Context(), body.Email); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// VerifyCode handles POST /api/auth/codes/verify
func (h *VerificationHandler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var body verifyCodeBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.verification.Verify(r.Context(), body.Email, body.Code); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"verified": true})
}
