package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/likeforge/likebot/internal/verification"
)

// Pages returned by the verification callback.
const (
	pageSuccess = "✅ Verification successful. Bot will now process your like."
	pageFailure = "❌ Link expired or already used."
	pageError   = "❌ An error occurred during verification."
)

// VerifyHandler serves the public verification callback. It has no side
// effect beyond flipping the queue entry; fulfillment happens asynchronously
// in the background loop.
type VerifyHandler struct {
	queue *verification.Queue
}

func NewVerifyHandler(queue *verification.Queue) *VerifyHandler {
	return &VerifyHandler{queue: queue}
}

// Verify handles GET /verify/{code}. Expired, used and unknown codes all get
// the same page, so the endpoint does not reveal whether a guessed code exists.
func (h *VerifyHandler) Verify(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	result, err := h.queue.Verify(r.Context(), code)
	if err != nil {
		slog.Error("verification failed", "error", err)
		Text(w, http.StatusInternalServerError, pageError)
		return
	}

	if result == verification.VerifySuccess {
		Text(w, http.StatusOK, pageSuccess)
		return
	}
	Text(w, http.StatusGone, pageFailure)
}
