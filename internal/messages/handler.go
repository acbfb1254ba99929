package messages

import (
	"net/http"

	"github.com/nxsg/chat-api/internal/auth"
	"github.com/nxsg/chat-api/internal/httpx"
	"github.com/nxsg/chat-api/internal/models"
)

// EmailHeader is the legacy caller-identity header on message listing.
const EmailHeader = "email"

// Handler holds message HTTP handlers.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// List returns the messages of a chat the caller belongs to.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	caller := callerIdentity(auth.EmailFrom(r.Context()), r.Header.Get(EmailHeader))
	msgs, err := h.svc.ListByChat(r.Context(), httpx.PathParam(r, "chatName"), caller)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, msgs)
}

// Post appends a message from the caller.
func (h *Handler) Post(w http.ResponseWriter, r *http.Request) {
	var req models.PostMessageRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	creator := callerIdentity(auth.EmailFrom(r.Context()), req.Creator)
	if err := h.svc.PostMessage(r.Context(), httpx.PathParam(r, "chatName"), creator, req.Message); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteMessage(w, http.StatusOK, "message added successfully")
}

// callerIdentity trusts the verified token email. A self-declared identity
// is tolerated only when it agrees; otherwise the caller is treated as
// unknown.
func callerIdentity(verified, declared string) string {
	if declared != "" && declared != verified {
		return ""
	}
	return verified
}
