package chats

import (
	"net/http"

	"github.com/nxsg/chat-api/internal/apperr"
	"github.com/nxsg/chat-api/internal/auth"
	"github.com/nxsg/chat-api/internal/httpx"
	"github.com/nxsg/chat-api/internal/models"
)

// Handler holds chat HTTP handlers.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.GetAll(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.GetByName(r.Context(), httpx.PathParam(r, "chatName"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, c)
}

// Create makes a new chat owned by the caller.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateChatRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	caller := auth.EmailFrom(r.Context())
	if req.Owner != "" && req.Owner != caller {
		httpx.WriteError(w, r, apperr.New(apperr.ErrInvalidInput, "owner must be the authenticated user"))
		return
	}

	invite, err := h.svc.CreateChat(r.Context(), req.ChatName, caller, RequestURL(r))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "chat created",
		"invite":  invite,
	})
}

// InviteLink returns the invite link to the chat owner.
func (h *Handler) InviteLink(w http.ResponseWriter, r *http.Request) {
	invite, err := h.svc.GetInviteLink(r.Context(), httpx.PathParam(r, "chatName"), auth.EmailFrom(r.Context()))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"invite": invite})
}

// AddUser adds the user named in the body to the chat.
func (h *Handler) AddUser(w http.ResponseWriter, r *http.Request) {
	var req models.AddUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	c, err := h.svc.AddUser(r.Context(), httpx.PathParam(r, "chatName"), req.UserName)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, c)
}
