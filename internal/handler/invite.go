package handler

import (
	"log/slog"
	"net/http"

	"github.com/anonymous123-code/chatApp/internal/auth"
	"github.com/anonymous123-code/chatApp/internal/service"
)

// InviteHandler serves invite generation, listing, redemption, and deletion.
type InviteHandler struct {
	inviteService *service.InviteService
	logger        *slog.Logger
}

// NewInviteHandler creates an InviteHandler.
func NewInviteHandler(inviteService *service.InviteService, logger *slog.Logger) *InviteHandler {
	return &InviteHandler{inviteService: inviteService, logger: logger}
}

type inviteResponse struct {
	Invite string `json:"invite"`
}

type redeemResponse struct {
	ChatID int `json:"chat_id"`
}

// HandleGenerate creates a new invite code for the chat.
//
// HTTP: POST /api/chats/{chatID}/invite
func (h *InviteHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	requester, _ := auth.UsernameFromContext(r.Context())
	chatID, ok := chatIDParam(w, r)
	if !ok {
		return
	}

	code, err := h.inviteService.Generate(r.Context(), chatID, requester)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, inviteResponse{Invite: code})
}

// HandleList returns all live invite codes of the chat.
//
// HTTP: GET /api/chats/{chatID}/invites
func (h *InviteHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	requester, _ := auth.UsernameFromContext(r.Context())
	chatID, ok := chatIDParam(w, r)
	if !ok {
		return
	}

	codes, err := h.inviteService.List(r.Context(), chatID, requester)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, codes)
}

// HandleRedeem joins the requester to the invite's chat. The invite stays
// live afterwards (multi-use).
//
// HTTP: POST /api/invites/{code}
func (h *InviteHandler) HandleRedeem(w http.ResponseWriter, r *http.Request) {
	requester, _ := auth.UsernameFromContext(r.Context())
	code := r.PathValue("code")

	chatID, err := h.inviteService.Redeem(r.Context(), code, requester)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, redeemResponse{ChatID: chatID})
}

// HandleDelete removes an invite code.
//
// HTTP: DELETE /api/invites/{code}
func (h *InviteHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	requester, _ := auth.UsernameFromContext(r.Context())
	code := r.PathValue("code")

	if err := h.inviteService.Delete(r.Context(), code, requester); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
