package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/anonymous123-code/chatApp/internal/auth"
	"github.com/anonymous123-code/chatApp/internal/service"
)

// ChatHandler serves chat lifecycle, membership, and message routes.
type ChatHandler struct {
	chatService *service.ChatService
	logger      *slog.Logger
}

// NewChatHandler creates a ChatHandler.
func NewChatHandler(chatService *service.ChatService, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{chatService: chatService, logger: logger}
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

type createChatResponse struct {
	ID int `json:"id"`
}

type messageIDResponse struct {
	ID int `json:"id"`
}

// HandleCreate creates a new chat owned by the requester.
//
// HTTP: POST /api/chats
func (h *ChatHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	requester, _ := auth.UsernameFromContext(r.Context())

	chatID, err := h.chatService.Create(r.Context(), requester)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, createChatResponse{ID: chatID})
}

// HandleList returns the chats the requester is a member of.
//
// HTTP: GET /api/chats
func (h *ChatHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	requester, _ := auth.UsernameFromContext(r.Context())

	chats, err := h.chatService.ListMine(r.Context(), requester)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, chats)
}

// HandleDelete deletes a chat and everything in it.
//
// HTTP: DELETE /api/chats/{chatID}
func (h *ChatHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	requester, _ := auth.UsernameFromContext(r.Context())
	chatID, ok := chatIDParam(w, r)
	if !ok {
		return
	}

	if err := h.chatService.Delete(r.Context(), chatID, requester); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleMembers returns the chat's membership set.
//
// HTTP: GET /api/chats/{chatID}/members
func (h *ChatHandler) HandleMembers(w http.ResponseWriter, r *http.Request) {
	requester, _ := auth.UsernameFromContext(r.Context())
	chatID, ok := chatIDParam(w, r)
	if !ok {
		return
	}

	members, err := h.chatService.Members(r.Context(), chatID, requester)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, members)
}

// HandleKick removes a member from the chat.
//
// HTTP: DELETE /api/chats/{chatID}/members/{username}
func (h *ChatHandler) HandleKick(w http.ResponseWriter, r *http.Request) {
	requester, _ := auth.UsernameFromContext(r.Context())
	chatID, ok := chatIDParam(w, r)
	if !ok {
		return
	}
	member := r.PathValue("username")

	if err := h.chatService.Kick(r.Context(), chatID, member, requester); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleMessages returns all messages of the chat in order.
//
// HTTP: GET /api/chats/{chatID}/messages
func (h *ChatHandler) HandleMessages(w http.ResponseWriter, r *http.Request) {
	requester, _ := auth.UsernameFromContext(r.Context())
	chatID, ok := chatIDParam(w, r)
	if !ok {
		return
	}

	messages, err := h.chatService.Messages(r.Context(), chatID, requester)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messages)
}

// HandleSend appends a message to the chat.
//
// HTTP: POST /api/chats/{chatID}/messages
// BODY: {"content":"hi"}
func (h *ChatHandler) HandleSend(w http.ResponseWriter, r *http.Request) {
	requester, _ := auth.UsernameFromContext(r.Context())
	chatID, ok := chatIDParam(w, r)
	if !ok {
		return
	}

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	messageID, err := h.chatService.Send(r.Context(), chatID, requester, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, messageIDResponse{ID: messageID})
}

// HandleEditMessage replaces the content of the requester's own message.
//
// HTTP: PUT /api/chats/{chatID}/messages/{messageID}
// BODY: {"content":"edited"}
func (h *ChatHandler) HandleEditMessage(w http.ResponseWriter, r *http.Request) {
	requester, _ := auth.UsernameFromContext(r.Context())
	chatID, ok := chatIDParam(w, r)
	if !ok {
		return
	}
	messageID, ok := messageIDParam(w, r)
	if !ok {
		return
	}

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	if err := h.chatService.EditMessage(r.Context(), chatID, messageID, requester, req.Content); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleDeleteMessage deletes the requester's own message. Positional IDs
// of later messages shift down by one.
//
// HTTP: DELETE /api/chats/{chatID}/messages/{messageID}
func (h *ChatHandler) HandleDeleteMessage(w http.ResponseWriter, r *http.Request) {
	requester, _ := auth.UsernameFromContext(r.Context())
	chatID, ok := chatIDParam(w, r)
	if !ok {
		return
	}
	messageID, ok := messageIDParam(w, r)
	if !ok {
		return
	}

	if err := h.chatService.DeleteMessage(r.Context(), chatID, messageID, requester); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// chatIDParam parses the {chatID} path segment. Writes a 400 and returns
// ok=false on garbage.
func chatIDParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	chatID, err := strconv.Atoi(r.PathValue("chatID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "chat id must be an integer",
		})
		return 0, false
	}
	return chatID, true
}

// messageIDParam parses the {messageID} path segment.
func messageIDParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	messageID, err := strconv.Atoi(r.PathValue("messageID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "message id must be an integer",
		})
		return 0, false
	}
	return messageID, true
}
