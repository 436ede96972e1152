package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"devconnect/internal/domain"
	"devconnect/internal/service"
)

func handleInbox(chatSvc *service.ChatService, flash *Flasher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chats, err := chatSvc.ListChatsForUser(r.Context(), callerID(r))
		if err != nil {
			writeError(w, r, err)
			return
		}
		renderView(w, r, flash, map[string]any{"chats": chats})
	}
}

func handleThread(chatSvc *service.ChatService, flash *Flasher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(r, "chatID")
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid chat id"})
			return
		}
		thread, err := chatSvc.GetThread(r.Context(), id, callerID(r))
		if err != nil {
			writeError(w, r, err)
			return
		}
		renderView(w, r, flash, map[string]any{"thread": thread})
	}
}

func handleStartChat(chatSvc *service.ChatService, flash *Flasher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chat, err := chatSvc.StartChatWithUsername(r.Context(), callerID(r), chi.URLParam(r, "username"))
		if errors.Is(err, domain.ErrInvalidOperation) {
			flash.Error(w, r, "You cannot message yourself")
			http.Redirect(w, r, "/profile", http.StatusSeeOther)
			return
		}
		if err != nil {
			writeError(w, r, err)
			return
		}
		http.Redirect(w, r, fmt.Sprintf("/chat/%d", chat.ID), http.StatusSeeOther)
	}
}

// @Summary      List chats
// @Description  The caller's chats with previews, most recently active first
// @Tags         chats
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   domain.ChatSummary
// @Failure      401  {object}  map[string]string
// @Router       /api/chats [get]
func handleAPIListChats(chatSvc *service.ChatService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chats, err := chatSvc.ListChatsForUser(r.Context(), callerID(r))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, chats)
	}
}

// @Summary      Chat history
// @Tags         chats
// @Security     BearerAuth
// @Produce      json
// @Param        chatID path int true "Chat ID"
// @Success      200  {object}  service.Thread
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/chats/{chatID}/messages [get]
func handleAPIListMessages(chatSvc *service.ChatService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(r, "chatID")
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid chat id"})
			return
		}
		thread, err := chatSvc.GetThread(r.Context(), id, callerID(r))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, thread)
	}
}

// @Summary      Open a chat
// @Description  Returns the chat with the given user, creating it on first use
// @Tags         chats
// @Security     BearerAuth
// @Produce      json
// @Param        username path string true "Other user"
// @Success      200  {object}  domain.Chat
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/users/{username}/chat [post]
func handleAPIStartChat(chatSvc *service.ChatService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chat, err := chatSvc.StartChatWithUsername(r.Context(), callerID(r), chi.URLParam(r, "username"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, chat)
	}
}
