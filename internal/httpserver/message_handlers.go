package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"devconnect/internal/domain"
	"devconnect/internal/service"
	"devconnect/internal/storage"
	"devconnect/internal/upload"
)

type messageCreateRequest struct {
	Content string `json:"content"`
}

// @Summary      Send a message
// @Description  Form post from the chat page; redirects back to the chat
// @Tags         chats
// @Accept       multipart/form-data
// @Param        chatID  path     int    true  "Chat ID"
// @Param        content formData string false "Message text (Markdown)"
// @Param        file    formData file   false "Attachment"
// @Success      303
// @Router       /chat/{chatID}/send [post]
func handleSendMessage(msgSvc *service.MessageService, flash *Flasher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(r, "chatID")
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid chat id"})
			return
		}
		thread := fmt.Sprintf("/chat/%d", id)

		if err := parseForm(w, r); err != nil {
			flash.Error(w, r, "File is too large (max 10 MB)")
			http.Redirect(w, r, thread, http.StatusSeeOther)
			return
		}
		file, f, err := formUpload(r, "file")
		if err != nil {
			flash.Error(w, r, "Could not read the file")
			http.Redirect(w, r, thread, http.StatusSeeOther)
			return
		}
		defer closeFile(f)

		_, err = msgSvc.AppendMessage(r.Context(), service.AppendMessageInput{
			ChatID:   id,
			SenderID: callerID(r),
			Content:  r.FormValue("content"),
			File:     file,
		})
		switch {
		case err == nil:
			http.Redirect(w, r, thread, http.StatusSeeOther)
		case errors.Is(err, domain.ErrRejectedUpload), errors.Is(err, domain.ErrValidation):
			flash.Error(w, r, publicMessage(err))
			http.Redirect(w, r, thread, http.StatusSeeOther)
		case errors.Is(err, domain.ErrForbidden):
			flash.Error(w, r, "You have no access to this chat")
			http.Redirect(w, r, "/messages", http.StatusSeeOther)
		default:
			writeError(w, r, err)
		}
	}
}

// @Summary      Send a message (API)
// @Description  JSON body {"content": "..."} or a multipart form with content and file
// @Tags         chats
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        chatID path int true "Chat ID"
// @Param        input  body messageCreateRequest false "Message"
// @Success      201  {object}  domain.Message
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/chats/{chatID}/messages [post]
func handleAPICreateMessage(msgSvc *service.MessageService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(r, "chatID")
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid chat id"})
			return
		}

		in := service.AppendMessageInput{ChatID: id, SenderID: callerID(r)}
		if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
			var req messageCreateRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
				return
			}
			in.Content = req.Content
		} else {
			if err := parseForm(w, r); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "could not read form"})
				return
			}
			file, f, err := formUpload(r, "file")
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "could not read file"})
				return
			}
			defer closeFile(f)
			in.Content = r.FormValue("content")
			in.File = file
		}

		msg, err := msgSvc.AppendMessage(r.Context(), in)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"id":         msg.ID,
			"chat_id":    msg.ChatID,
			"sender_id":  msg.SenderID,
			"content":    msg.Content,
			"attachment": msg.Attachment(),
			"created_at": msg.CreatedAt,
		})
	}
}

func handleChatFile(msgSvc *service.MessageService, files *storage.Local) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(r, "chatID")
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid chat id"})
			return
		}
		stored := chi.URLParam(r, "filename")
		msg, err := msgSvc.Attachment(r.Context(), id, callerID(r), stored)
		if err != nil {
			writeError(w, r, err)
			return
		}
		a := msg.Attachment()
		serveStored(w, r, files, upload.KindChatFile, stored, a.Name, a.MediaType, a.Kind != domain.AttachmentImage)
	}
}
