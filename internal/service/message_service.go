package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"devconnect/internal/domain"
	"devconnect/internal/security"
	"devconnect/internal/storage"
	"devconnect/internal/upload"
)

// Notifier pushes an event to every open connection of a user.
type Notifier interface {
	Send(userID int64, event any)
}

// MessageEvent is pushed to both participants after a message is stored.
type MessageEvent struct {
	Type    string       `json:"type"`
	ChatID  int64        `json:"chat_id"`
	Message *MessageView `json:"message"`
}

type MessageService struct {
	chats        domain.ChatRepository
	participants domain.ParticipantRepository
	messages     domain.MessageRepository
	files        FileStore
	encryptor    *security.Encryptor
	notifier     Notifier
	now          func() time.Time
}

func NewMessageService(
	chats domain.ChatRepository,
	participants domain.ParticipantRepository,
	messages domain.MessageRepository,
	files FileStore,
	encryptor *security.Encryptor,
	notifier Notifier,
) *MessageService {
	return &MessageService{
		chats:        chats,
		participants: participants,
		messages:     messages,
		files:        files,
		encryptor:    encryptor,
		notifier:     notifier,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

type AppendMessageInput struct {
	ChatID   int64
	SenderID int64
	Content  string
	File     *Upload
}

// requireParticipant loads the chat and checks userID belongs to it.
func (s *MessageService) requireParticipant(ctx context.Context, chatID, userID int64) (*domain.Chat, error) {
	chat, err := s.chats.GetByID(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("get chat: %w", err)
	}
	if chat == nil {
		return nil, fmt.Errorf("%w: chat %d", domain.ErrNotFound, chatID)
	}
	ok, err := s.participants.IsParticipant(ctx, chatID, userID)
	if err != nil {
		return nil, fmt.Errorf("check participant: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: not a participant of chat %d", domain.ErrForbidden, chatID)
	}
	return chat, nil
}

// ListMessages returns the chat history oldest first with content decrypted.
func (s *MessageService) ListMessages(ctx context.Context, chatID, callerID int64) ([]*domain.Message, error) {
	if _, err := s.requireParticipant(ctx, chatID, callerID); err != nil {
		return nil, err
	}
	msgs, err := s.messages.ListForChat(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	for _, m := range msgs {
		m.Content = s.encryptor.DecryptOptional(m.Content)
	}
	return msgs, nil
}

// AppendMessage stores a message with optional attachment. The returned
// message carries plaintext content. Nothing is stored when it fails.
func (s *MessageService) AppendMessage(ctx context.Context, in AppendMessageInput) (*domain.Message, error) {
	var file *upload.Accepted
	if in.File.present() {
		acc, err := admit(in.File, upload.KindChatFile)
		if err != nil {
			return nil, err
		}
		file = acc
	}

	content := strings.TrimSpace(in.Content)
	if content == "" && file == nil {
		return nil, fmt.Errorf("%w: write a message or attach a file", domain.ErrValidation)
	}

	chat, err := s.requireParticipant(ctx, in.ChatID, in.SenderID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	msg := &domain.Message{
		ChatID:    chat.ID,
		SenderID:  in.SenderID,
		CreatedAt: now,
	}
	var plain *string
	if content != "" {
		plain = &content
	}
	if msg.Content, err = s.encryptor.EncryptOptional(plain); err != nil {
		return nil, fmt.Errorf("encrypt content: %w", err)
	}

	var saved *storage.Stored
	if file != nil {
		saved, err = store(s.files, in.SenderID, now, file, in.File.Body)
		if err != nil {
			return nil, err
		}
		msg.FilePath = strPtr(saved.PublicPath)
		msg.FileName = strPtr(file.Filename)
		msg.MimeType = strPtr(file.MediaType)
	}

	if err := s.messages.Create(ctx, msg); err != nil {
		if saved != nil {
			if rmErr := s.files.Remove(saved.Kind, saved.Name); rmErr != nil {
				log.Printf("message: remove %s: %v", saved.Name, rmErr)
			}
		}
		return nil, fmt.Errorf("create message: %w", err)
	}

	msg.Content = plain
	s.notify(chat, msg)
	return msg, nil
}

// Attachment authorizes callerID to fetch the chat file stored as
// storedName and returns the message that carries it.
func (s *MessageService) Attachment(ctx context.Context, chatID, callerID int64, storedName string) (*domain.Message, error) {
	if _, err := s.requireParticipant(ctx, chatID, callerID); err != nil {
		return nil, err
	}
	m, err := s.messages.FindByStoredFile(ctx, chatID, upload.PublicPath(upload.KindChatFile, storedName))
	if err != nil {
		return nil, fmt.Errorf("find file: %w", err)
	}
	if m == nil {
		return nil, domain.ErrNotFound
	}
	return m, nil
}

func (s *MessageService) notify(chat *domain.Chat, msg *domain.Message) {
	if s.notifier == nil {
		return
	}
	for _, uid := range []int64{chat.UserLowID, chat.UserHighID} {
		s.notifier.Send(uid, MessageEvent{
			Type:    "message",
			ChatID:  chat.ID,
			Message: newMessageView(msg, uid, ""),
		})
	}
}
