package service

import (
	"context"
	"fmt"
	"html/template"
	"time"

	"devconnect/internal/domain"
	"devconnect/internal/markdown"
	"devconnect/internal/security"
	"devconnect/internal/upload"
)

const (
	previewRunes    = 50
	previewEllipsis = "..."
	previewEmpty    = "No messages yet"
	previewFile     = "[file] "
)

// ChatService resolves two-party chats and builds inbox and thread views.
type ChatService struct {
	chats        domain.ChatRepository
	participants domain.ParticipantRepository
	users        domain.UserRepository
	messages     *MessageService
	encryptor    *security.Encryptor
	md           *markdown.Renderer
}

func NewChatService(
	chats domain.ChatRepository,
	participants domain.ParticipantRepository,
	users domain.UserRepository,
	messages *MessageService,
	encryptor *security.Encryptor,
	md *markdown.Renderer,
) *ChatService {
	return &ChatService{
		chats:        chats,
		participants: participants,
		users:        users,
		messages:     messages,
		encryptor:    encryptor,
		md:           md,
	}
}

// MessageView is a message ready for display to one viewer.
type MessageView struct {
	ID         int64             `json:"id"`
	ChatID     int64             `json:"chat_id"`
	SenderID   int64             `json:"sender_id"`
	Content    string            `json:"content"`
	HTML       template.HTML     `json:"html,omitempty"`
	Attachment domain.Attachment `json:"attachment"`
	FileURL    string            `json:"file_url,omitempty"`
	IsOwn      bool              `json:"is_own"`
	CreatedAt  time.Time         `json:"created_at"`
}

func newMessageView(m *domain.Message, viewerID int64, html template.HTML) *MessageView {
	v := &MessageView{
		ID:         m.ID,
		ChatID:     m.ChatID,
		SenderID:   m.SenderID,
		HTML:       html,
		Attachment: m.Attachment(),
		IsOwn:      m.SenderID == viewerID,
		CreatedAt:  m.CreatedAt,
	}
	if m.Content != nil {
		v.Content = *m.Content
	}
	if v.Attachment.Kind != domain.AttachmentNone {
		if name, ok := upload.StoredNameFromPublic(upload.KindChatFile, v.Attachment.Path); ok {
			v.FileURL = fmt.Sprintf("/chat/%d/files/%s", m.ChatID, name)
		}
	}
	return v
}

// Thread is one chat as seen by a participant.
type Thread struct {
	Chat        *domain.Chat   `json:"chat"`
	Counterpart *domain.User   `json:"other_user"`
	Messages    []*MessageView `json:"messages"`
}

// GetOrCreateChat returns the single chat between callerID and otherID,
// creating it on first use. Calling it with the pair in either order yields
// the same chat.
func (s *ChatService) GetOrCreateChat(ctx context.Context, callerID, otherID int64) (*domain.Chat, error) {
	if callerID == otherID {
		return nil, fmt.Errorf("%w: cannot start a chat with yourself", domain.ErrInvalidOperation)
	}
	other, err := s.users.GetByID(ctx, otherID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if other == nil {
		return nil, fmt.Errorf("%w: user %d", domain.ErrNotFound, otherID)
	}
	chat, err := s.chats.GetOrCreateDirect(ctx, callerID, otherID)
	if err != nil {
		return nil, fmt.Errorf("resolve chat: %w", err)
	}
	return chat, nil
}

func (s *ChatService) StartChatWithUsername(ctx context.Context, callerID int64, username string) (*domain.Chat, error) {
	other, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if other == nil {
		return nil, fmt.Errorf("%w: user %q", domain.ErrNotFound, username)
	}
	return s.GetOrCreateChat(ctx, callerID, other.ID)
}

// ListChatsForUser builds the inbox, most recently active chat first.
func (s *ChatService) ListChatsForUser(ctx context.Context, userID int64) ([]domain.ChatSummary, error) {
	list, err := s.chats.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	users := map[int64]*domain.User{}
	out := make([]domain.ChatSummary, 0, len(list))
	for _, a := range list {
		otherID := a.Chat.Counterpart(userID)
		other, ok := users[otherID]
		if !ok {
			other, err = s.users.GetByID(ctx, otherID)
			if err != nil {
				return nil, fmt.Errorf("get user: %w", err)
			}
			users[otherID] = other
		}
		if other == nil {
			continue
		}
		out = append(out, domain.ChatSummary{
			Chat:         a.Chat,
			Counterpart:  other,
			Preview:      s.preview(a.LastMessage),
			LastActivity: a.LastActivity(),
		})
	}
	return out, nil
}

func (s *ChatService) preview(m *domain.Message) string {
	if m == nil {
		return previewEmpty
	}
	if content := s.encryptor.DecryptOptional(m.Content); content != nil && *content != "" {
		return Truncate(*content, previewRunes)
	}
	if m.FileName != nil {
		return previewFile + *m.FileName
	}
	return previewEmpty
}

// Truncate shortens s to n runes, marking the cut with an ellipsis.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + previewEllipsis
}

// GetThread loads a chat for one of its participants.
func (s *ChatService) GetThread(ctx context.Context, chatID, callerID int64) (*Thread, error) {
	msgs, err := s.messages.ListMessages(ctx, chatID, callerID)
	if err != nil {
		return nil, err
	}
	chat, err := s.chats.GetByID(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("get chat: %w", err)
	}
	if chat == nil {
		return nil, domain.ErrNotFound
	}
	members, err := s.participants.ListParticipants(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	var other *domain.User
	for _, u := range members {
		if u.ID != callerID {
			other = u
		}
	}

	views := make([]*MessageView, 0, len(msgs))
	for _, m := range msgs {
		var html template.HTML
		if m.Content != nil {
			html = s.md.Render(ctx, *m.Content)
		}
		views = append(views, newMessageView(m, callerID, html))
	}
	return &Thread{Chat: chat, Counterpart: other, Messages: views}, nil
}
