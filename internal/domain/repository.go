package domain

import (
	"context"
	"time"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// ArticleRepository defines persistence operations for articles.
type ArticleRepository interface {
	Create(ctx context.Context, a *Article) error
	ListByAuthor(ctx context.Context, userID int64) ([]*Article, error)
	ListAll(ctx context.Context) ([]*Article, error)
	FileNameForStored(ctx context.Context, storedPath string) (*string, error)
}

// ChatRepository defines persistence operations for two-party chats.
type ChatRepository interface {
	// GetOrCreateDirect returns the single chat between a and b, creating it
	// together with both participant rows in one transaction when missing.
	GetOrCreateDirect(ctx context.Context, a, b int64) (*Chat, error)
	GetByID(ctx context.Context, id int64) (*Chat, error)
	ListForUser(ctx context.Context, userID int64) ([]*ChatActivity, error)
}

// ChatActivity is a chat joined with its most recent message, if any.
type ChatActivity struct {
	Chat        *Chat
	LastMessage *Message
}

// LastActivity is the newest message time, or the chat creation time.
func (a *ChatActivity) LastActivity() time.Time {
	if a.LastMessage != nil {
		return a.LastMessage.CreatedAt
	}
	return a.Chat.CreatedAt
}

// MessageRepository defines persistence operations for messages.
type MessageRepository interface {
	Create(ctx context.Context, m *Message) error
	ListForChat(ctx context.Context, chatID int64) ([]*Message, error)
	FindByStoredFile(ctx context.Context, chatID int64, storedPath string) (*Message, error)
}

// ParticipantRepository defines operations around chat participants.
type ParticipantRepository interface {
	ListParticipants(ctx context.Context, chatID int64) ([]*User, error)
	IsParticipant(ctx context.Context, chatID, userID int64) (bool, error)
}

// ProductRepository defines persistence operations for the catalog.
type ProductRepository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id int64) (*Product, error)
	List(ctx context.Context) ([]*Product, error)
	ListPromotions(ctx context.Context) ([]*Product, error)
}
