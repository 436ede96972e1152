package domain

import (
	"strings"
	"time"
)

// User represents a registered member.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Avatar       *string   `db:"avatar" json:"avatar,omitempty"`
	Description  string    `db:"description" json:"description"`
	Skills       []string  `db:"skills" json:"skills"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Article is a user-authored post. Content is Markdown.
type Article struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Title     string    `db:"title" json:"title"`
	Content   string    `db:"content" json:"content"`
	ImagePath *string   `db:"image_path" json:"image_path,omitempty"`
	FilePath  *string   `db:"file_path" json:"file_path,omitempty"`
	FileName  *string   `db:"file_name" json:"file_name,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Chat is a two-party conversation. UserLowID < UserHighID always holds,
// which lets the store keep one row per unordered pair.
type Chat struct {
	ID         int64     `db:"id" json:"id"`
	UserLowID  int64     `db:"user_low_id" json:"-"`
	UserHighID int64     `db:"user_high_id" json:"-"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Counterpart returns the id of the participant that is not userID.
func (c *Chat) Counterpart(userID int64) int64 {
	if c.UserLowID == userID {
		return c.UserHighID
	}
	return c.UserLowID
}

// HasParticipant reports whether userID is one of the two participants.
func (c *Chat) HasParticipant(userID int64) bool {
	return c.UserLowID == userID || c.UserHighID == userID
}

// OrderedPair returns a and b as (low, high).
func OrderedPair(a, b int64) (int64, int64) {
	if a < b {
		return a, b
	}
	return b, a
}

// Message is a single immutable chat entry.
type Message struct {
	ID        int64     `db:"id"`
	ChatID    int64     `db:"chat_id"`
	SenderID  int64     `db:"sender_id"`
	Content   *string   `db:"content"` // encrypted at rest
	FilePath  *string   `db:"file_path"`
	FileName  *string   `db:"file_name"`
	MimeType  *string   `db:"mime_type"`
	CreatedAt time.Time `db:"created_at"`
}

// AttachmentKind tags what, if anything, is attached to a message or article.
type AttachmentKind string

const (
	AttachmentNone  AttachmentKind = "none"
	AttachmentImage AttachmentKind = "image"
	AttachmentFile  AttachmentKind = "file"
)

// Attachment is the tagged view of the file columns of a message.
type Attachment struct {
	Kind      AttachmentKind `json:"kind"`
	Path      string         `json:"path,omitempty"`
	Name      string         `json:"name,omitempty"`
	MediaType string         `json:"media_type,omitempty"`
}

// Attachment derives the tagged attachment from the stored columns.
func (m *Message) Attachment() Attachment {
	if m.FilePath == nil || *m.FilePath == "" {
		return Attachment{Kind: AttachmentNone}
	}
	a := Attachment{Kind: AttachmentFile, Path: *m.FilePath}
	if m.FileName != nil {
		a.Name = *m.FileName
	}
	if m.MimeType != nil {
		a.MediaType = *m.MimeType
		if strings.HasPrefix(a.MediaType, "image/") {
			a.Kind = AttachmentImage
		}
	}
	return a
}

// ChatSummary is one inbox row.
type ChatSummary struct {
	Chat         *Chat     `json:"chat"`
	Counterpart  *User     `json:"other_user"`
	Preview      string    `json:"last_message"`
	LastActivity time.Time `json:"last_time"`
}

// Product is a catalog item. Prices are integer cents.
type Product struct {
	ID              int64     `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	Description     string    `db:"description" json:"description"`
	PriceCents      int64     `db:"price_cents" json:"price_cents"`
	ImagePath       *string   `db:"image_path" json:"image_path,omitempty"`
	DiscountPercent int       `db:"discount_percent" json:"discount_percent"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// SalePriceCents applies the discount, rounding down.
func (p *Product) SalePriceCents() int64 {
	return p.PriceCents * int64(100-p.DiscountPercent) / 100
}

// OnPromotion reports whether the product is discounted.
func (p *Product) OnPromotion() bool {
	return p.DiscountPercent > 0
}
