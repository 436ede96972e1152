package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"devconnect/internal/domain"
)

const messageColumns = `id, chat_id, sender_id, content, file_path, file_name, mime_type, created_at`

type MessageRepo struct {
	db *sql.DB
}

func NewMessageRepo(db *sql.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

var _ domain.MessageRepository = (*MessageRepo)(nil)

func (r *MessageRepo) Create(ctx context.Context, m *domain.Message) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	return r.db.QueryRowContext(ctx, `
		INSERT INTO messages (chat_id, sender_id, content, file_path, file_name, mime_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, m.ChatID, m.SenderID, m.Content, m.FilePath, m.FileName, m.MimeType, m.CreatedAt,
	).Scan(&m.ID)
}

func (r *MessageRepo) ListForChat(ctx context.Context, chatID int64) ([]*domain.Message, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+messageColumns+`
		FROM messages
		WHERE chat_id = $1
		ORDER BY created_at ASC, id ASC
	`, chatID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return r.scanMessages(rows)
}

func (r *MessageRepo) FindByStoredFile(ctx context.Context, chatID int64, storedPath string) (*domain.Message, error) {
	m := &domain.Message{}
	err := r.db.QueryRowContext(ctx, `
		SELECT `+messageColumns+`
		FROM messages
		WHERE chat_id = $1 AND file_path = $2
		LIMIT 1
	`, chatID, storedPath).Scan(
		&m.ID, &m.ChatID, &m.SenderID, &m.Content,
		&m.FilePath, &m.FileName, &m.MimeType, &m.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find message by file: %w", err)
	}
	return m, nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

func (r *MessageRepo) scanMessages(rows *sql.Rows) ([]*domain.Message, error) {
	defer rows.Close()
	var res []*domain.Message
	for rows.Next() {
		m := &domain.Message{}
		if err := rows.Scan(
			&m.ID, &m.ChatID, &m.SenderID, &m.Content,
			&m.FilePath, &m.FileName, &m.MimeType, &m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		res = append(res, m)
	}
	return res, rows.Err()
}
