package sqlite

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
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO messages (chat_id, sender_id, content, file_path, file_name, mime_type, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		m.ChatID,
		m.SenderID,
		m.Content,
		m.FilePath,
		m.FileName,
		m.MimeType,
		m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	m.ID = id
	return nil
}

// ListForChat returns the whole history oldest first; equal timestamps keep
// insertion order.
func (r *MessageRepo) ListForChat(ctx context.Context, chatID int64) ([]*domain.Message, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+messageColumns+`
		FROM messages
		WHERE chat_id = ?
		ORDER BY created_at ASC, id ASC
	`, chatID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var res []*domain.Message
	for rows.Next() {
		m, err := scanMessageRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		res = append(res, m)
	}
	return res, rows.Err()
}

func (r *MessageRepo) FindByStoredFile(ctx context.Context, chatID int64, storedPath string) (*domain.Message, error) {
	m, err := scanMessageRow(r.db.QueryRowContext(ctx, `
		SELECT `+messageColumns+`
		FROM messages
		WHERE chat_id = ? AND file_path = ?
		LIMIT 1
	`, chatID, storedPath))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find message by file: %w", err)
	}
	return m, nil
}

func scanMessageRow(row rowScanner) (*domain.Message, error) {
	m := &domain.Message{}
	if err := row.Scan(
		&m.ID,
		&m.ChatID,
		&m.SenderID,
		&m.Content,
		&m.FilePath,
		&m.FileName,
		&m.MimeType,
		&m.CreatedAt,
	); err != nil {
		return nil, err
	}
	return m, nil
}
