package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"devconnect/internal/domain"
)

type ChatRepo struct {
	db *sql.DB
}

func NewChatRepo(db *sql.DB) *ChatRepo {
	return &ChatRepo{db: db}
}

var _ domain.ChatRepository = (*ChatRepo)(nil)

// GetOrCreateDirect resolves the single chat for the unordered pair {a, b}.
// Concurrent callers race on the unique pair; the loser reads the winner's row.
func (r *ChatRepo) GetOrCreateDirect(ctx context.Context, a, b int64) (*domain.Chat, error) {
	if a == b {
		return nil, domain.ErrInvalidOperation
	}
	low, high := domain.OrderedPair(a, b)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO chats (user_low_id, user_high_id, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_low_id, user_high_id) DO NOTHING
		RETURNING id
	`, low, high).Scan(&id)
	switch {
	case err == sql.ErrNoRows:
		// already exists
	case err != nil:
		return nil, fmt.Errorf("insert chat: %w", err)
	default:
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO chat_participants (chat_id, user_id)
			VALUES ($1, $2), ($1, $3)
		`, id, low, high); err != nil {
			return nil, fmt.Errorf("insert participants: %w", err)
		}
	}

	c := &domain.Chat{}
	if err := tx.QueryRowContext(ctx, `
		SELECT id, user_low_id, user_high_id, created_at
		FROM chats
		WHERE user_low_id = $1 AND user_high_id = $2
	`, low, high).Scan(&c.ID, &c.UserLowID, &c.UserHighID, &c.CreatedAt); err != nil {
		return nil, fmt.Errorf("select chat: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return c, nil
}

func (r *ChatRepo) GetByID(ctx context.Context, id int64) (*domain.Chat, error) {
	c := &domain.Chat{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_low_id, user_high_id, created_at
		FROM chats WHERE id = $1
	`, id).Scan(&c.ID, &c.UserLowID, &c.UserHighID, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get chat: %w", err)
	}
	return c, nil
}

func (r *ChatRepo) ListForUser(ctx context.Context, userID int64) ([]*domain.ChatActivity, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.user_low_id, c.user_high_id, c.created_at,
		       m.id, m.sender_id, m.content, m.file_path, m.file_name, m.mime_type, m.created_at
		FROM chats c
		JOIN chat_participants cp ON cp.chat_id = c.id AND cp.user_id = $1
		LEFT JOIN LATERAL (
			SELECT id, sender_id, content, file_path, file_name, mime_type, created_at
			FROM messages
			WHERE chat_id = c.id
			ORDER BY created_at DESC, id DESC
			LIMIT 1
		) m ON TRUE
		ORDER BY COALESCE(m.created_at, c.created_at) DESC, c.id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	defer rows.Close()

	var res []*domain.ChatActivity
	for rows.Next() {
		c := &domain.Chat{}
		var (
			msgID     sql.NullInt64
			senderID  sql.NullInt64
			createdAt sql.NullTime
			m         domain.Message
		)
		if err := rows.Scan(
			&c.ID, &c.UserLowID, &c.UserHighID, &c.CreatedAt,
			&msgID, &senderID, &m.Content, &m.FilePath, &m.FileName, &m.MimeType, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan chat: %w", err)
		}
		a := &domain.ChatActivity{Chat: c}
		if msgID.Valid {
			m.ID = msgID.Int64
			m.ChatID = c.ID
			m.SenderID = senderID.Int64
			m.CreatedAt = createdAt.Time
			a.LastMessage = &m
		}
		res = append(res, a)
	}
	return res, rows.Err()
}
