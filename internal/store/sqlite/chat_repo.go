package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"devconnect/internal/domain"
)

type ChatRepo struct {
	db *sql.DB
}

func NewChatRepo(db *sql.DB) *ChatRepo {
	return &ChatRepo{db: db}
}

var _ domain.ChatRepository = (*ChatRepo)(nil)

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

	res, err := tx.ExecContext(ctx, `
		INSERT INTO chats (user_low_id, user_high_id, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (user_low_id, user_high_id) DO NOTHING
	`, low, high, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("insert chat: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if inserted == 1 {
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("last insert id: %w", err)
		}
		for _, uid := range []int64{low, high} {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO chat_participants (chat_id, user_id) VALUES (?, ?)
			`, id, uid); err != nil {
				return nil, fmt.Errorf("insert participant %d: %w", uid, err)
			}
		}
	}

	c := &domain.Chat{}
	if err := tx.QueryRowContext(ctx, `
		SELECT id, user_low_id, user_high_id, created_at
		FROM chats
		WHERE user_low_id = ? AND user_high_id = ?
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
		FROM chats
		WHERE id = ?
	`, id).Scan(&c.ID, &c.UserLowID, &c.UserHighID, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get chat: %w", err)
	}
	return c, nil
}

// ListForUser returns the user's chats with their newest message, most
// recently active first.
func (r *ChatRepo) ListForUser(ctx context.Context, userID int64) ([]*domain.ChatActivity, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.user_low_id, c.user_high_id, c.created_at,
		       m.id, m.sender_id, m.content, m.file_path, m.file_name, m.mime_type, m.created_at
		FROM chats c
		JOIN chat_participants cp ON cp.chat_id = c.id AND cp.user_id = ?
		LEFT JOIN messages m ON m.id = (
			SELECT id FROM messages
			WHERE chat_id = c.id
			ORDER BY created_at DESC, id DESC
			LIMIT 1
		)
		ORDER BY COALESCE(m.created_at, c.created_at) DESC, c.id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	defer rows.Close()

	var res []*domain.ChatActivity
	for rows.Next() {
		a, err := scanChatActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chat: %w", err)
		}
		res = append(res, a)
	}
	return res, rows.Err()
}

func scanChatActivity(row rowScanner) (*domain.ChatActivity, error) {
	c := &domain.Chat{}
	var (
		msgID     sql.NullInt64
		senderID  sql.NullInt64
		content   sql.NullString
		filePath  sql.NullString
		fileName  sql.NullString
		mimeType  sql.NullString
		createdAt sql.NullTime
	)
	if err := row.Scan(
		&c.ID, &c.UserLowID, &c.UserHighID, &c.CreatedAt,
		&msgID, &senderID, &content, &filePath, &fileName, &mimeType, &createdAt,
	); err != nil {
		return nil, err
	}
	a := &domain.ChatActivity{Chat: c}
	if msgID.Valid {
		a.LastMessage = &domain.Message{
			ID:        msgID.Int64,
			ChatID:    c.ID,
			SenderID:  senderID.Int64,
			Content:   nullString(content),
			FilePath:  nullString(filePath),
			FileName:  nullString(fileName),
			MimeType:  nullString(mimeType),
			CreatedAt: createdAt.Time,
		}
	}
	return a, nil
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
