package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"devconnect/internal/domain"
)

const articleColumns = `id, user_id, title, content, image_path, file_path, file_name, created_at`

type ArticleRepo struct {
	db *sql.DB
}

func NewArticleRepo(db *sql.DB) *ArticleRepo {
	return &ArticleRepo{db: db}
}

var _ domain.ArticleRepository = (*ArticleRepo)(nil)

func (r *ArticleRepo) Create(ctx context.Context, a *domain.Article) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO articles (user_id, title, content, image_path, file_path, file_name, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, a.UserID, a.Title, a.Content, a.ImagePath, a.FilePath, a.FileName, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert article: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	a.ID = id
	return nil
}

func (r *ArticleRepo) ListByAuthor(ctx context.Context, userID int64) ([]*domain.Article, error) {
	return r.list(ctx, `
		SELECT `+articleColumns+`
		FROM articles
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
	`, userID)
}

func (r *ArticleRepo) ListAll(ctx context.Context) ([]*domain.Article, error) {
	return r.list(ctx, `
		SELECT `+articleColumns+`
		FROM articles
		ORDER BY created_at DESC, id DESC
	`)
}

func (r *ArticleRepo) FileNameForStored(ctx context.Context, storedPath string) (*string, error) {
	var name sql.NullString
	err := r.db.QueryRowContext(ctx, `
		SELECT file_name FROM articles WHERE file_path = ? LIMIT 1
	`, storedPath).Scan(&name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("article file name: %w", err)
	}
	if !name.Valid {
		empty := ""
		return &empty, nil
	}
	return &name.String, nil
}

func (r *ArticleRepo) list(ctx context.Context, query string, args ...any) ([]*domain.Article, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()

	var res []*domain.Article
	for rows.Next() {
		a := &domain.Article{}
		if err := rows.Scan(
			&a.ID,
			&a.UserID,
			&a.Title,
			&a.Content,
			&a.ImagePath,
			&a.FilePath,
			&a.FileName,
			&a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		res = append(res, a)
	}
	return res, rows.Err()
}
