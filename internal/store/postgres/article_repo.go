package postgres

import (
	"context"
	"database/sql"
	"fmt"

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
	return r.db.QueryRowContext(ctx, `
		INSERT INTO articles (user_id, title, content, image_path, file_path, file_name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, created_at
	`, a.UserID, a.Title, a.Content, a.ImagePath, a.FilePath, a.FileName,
	).Scan(&a.ID, &a.CreatedAt)
}

func (r *ArticleRepo) ListByAuthor(ctx context.Context, userID int64) ([]*domain.Article, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+articleColumns+`
		FROM articles
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list articles by author: %w", err)
	}
	return r.scanArticles(rows)
}

func (r *ArticleRepo) ListAll(ctx context.Context) ([]*domain.Article, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+articleColumns+`
		FROM articles
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	return r.scanArticles(rows)
}

func (r *ArticleRepo) FileNameForStored(ctx context.Context, storedPath string) (*string, error) {
	var name sql.NullString
	err := r.db.QueryRowContext(ctx, `
		SELECT file_name FROM articles WHERE file_path = $1 LIMIT 1
	`, storedPath).Scan(&name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("article file name: %w", err)
	}
	return &name.String, nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

func (r *ArticleRepo) scanArticles(rows *sql.Rows) ([]*domain.Article, error) {
	defer rows.Close()
	var res []*domain.Article
	for rows.Next() {
		a := &domain.Article{}
		if err := rows.Scan(
			&a.ID, &a.UserID, &a.Title, &a.Content,
			&a.ImagePath, &a.FilePath, &a.FileName, &a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		res = append(res, a)
	}
	return res, rows.Err()
}
