package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"devconnect/internal/domain"
)

const productColumns = `id, name, description, price_cents, image_path, discount_percent, created_at`

type ProductRepo struct {
	db *sql.DB
}

func NewProductRepo(db *sql.DB) *ProductRepo {
	return &ProductRepo{db: db}
}

var _ domain.ProductRepository = (*ProductRepo)(nil)

func (r *ProductRepo) Create(ctx context.Context, p *domain.Product) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO products (name, description, price_cents, image_path, discount_percent, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, p.Name, p.Description, p.PriceCents, p.ImagePath, p.DiscountPercent, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	p.ID = id
	return nil
}

func (r *ProductRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	p := &domain.Product{}
	err := r.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id).Scan(
		&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.ImagePath, &p.DiscountPercent, &p.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (r *ProductRepo) List(ctx context.Context) ([]*domain.Product, error) {
	return r.list(ctx, `SELECT `+productColumns+` FROM products ORDER BY created_at DESC, id DESC`)
}

func (r *ProductRepo) ListPromotions(ctx context.Context) ([]*domain.Product, error) {
	return r.list(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE discount_percent > 0
		ORDER BY discount_percent DESC, id ASC
	`)
}

func (r *ProductRepo) list(ctx context.Context, query string) ([]*domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var res []*domain.Product
	for rows.Next() {
		p := &domain.Product{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.ImagePath, &p.DiscountPercent, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		res = append(res, p)
	}
	return res, rows.Err()
}
