package postgres

import (
	"context"
	"database/sql"
	"fmt"

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
	return r.db.QueryRowContext(ctx, `
		INSERT INTO products (name, description, price_cents, image_path, discount_percent, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at
	`, p.Name, p.Description, p.PriceCents, p.ImagePath, p.DiscountPercent,
	).Scan(&p.ID, &p.CreatedAt)
}

func (r *ProductRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	p := &domain.Product{}
	err := r.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id).Scan(
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
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+productColumns+` FROM products ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return r.scanProducts(rows)
}

func (r *ProductRepo) ListPromotions(ctx context.Context) ([]*domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE discount_percent > 0
		ORDER BY discount_percent DESC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list promotions: %w", err)
	}
	return r.scanProducts(rows)
}

// ── helpers ──────────────────────────────────────────────────────────────────

func (r *ProductRepo) scanProducts(rows *sql.Rows) ([]*domain.Product, error) {
	defer rows.Close()
	var res []*domain.Product
	for rows.Next() {
		p := &domain.Product{}
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.PriceCents,
			&p.ImagePath, &p.DiscountPercent, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		res = append(res, p)
	}
	return res, rows.Err()
}
