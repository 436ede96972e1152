package service

import (
	"context"
	"fmt"
	"strings"

	"devconnect/internal/domain"
)

const maxDiscountPercent = 90

// CatalogService serves the shop.
type CatalogService struct {
	products domain.ProductRepository
}

func NewCatalogService(products domain.ProductRepository) *CatalogService {
	return &CatalogService{products: products}
}

// ProductView adds the computed sale price.
type ProductView struct {
	*domain.Product
	SalePriceCents int64 `json:"sale_price_cents"`
	OnPromotion    bool  `json:"on_promotion"`
}

func newProductView(p *domain.Product) *ProductView {
	return &ProductView{Product: p, SalePriceCents: p.SalePriceCents(), OnPromotion: p.OnPromotion()}
}

func productViews(list []*domain.Product) []*ProductView {
	out := make([]*ProductView, 0, len(list))
	for _, p := range list {
		out = append(out, newProductView(p))
	}
	return out
}

func (s *CatalogService) List(ctx context.Context) ([]*ProductView, error) {
	list, err := s.products.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return productViews(list), nil
}

// Promotions lists discounted products, biggest discount first.
func (s *CatalogService) Promotions(ctx context.Context) ([]*ProductView, error) {
	list, err := s.products.ListPromotions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list promotions: %w", err)
	}
	return productViews(list), nil
}

func (s *CatalogService) Get(ctx context.Context, id int64) (*ProductView, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if p == nil {
		return nil, fmt.Errorf("%w: product %d", domain.ErrNotFound, id)
	}
	return newProductView(p), nil
}

type ProductInput struct {
	Name            string
	Description     string
	PriceCents      int64
	DiscountPercent int
	ImagePath       *string
}

func (s *CatalogService) Create(ctx context.Context, in ProductInput) (*ProductView, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: product name is required", domain.ErrValidation)
	}
	if in.PriceCents < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", domain.ErrValidation)
	}
	if in.DiscountPercent < 0 || in.DiscountPercent > maxDiscountPercent {
		return nil, fmt.Errorf("%w: discount must be between 0 and %d", domain.ErrValidation, maxDiscountPercent)
	}
	p := &domain.Product{
		Name:            name,
		Description:     strings.TrimSpace(in.Description),
		PriceCents:      in.PriceCents,
		DiscountPercent: in.DiscountPercent,
		ImagePath:       in.ImagePath,
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return newProductView(p), nil
}
