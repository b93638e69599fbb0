package service

import (
	"context"
	"strings"

	"go-gin-marketplace/internal/domain"
)

type ProductService struct{ repo domain.ProductRepository }

func NewProductService(repo domain.ProductRepository) *ProductService {
	return &ProductService{repo: repo}
}

type CreateProductInput struct {
	Title       string
	Description string
	Price       float64
	Location    string
	UserID      string
	ImageURL    string
}

func (s *ProductService) CreateProduct(ctx context.Context, in CreateProductInput) (*domain.Product, error) {
	p := &domain.Product{
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		Location:    in.Location,
		UserID:      strings.TrimSpace(in.UserID),
		ImageURL:    in.ImageURL,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProductService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.Invalid("id", "is required")
	}
	return s.repo.FindByID(ctx, id)
}

func (s *ProductService) ProductsByOwner(ctx context.Context, userID string) ([]domain.Product, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.Invalid("userId", "is required")
	}
	return s.repo.ListByOwner(ctx, userID)
}

func (s *ProductService) ProductsExcludingOwner(ctx context.Context, userID string) ([]domain.Product, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.Invalid("userId", "is required")
	}
	return s.repo.ListExcludingOwner(ctx, userID)
}

// UpdateProduct newImageURL 为空表示保留原图
func (s *ProductService) UpdateProduct(ctx context.Context, id string, p domain.ProductPatch, newImageURL string) (*domain.Product, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	cols := p.Columns()
	if newImageURL != "" {
		cols["image_url"] = newImageURL
	}
	return s.repo.Update(ctx, id, cols)
}

func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return domain.Invalid("id", "is required")
	}
	return s.repo.Delete(ctx, id)
}
