package domain

import (
	"context"
	"time"
)

type Product struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Price       float64   `gorm:"not null" json:"price"`
	Location    string    `gorm:"size:255;not null" json:"location"`
	UserID      string    `gorm:"size:128;not null;index" json:"userId"`
	ImageURL    string    `gorm:"not null" json:"imageUrl"`
	CreatedAt   time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (Product) TableName() string { return "products" }

func (p *Product) Validate() error {
	if err := p.ValidateFields(); err != nil {
		return err
	}
	return requireNonEmpty("imageUrl", p.ImageURL)
}

// ValidateFields 不含图片的字段校验，网关在上传图片前先跑一遍
func (p *Product) ValidateFields() error {
	if err := requireNonEmpty(
		"title", p.Title,
		"description", p.Description,
		"location", p.Location,
		"userId", p.UserID,
	); err != nil {
		return err
	}
	return requirePositive("price", p.Price)
}

// ProductPatch 可更新字段白名单；图片单独传，不在这里
type ProductPatch struct {
	Title       *string
	Description *string
	Price       *float64
	Location    *string
}

func (p ProductPatch) Validate() error {
	if err := requireNonEmptyPtr(
		"title", p.Title,
		"description", p.Description,
		"location", p.Location,
	); err != nil {
		return err
	}
	if p.Price != nil {
		return requirePositive("price", *p.Price)
	}
	return nil
}

func (p ProductPatch) Columns() map[string]any {
	cols := map[string]any{}
	setIf(cols, "title", p.Title)
	setIf(cols, "description", p.Description)
	setIf(cols, "location", p.Location)
	if p.Price != nil {
		cols["price"] = *p.Price
	}
	return cols
}

type ProductRepository interface {
	Create(ctx context.Context, p *Product) error
	FindByID(ctx context.Context, id string) (*Product, error)
	ListByOwner(ctx context.Context, userID string) ([]Product, error)
	ListExcludingOwner(ctx context.Context, userID string) ([]Product, error)
	Update(ctx context.Context, id string, cols map[string]any) (*Product, error)
	Delete(ctx context.Context, id string) error
}
