package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"go-gin-marketplace/internal/domain"
	"go-gin-marketplace/pkg/utils"
)

// 插入顺序：created_at 相同再按 UUIDv7 的 id
const insertionOrder = "created_at ASC, id ASC"

type ProductRepo struct{ db *gorm.DB }

func NewProductRepo(db *gorm.DB) *ProductRepo { return &ProductRepo{db: db} }

func (r *ProductRepo) Create(ctx context.Context, p *domain.Product) error {
	if p.ID == "" {
		p.ID = utils.NewID()
	}
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		if isDupKey(err) {
			return domain.ErrDuplicateKey
		}
		return &domain.StoreError{Op: "create product", Err: err}
	}
	return nil
}

func (r *ProductRepo) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, &domain.StoreError{Op: "find product", Err: err}
	}
	return &p, nil
}

func (r *ProductRepo) ListByOwner(ctx context.Context, userID string) ([]domain.Product, error) {
	return r.list(ctx, "user_id = ?", userID)
}

func (r *ProductRepo) ListExcludingOwner(ctx context.Context, userID string) ([]domain.Product, error) {
	return r.list(ctx, "user_id <> ?", userID)
}

func (r *ProductRepo) list(ctx context.Context, cond string, userID string) ([]domain.Product, error) {
	items := make([]domain.Product, 0)
	if err := r.db.WithContext(ctx).Where(cond, userID).Order(insertionOrder).Find(&items).Error; err != nil {
		return nil, &domain.StoreError{Op: "list products", Err: err}
	}
	return items, nil
}

func (r *ProductRepo) Update(ctx context.Context, id string, cols map[string]any) (*domain.Product, error) {
	if len(cols) > 0 {
		res := r.db.WithContext(ctx).Model(&domain.Product{}).Where("id = ?", id).Updates(cols)
		if res.Error != nil {
			return nil, &domain.StoreError{Op: "update product", Err: res.Error}
		}
	}
	return r.FindByID(ctx, id)
}

// Delete 硬删除；记录不存在也返回 nil
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Product{}).Error; err != nil {
		return &domain.StoreError{Op: "delete product", Err: err}
	}
	return nil
}
