package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"go-gin-marketplace/internal/domain"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

// Create 唯一性靠主键约束，不做先查后插
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if isDupKey(err) {
			return domain.ErrDuplicateKey
		}
		return &domain.StoreError{Op: "create user", Err: err}
	}
	return nil
}

func (r *UserRepo) FindByUID(ctx context.Context, uid string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "uid = ?", uid).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, &domain.StoreError{Op: "find user", Err: err}
	}
	return &u, nil
}

// Update 只改 cols 里的列，改完回读最新记录
func (r *UserRepo) Update(ctx context.Context, uid string, cols map[string]any) (*domain.User, error) {
	if len(cols) > 0 {
		err := r.db.WithContext(ctx).Model(&domain.User{}).Where("uid = ?", uid).Updates(cols).Error
		if err != nil {
			return nil, &domain.StoreError{Op: "update user", Err: err}
		}
	}
	return r.FindByUID(ctx, uid)
}

func isDupKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// 驱动未开启 TranslateError 时按错误文本兜底
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}
