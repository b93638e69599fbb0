package domain

import (
	"context"
	"time"
)

// User 由身份服务签发 uid，uid 即主键（唯一约束交给数据库）
type User struct {
	UID         string    `gorm:"primaryKey;size:128" json:"uid"`
	FirstName   string    `gorm:"size:64;not null" json:"firstName"`
	LastName    string    `gorm:"size:64;not null" json:"lastName"`
	Email       string    `gorm:"size:191;not null" json:"email"`
	City        string    `gorm:"size:100;not null" json:"city"`
	Province    string    `gorm:"size:100;not null" json:"province"`
	PhoneNumber string    `gorm:"size:32;not null" json:"phoneNumber"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// Validate 创建时所有字段必填
func (u *User) Validate() error {
	return requireNonEmpty(
		"uid", u.UID,
		"firstName", u.FirstName,
		"lastName", u.LastName,
		"email", u.Email,
		"city", u.City,
		"province", u.Province,
		"phoneNumber", u.PhoneNumber,
	)
}

// UserPatch 可更新字段白名单；nil 表示不修改
type UserPatch struct {
	FirstName   *string `json:"firstName"`
	LastName    *string `json:"lastName"`
	Email       *string `json:"email"`
	City        *string `json:"city"`
	Province    *string `json:"province"`
	PhoneNumber *string `json:"phoneNumber"`
}

func (p UserPatch) Validate() error {
	return requireNonEmptyPtr(
		"firstName", p.FirstName,
		"lastName", p.LastName,
		"email", p.Email,
		"city", p.City,
		"province", p.Province,
		"phoneNumber", p.PhoneNumber,
	)
}

// Columns 转成 gorm Updates 用的列映射
func (p UserPatch) Columns() map[string]any {
	cols := map[string]any{}
	setIf(cols, "first_name", p.FirstName)
	setIf(cols, "last_name", p.LastName)
	setIf(cols, "email", p.Email)
	setIf(cols, "city", p.City)
	setIf(cols, "province", p.Province)
	setIf(cols, "phone_number", p.PhoneNumber)
	return cols
}

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByUID(ctx context.Context, uid string) (*User, error)
	Update(ctx context.Context, uid string, cols map[string]any) (*User, error)
}
