package service

import (
	"context"
	"strings"

	"go-gin-marketplace/internal/domain"
)

type UserService struct{ repo domain.UserRepository }

func NewUserService(repo domain.UserRepository) *UserService { return &UserService{repo: repo} }

type CreateUserInput struct {
	UID         string
	FirstName   string
	LastName    string
	Email       string
	City        string
	Province    string
	PhoneNumber string
}

func (s *UserService) CreateUser(ctx context.Context, in CreateUserInput) (*domain.User, error) {
	u := &domain.User{
		UID:         strings.TrimSpace(in.UID),
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Email:       in.Email,
		City:        in.City,
		Province:    in.Province,
		PhoneNumber: in.PhoneNumber,
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) GetUser(ctx context.Context, uid string) (*domain.User, error) {
	if strings.TrimSpace(uid) == "" {
		return nil, domain.Invalid("uid", "is required")
	}
	return s.repo.FindByUID(ctx, uid)
}

// UpdateUser 按补丁合并；uid/email 不做重复校验
func (s *UserService) UpdateUser(ctx context.Context, uid string, p domain.UserPatch) (*domain.User, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, uid, p.Columns())
}
