package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"go-gin-marketplace/internal/domain"
	"go-gin-marketplace/internal/service"
	mdw "go-gin-marketplace/internal/transport/http/middleware"
)

// UserStore / ProductStore 由 service 层实现，测试里可替换
type UserStore interface {
	CreateUser(ctx context.Context, in service.CreateUserInput) (*domain.User, error)
	GetUser(ctx context.Context, uid string) (*domain.User, error)
	UpdateUser(ctx context.Context, uid string, p domain.UserPatch) (*domain.User, error)
}

type ProductStore interface {
	CreateProduct(ctx context.Context, in service.CreateProductInput) (*domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	ProductsByOwner(ctx context.Context, userID string) ([]domain.Product, error)
	ProductsExcludingOwner(ctx context.Context, userID string) ([]domain.Product, error)
	UpdateProduct(ctx context.Context, id string, p domain.ProductPatch, newImageURL string) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

// authorize 开启鉴权时要求调用方就是 owner；未开启时不做检查
func authorize(c *gin.Context, owner string) error {
	if uid := mdw.UID(c); uid != "" && uid != owner {
		return domain.ErrForbidden
	}
	return nil
}
