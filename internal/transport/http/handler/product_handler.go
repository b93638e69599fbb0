package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"go-gin-marketplace/internal/domain"
	"go-gin-marketplace/internal/service"
	"go-gin-marketplace/internal/storage/image"
	httpez "go-gin-marketplace/internal/transport/http/ez"
	mdw "go-gin-marketplace/internal/transport/http/middleware"
	resp "go-gin-marketplace/internal/transport/http/response"
)

type ProductHandler struct {
	products ProductStore
	images   image.Store
	authn    gin.HandlerFunc
}

func NewProductHandler(products ProductStore, images image.Store, authn gin.HandlerFunc) *ProductHandler {
	return &ProductHandler{products: products, images: images, authn: authn}
}

func (h *ProductHandler) Priority() int { return 20 }

type ownerQuery struct {
	UserID string `form:"userId"`
}

type createProductOut struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Product *domain.Product `json:"product"`
}

type productOut struct {
	Message string          `json:"message"`
	Product *domain.Product `json:"product"`
}

var (
	listMessages = map[int]string{
		http.StatusBadRequest:          "User ID is required",
		http.StatusInternalServerError: "Failed to fetch products",
	}
	productNotFound = map[int]string{
		http.StatusNotFound:            "Product not found",
		http.StatusInternalServerError: "Failed to fetch product",
	}
)

func (h *ProductHandler) MountAPI(api *gin.RouterGroup) {
	ez := httpez.New(api)

	httpez.RegisterAction(ez, httpez.Action[createProductReq, createProductOut]{
		Method:   http.MethodPost,
		Path:     "/products",
		Binder:   httpez.BindMultipart,
		Status:   http.StatusCreated,
		Envelope: true,
		Messages: map[int]string{http.StatusInternalServerError: "Failed to add product"},
		Handler:  h.create,
	}, h.authn)

	httpez.RegisterAction(ez, httpez.Action[ownerQuery, []domain.Product]{
		Method:   http.MethodGet,
		Path:     "/products",
		Binder:   httpez.BindQuery,
		Messages: listMessages,
		Handler: func(c *gin.Context, in *ownerQuery) ([]domain.Product, error) {
			return h.products.ProductsByOwner(c.Request.Context(), in.UserID)
		},
	})

	httpez.RegisterAction(ez, httpez.Action[ownerQuery, []domain.Product]{
		Method:   http.MethodGet,
		Path:     "/products/others",
		Binder:   httpez.BindQuery,
		Messages: listMessages,
		Handler: func(c *gin.Context, in *ownerQuery) ([]domain.Product, error) {
			return h.products.ProductsExcludingOwner(c.Request.Context(), in.UserID)
		},
	})

	httpez.RegisterAction(ez, httpez.Action[struct{}, *domain.Product]{
		Method:   http.MethodGet,
		Path:     "/products/:id",
		Binder:   httpez.BindNone,
		Messages: productNotFound,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Product, error) {
			return h.products.GetProduct(c.Request.Context(), c.Param("id"))
		},
	})

	api.GET("/products/:id/image", h.serveImage)

	httpez.RegisterAction(ez, httpez.Action[updateProductReq, productOut]{
		Method: http.MethodPut,
		Path:   "/products/:id",
		Binder: httpez.BindMultipart,
		Messages: map[int]string{
			http.StatusNotFound:            "Product not found",
			http.StatusInternalServerError: "Failed to update product",
		},
		Handler: h.update,
	}, h.authn)

	httpez.RegisterAction(ez, httpez.Action[struct{}, resp.MessageResp]{
		Method:   http.MethodDelete,
		Path:     "/products/:id",
		Binder:   httpez.BindNone,
		Messages: map[int]string{http.StatusInternalServerError: "Failed to delete product"},
		Handler:  h.delete,
	}, h.authn)
}

func (h *ProductHandler) create(c *gin.Context, in *createProductReq) (createProductOut, error) {
	if in.Image == nil {
		return createProductOut{}, httpez.BadRequest("No image provided")
	}
	draft := domain.Product{
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		Location:    in.Location,
		UserID:      in.UserID,
	}
	// 字段校验通过后才存图
	if err := draft.ValidateFields(); err != nil {
		return createProductOut{}, err
	}
	if err := authorize(c, in.UserID); err != nil {
		return createProductOut{}, err
	}
	imageURL, err := h.storeImage(c, in)
	if err != nil {
		return createProductOut{}, err
	}
	p, err := h.products.CreateProduct(c.Request.Context(), service.CreateProductInput{
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		Location:    in.Location,
		UserID:      in.UserID,
		ImageURL:    imageURL,
	})
	if err != nil {
		return createProductOut{}, err
	}
	return createProductOut{Success: true, Message: "Product created successfully", Product: p}, nil
}

func (h *ProductHandler) storeImage(c *gin.Context, in *createProductReq) (string, error) {
	data, mime, err := readImage(in.Image)
	if err != nil {
		return "", err
	}
	mdw.ObserveImageUpload(len(data))
	return h.images.Put(c.Request.Context(), data, mime)
}

func (h *ProductHandler) update(c *gin.Context, in *updateProductReq) (productOut, error) {
	ctx := c.Request.Context()
	id := c.Param("id")

	current, err := h.products.GetProduct(ctx, id)
	if err != nil {
		return productOut{}, err
	}
	if in.UserID != nil && *in.UserID != current.UserID {
		return productOut{}, domain.Invalid("userId", "cannot be changed")
	}
	if err := authorize(c, current.UserID); err != nil {
		return productOut{}, err
	}
	if err := in.ProductPatch.Validate(); err != nil {
		return productOut{}, err
	}

	var imageURL string
	if in.Image != nil {
		data, mime, err := readImage(in.Image)
		if err != nil {
			return productOut{}, err
		}
		mdw.ObserveImageUpload(len(data))
		if imageURL, err = h.images.Put(ctx, data, mime); err != nil {
			return productOut{}, err
		}
	}

	p, err := h.products.UpdateProduct(ctx, id, in.ProductPatch, imageURL)
	if err != nil {
		return productOut{}, err
	}
	return productOut{Message: "Product updated successfully", Product: p}, nil
}

// delete 记录不存在也回 200
func (h *ProductHandler) delete(c *gin.Context, _ *struct{}) (resp.MessageResp, error) {
	ctx := c.Request.Context()
	id := c.Param("id")
	if mdw.UID(c) != "" {
		current, err := h.products.GetProduct(ctx, id)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return resp.Message("Product deleted successfully"), nil
		case err != nil:
			return resp.MessageResp{}, err
		}
		if err := authorize(c, current.UserID); err != nil {
			return resp.MessageResp{}, err
		}
	}
	if err := h.products.DeleteProduct(ctx, id); err != nil {
		return resp.MessageResp{}, err
	}
	return resp.Message("Product deleted successfully"), nil
}

// serveImage 内联图片直接回字节，对象存储的回 302
func (h *ProductHandler) serveImage(c *gin.Context) {
	p, err := h.products.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpez.Abort(c, err, productNotFound)
		return
	}
	r, err := h.images.Resolve(c.Request.Context(), p.ImageURL)
	if err != nil {
		httpez.Abort(c, httpez.Internal("resolve image", err), nil)
		return
	}
	if r.URL != "" {
		c.Redirect(http.StatusFound, r.URL)
		return
	}
	c.Header("Cache-Control", "private, max-age=300")
	c.Data(http.StatusOK, r.MIME, r.Data)
}
