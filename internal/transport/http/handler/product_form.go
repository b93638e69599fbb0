package handler

import (
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"strconv"
	"strings"

	"go-gin-marketplace/internal/domain"
)

const imageField = "image"

// 创建和更新都只认这些文本字段；更新时 userId 仅用于回传校验
var productFields = []string{"title", "description", "price", "location", "userId"}

type createProductReq struct {
	Title       string
	Description string
	Price       float64
	Location    string
	UserID      string
	Image       *multipart.FileHeader
}

func (r *createProductReq) DecodeForm(form *multipart.Form) error {
	if err := rejectUnknown(form, productFields); err != nil {
		return err
	}
	r.Title = formValue(form, "title")
	r.Description = formValue(form, "description")
	r.Location = formValue(form, "location")
	r.UserID = strings.TrimSpace(formValue(form, "userId"))
	price, err := parsePrice(form)
	if err != nil {
		return err
	}
	if price == nil {
		return domain.Invalid("price", "is required")
	}
	r.Price = *price
	r.Image = formFile(form)
	return nil
}

// updateProductReq nil 表示没传；userId 只允许原样回传
type updateProductReq struct {
	domain.ProductPatch
	UserID *string
	Image  *multipart.FileHeader
}

func (r *updateProductReq) DecodeForm(form *multipart.Form) error {
	if err := rejectUnknown(form, productFields); err != nil {
		return err
	}
	r.Title = formPtr(form, "title")
	r.Description = formPtr(form, "description")
	r.Location = formPtr(form, "location")
	r.UserID = formPtr(form, "userId")
	price, err := parsePrice(form)
	if err != nil {
		return err
	}
	r.Price = price
	r.Image = formFile(form)
	return nil
}

func rejectUnknown(form *multipart.Form, allowed []string) error {
	for k := range form.Value {
		if !contains(allowed, k) {
			return domain.Invalid(k, "is not an accepted field")
		}
	}
	for k := range form.File {
		if k != imageField {
			return domain.Invalid(k, "is not an accepted file field")
		}
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func formValue(form *multipart.Form, key string) string {
	if vs := form.Value[key]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

func formPtr(form *multipart.Form, key string) *string {
	if vs, ok := form.Value[key]; ok && len(vs) > 0 {
		v := vs[0]
		return &v
	}
	return nil
}

func formFile(form *multipart.Form) *multipart.FileHeader {
	if fs := form.File[imageField]; len(fs) > 0 {
		return fs[0]
	}
	return nil
}

func parsePrice(form *multipart.Form) (*float64, error) {
	raw := formPtr(form, "price")
	if raw == nil {
		return nil, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(*raw), 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return nil, domain.Invalid("price", "must be a number")
	}
	return &v, nil
}

func readImage(fh *multipart.FileHeader) ([]byte, string, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "", fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, "", domain.Invalid("image", "is empty")
	}
	return data, fh.Header.Get("Content-Type"), nil
}
