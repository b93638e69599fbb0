// Package image 商品图片的存取策略：内联 data URI 或对象存储。
// 对客户端而言 imageUrl 始终是可直接使用的字符串。
package image

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"go-gin-marketplace/internal/domain"
)

type Store interface {
	// Put 保存图片，返回写进 Product.ImageURL 的引用
	Put(ctx context.Context, data []byte, mime string) (string, error)
	// Resolve 引用 → 字节（内联）或可跳转的 URL（对象存储）
	Resolve(ctx context.Context, ref string) (*Resolved, error)
}

type Resolved struct {
	Data []byte
	MIME string
	URL  string
}

var ErrEmptyImage = errors.New("empty image")

// DetectMIME 优先用客户端声明的类型，缺失或为 octet-stream 时按内容嗅探
func DetectMIME(declared string, data []byte) string {
	declared = strings.TrimSpace(declared)
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	return mimetype.Detect(data).String()
}

func EncodeDataURI(data []byte, mime string) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// ParseDataURI 只支持 base64 形式：data:<mime>;base64,<payload>
func ParseDataURI(ref string) (mime string, data []byte, err error) {
	rest, ok := strings.CutPrefix(ref, "data:")
	if !ok {
		return "", nil, domain.Invalid("imageUrl", "is not a data URI")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, domain.Invalid("imageUrl", "has no payload")
	}
	mime, ok = strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", nil, domain.Invalid("imageUrl", "is not base64 encoded")
	}
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, domain.Invalid("imageUrl", "has a malformed payload")
	}
	return mime, data, nil
}

func isURL(ref string) bool {
	return strings.HasPrefix(ref, "https://") || strings.HasPrefix(ref, "http://")
}

// resolveAny 两种引用都认，切换存储驱动后老数据仍可读
func resolveAny(ref string) (*Resolved, error) {
	if isURL(ref) {
		return &Resolved{URL: ref}, nil
	}
	mime, data, err := ParseDataURI(ref)
	if err != nil {
		return nil, err
	}
	return &Resolved{Data: data, MIME: mime}, nil
}

func extensionFor(mime string) string {
	if m := mimetype.Lookup(mime); m != nil {
		return m.Extension()
	}
	return ""
}
