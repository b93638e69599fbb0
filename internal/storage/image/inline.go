package image

import "context"

// Inline 图片直接以 base64 data URI 存在记录里
type Inline struct{}

func NewInline() *Inline { return &Inline{} }

func (Inline) Put(_ context.Context, data []byte, mime string) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyImage
	}
	return EncodeDataURI(data, DetectMIME(mime, data)), nil
}

func (Inline) Resolve(_ context.Context, ref string) (*Resolved, error) {
	return resolveAny(ref)
}
