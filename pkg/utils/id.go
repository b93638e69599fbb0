package utils

import "github.com/google/uuid"

// NewID 生成按时间递增的 UUIDv7
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
