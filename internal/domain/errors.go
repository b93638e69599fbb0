package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrDuplicateKey = errors.New("duplicate key")
	ErrForbidden    = errors.New("forbidden")
	ErrUnavailable  = errors.New("upstream unavailable") // 外部协作方（地理编码、对象存储）失败
)

// ValidationError 标明哪个字段不合法；errors.Is(err, ErrValidation) 为 true
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func Invalid(field, reason string) error { return &ValidationError{Field: field, Reason: reason} }

// StoreError 包装底层驱动错误
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return "store " + e.Op + ": " + e.Err.Error() }
func (e *StoreError) Unwrap() error { return e.Err }

// requireNonEmpty 参数成对出现：name, value, name, value...
func requireNonEmpty(kv ...string) error {
	for i := 0; i+1 < len(kv); i += 2 {
		if strings.TrimSpace(kv[i+1]) == "" {
			return Invalid(kv[i], "is required")
		}
	}
	return nil
}

func requireNonEmptyPtr(kv ...any) error {
	for i := 0; i+1 < len(kv); i += 2 {
		name, _ := kv[i].(string)
		v, _ := kv[i+1].(*string)
		if v != nil && strings.TrimSpace(*v) == "" {
			return Invalid(name, "must not be empty")
		}
	}
	return nil
}

func requirePositive(field string, v float64) error {
	if !(v > 0) {
		return Invalid(field, "must be greater than 0")
	}
	return nil
}

func setIf(cols map[string]any, col string, v *string) {
	if v != nil {
		cols[col] = *v
	}
}
