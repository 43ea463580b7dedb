// Package storage holds generated documents and uploaded files under a root
// directory. Keys are relative, forward-slash paths such as
// "Payslips/Payslip_7_12_20250131_101500.pdf".
package storage

import (
	"context"
	"errors"
)

var (
	ErrNotFound   = errors.New("storage: object not found")
	ErrInvalidKey = errors.New("storage: invalid key")
)

type Store interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
}
