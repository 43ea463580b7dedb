package storage

import (
	"context"
	"fmt"

	cryptoutil "ems/internal/platform/crypto"
)

// Encrypted seals objects with AES-GCM before handing them to the inner store.
// When the sealer has no key it passes bytes through unchanged.
type Encrypted struct {
	inner  Store
	sealer *cryptoutil.Service
}

func NewEncrypted(inner Store, sealer *cryptoutil.Service) Store {
	if sealer == nil || !sealer.Configured() {
		return inner
	}
	return &Encrypted{inner: inner, sealer: sealer}
}

func (s *Encrypted) Put(ctx context.Context, key string, data []byte) error {
	sealed, err := s.sealer.Encrypt(data)
	if err != nil {
		return fmt.Errorf("encrypt object: %w", err)
	}
	return s.inner.Put(ctx, key, sealed)
}

func (s *Encrypted) Get(ctx context.Context, key string) ([]byte, error) {
	sealed, err := s.inner.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	plain, err := s.sealer.Decrypt(sealed)
	if err != nil {
		return nil, fmt.Errorf("decrypt object: %w", err)
	}
	return plain, nil
}

func (s *Encrypted) Exists(ctx context.Context, key string) (bool, error) {
	return s.inner.Exists(ctx, key)
}

func (s *Encrypted) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}
