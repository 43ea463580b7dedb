package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoutil "ems/internal/platform/crypto"
)

func TestLocalPutGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	key := Key("Payslips", "Payslip_7_12_20250131_101500.pdf")
	require.NoError(t, store.Put(ctx, key, []byte("%PDF-1.3")))

	data, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.3"), data)

	ok, err := store.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.FileExists(t, filepath.Join(store.Root(), "Payslips", "Payslip_7_12_20250131_101500.pdf"))
}

func TestLocalPutOverwrites(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, "a/doc.pdf", []byte("first")))
	require.NoError(t, store.Put(ctx, "a/doc.pdf", []byte("second")))

	data, err := store.Get(ctx, "a/doc.pdf")
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(filepath.Join(store.Root(), "a"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestLocalRejectsEscapingKeys(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "../secret", "/etc/passwd", "a/../../b", "..\\win", "."} {
		t.Run(key, func(t *testing.T) {
			err := store.Put(ctx, key, []byte("x"))
			assert.ErrorIs(t, err, ErrInvalidKey)
			_, err = store.Get(ctx, key)
			assert.ErrorIs(t, err, ErrInvalidKey)
		})
	}
}

func TestLocalMissingObject(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	_, err = store.Get(ctx, "Payslips/missing.pdf")
	assert.ErrorIs(t, err, ErrNotFound)

	ok, err := store.Exists(ctx, "Payslips/missing.pdf")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, store.Delete(ctx, "Payslips/missing.pdf"))
}

func TestLocalPutFailsOnReadOnlyRoot(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}
	ctx := context.Background()
	root := t.TempDir()
	store, err := NewLocal(root)
	require.NoError(t, err)
	require.NoError(t, os.Chmod(root, 0o500))
	t.Cleanup(func() { _ = os.Chmod(root, 0o755) })

	assert.Error(t, store.Put(ctx, "Payslips/doc.pdf", []byte("x")))
}

func TestEncryptedStore(t *testing.T) {
	ctx := context.Background()
	local, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	sealer, err := cryptoutil.New("0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef")
	require.NoError(t, err)

	store := NewEncrypted(local, sealer)
	require.NoError(t, store.Put(ctx, "Payslips/doc.pdf", []byte("%PDF-1.3 secret")))

	raw, err := local.Get(ctx, "Payslips/doc.pdf")
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret")

	plain, err := store.Get(ctx, "Payslips/doc.pdf")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.3 secret", string(plain))
}

func TestEncryptedWithoutKeyIsPassthrough(t *testing.T) {
	local, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	sealer, err := cryptoutil.New("")
	require.NoError(t, err)

	assert.Same(t, Store(local), NewEncrypted(local, sealer))
}
