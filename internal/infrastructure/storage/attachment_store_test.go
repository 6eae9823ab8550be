package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLocalAttachmentStore_SaveAndRead(t *testing.T) {
	tempDir := t.TempDir()
	store := NewLocalAttachmentStore(tempDir, zap.NewNop())
	ctx := context.Background()

	t.Run("saves under kind and ref id", func(t *testing.T) {
		content := []byte("PDF content here")

		err := store.Save(ctx, "budget", 42, "invoice.pdf", content)
		require.NoError(t, err)

		assert.FileExists(t, filepath.Join(tempDir, "budget", "42", "invoice.pdf"))

		got, err := store.Read(ctx, "budget", 42, "invoice.pdf")
		require.NoError(t, err)
		assert.Equal(t, content, got)
	})

	t.Run("overwrites existing attachment", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, "requisition", 1, "quote.txt", []byte("original")))
		require.NoError(t, store.Save(ctx, "requisition", 1, "quote.txt", []byte("updated")))

		got, err := store.Read(ctx, "requisition", 1, "quote.txt")
		require.NoError(t, err)
		assert.Equal(t, []byte("updated"), got)
	})

	t.Run("read of missing attachment fails", func(t *testing.T) {
		_, err := store.Read(ctx, "budget", 99, "missing.pdf")
		assert.Error(t, err)
	})
}

func TestLocalAttachmentStore_Exists(t *testing.T) {
	tempDir := t.TempDir()
	store := NewLocalAttachmentStore(tempDir, zap.NewNop())
	ctx := context.Background()

	exists, err := store.Exists(ctx, "budget", 7, "nota.pdf")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, store.Save(ctx, "budget", 7, "nota.pdf", []byte("x")))

	exists, err = store.Exists(ctx, "budget", 7, "nota.pdf")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestLocalAttachmentStore_RejectsPathEscape(t *testing.T) {
	tempDir := t.TempDir()
	store := NewLocalAttachmentStore(filepath.Join(tempDir, "attachments"), zap.NewNop())
	ctx := context.Background()

	secret := filepath.Join(tempDir, "secret.txt")
	require.NoError(t, os.WriteFile(secret, []byte("secret"), 0644))

	_, err := store.Read(ctx, "..", 0, "secret.txt")
	assert.Error(t, err)

	err = store.Save(ctx, "budget", 1, filepath.Join("..", "..", "..", "escape.txt"), []byte("x"))
	assert.Error(t, err)
}
