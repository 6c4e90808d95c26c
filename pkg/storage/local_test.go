package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir, "http://localhost:5000/uploads/")
	require.NoError(t, err)
	ctx := context.Background()

	resp, err := store.Upload(ctx, &UploadRequest{
		Key:         "vehicles/abc/front.jpg",
		Reader:      strings.NewReader("jpeg-bytes"),
		ContentType: "image/jpeg",
	})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5000/uploads/vehicles/abc/front.jpg", resp.URL)
	assert.Equal(t, int64(len("jpeg-bytes")), resp.Size)

	data, err := os.ReadFile(filepath.Join(dir, "vehicles", "abc", "front.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))

	exists, err := store.FileExists(ctx, "vehicles/abc/front.jpg")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, store.Delete(ctx, "vehicles/abc/front.jpg"))
	exists, err = store.FileExists(ctx, "vehicles/abc/front.jpg")
	require.NoError(t, err)
	assert.False(t, exists)

	assert.ErrorIs(t, store.Delete(ctx, "vehicles/abc/front.jpg"), ErrNotFound)
}

func TestLocalStorageRejectsTraversal(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir(), "http://localhost")
	require.NoError(t, err)

	_, err = store.Upload(context.Background(), &UploadRequest{
		Key:    "../../etc/passwd",
		Reader: strings.NewReader("x"),
	})
	assert.Error(t, err)
}
