package storage

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pngBytes  = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)
	gifBytes  = append([]byte("GIF89a"), make([]byte, 32)...)
	jpegBytes = append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, make([]byte, 32)...)
)

func TestStoreWritesUnderArea(t *testing.T) {
	disk, err := NewDisk(t.TempDir(), "/storage/")
	require.NoError(t, err)
	ctx := context.Background()

	rel, err := disk.Store(ctx, "products_images", NewUpload("photo.png", pngBytes))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(rel, "products_images/"))
	assert.True(t, strings.HasSuffix(rel, ".png"))
	assert.True(t, disk.Exists(rel))
	assert.Equal(t, "/storage/"+rel, disk.URL(rel))
	assert.Equal(t, "", disk.URL(""))

	other, err := disk.Store(ctx, "products_images", NewUpload("photo.png", pngBytes))
	require.NoError(t, err)
	assert.NotEqual(t, rel, other)

	listed, err := disk.List(ctx, "products_images")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{rel, other}, listed)
}

func TestDeleteIsBestEffort(t *testing.T) {
	disk, err := NewDisk(t.TempDir(), "/storage")
	require.NoError(t, err)
	ctx := context.Background()

	rel, err := disk.Store(ctx, "products_images", NewUpload("a.gif", gifBytes))
	require.NoError(t, err)

	require.NoError(t, disk.Delete(ctx, rel))
	assert.False(t, disk.Exists(rel))
	require.NoError(t, disk.Delete(ctx, rel), "missing files are ignored")
	require.NoError(t, disk.Delete(ctx, ""))
}

func TestPathsStayInsideRoot(t *testing.T) {
	root := t.TempDir()
	disk, err := NewDisk(root, "/storage")
	require.NoError(t, err)

	rel, err := disk.Store(context.Background(), "../../escape", NewUpload("a.jpg", jpegBytes))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(rel, "escape/"))
	assert.True(t, disk.Exists(rel))
}

func TestListMissingArea(t *testing.T) {
	disk, err := NewDisk(t.TempDir(), "/storage")
	require.NoError(t, err)
	listed, err := disk.List(context.Background(), "nothing_here")
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestHandlerServesFilesOnly(t *testing.T) {
	disk, err := NewDisk(t.TempDir(), "/storage")
	require.NoError(t, err)
	rel, err := disk.Store(context.Background(), "products_images", NewUpload("a.png", pngBytes))
	require.NoError(t, err)

	handler := http.StripPrefix("/storage", disk.Handler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/storage/"+rel, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bytes.Equal(pngBytes, rec.Body.Bytes()))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/storage/products_images/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCheckImage(t *testing.T) {
	assert.NoError(t, CheckImage(nil))
	assert.NoError(t, CheckImage(NewUpload("a.png", pngBytes)))
	assert.NoError(t, CheckImage(NewUpload("a.gif", gifBytes)))
	assert.NoError(t, CheckImage(NewUpload("a.jpg", jpegBytes)))
	assert.ErrorIs(t, CheckImage(NewUpload("notes.txt", []byte("plain text content"))), ErrNotImage)

	big := NewUpload("big.png", pngBytes)
	big.Size = MaxImageBytes + 1
	assert.ErrorIs(t, CheckImage(big), ErrTooLarge)
}
