package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Smallest valid PNG header is enough for content sniffing.
var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func TestLocalUpload(t *testing.T) {
	dir := t.TempDir()
	up := NewImageUploader(&LocalBlobStore{Dir: dir, BaseURL: "/uploads/"}, 1024, zap.NewNop())

	url, err := up.Upload(context.Background(), "Cat.PNG", bytes.NewReader(pngBytes))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	stored, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(url, "/uploads/")))
	require.NoError(t, err)
	assert.Equal(t, pngBytes, stored)
}

func TestUploadRejects(t *testing.T) {
	up := NewImageUploader(&LocalBlobStore{Dir: t.TempDir(), BaseURL: "/uploads"}, 64, zap.NewNop())
	ctx := context.Background()

	_, err := up.Upload(ctx, "script.svg", bytes.NewReader(pngBytes))
	assert.ErrorIs(t, err, ErrBadInput)

	_, err = up.Upload(ctx, "fake.png", strings.NewReader("<html>not an image</html>"))
	assert.ErrorIs(t, err, ErrBadInput)

	_, err = up.Upload(ctx, "big.png", bytes.NewReader(append(pngBytes, make([]byte, 64)...)))
	assert.ErrorIs(t, err, ErrBadInput)

	_, err = up.Upload(ctx, "empty.png", bytes.NewReader(nil))
	assert.ErrorIs(t, err, ErrBadInput)
}

type failingStore struct{}

func (failingStore) Put(context.Context, string, []byte) (string, error) {
	return "", errors.New("bucket gone")
}

func TestUploadStoreFailureIsInternal(t *testing.T) {
	up := NewImageUploader(failingStore{}, 1024, zap.NewNop())
	_, err := up.Upload(context.Background(), "a.png", bytes.NewReader(pngBytes))
	assert.ErrorIs(t, err, ErrInternal)
}

func TestImgurBlobStore(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Client-ID test-client", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "base64", r.FormValue("type"))
		assert.NotEmpty(t, r.FormValue("image"))

		resp := imgurResponse{Success: true, Status: 200}
		resp.Data.ID = "abc123"
		resp.Data.Link = "https://i.imgur.com/abc123.png"
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	store := NewImgurBlobStore("test-client")
	store.Endpoint = server.URL

	url, err := store.Put(context.Background(), "x.png", pngBytes)
	require.NoError(t, err)
	assert.Equal(t, "https://i.imgur.com/abc123.png", url)
}

func TestImgurBlobStoreFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"success":false,"status":403}`))
	}))
	defer server.Close()

	store := NewImgurBlobStore("bad")
	store.Endpoint = server.URL

	_, err := store.Put(context.Background(), "x.png", pngBytes)
	assert.Error(t, err)
}
