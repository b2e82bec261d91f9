package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BlobStore keeps uploaded bytes somewhere and hands back a public URL.
type BlobStore interface {
	Put(ctx context.Context, name string, data []byte) (string, error)
}

var allowedImageTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// ImageUploader validates images before handing them to a BlobStore.
type ImageUploader struct {
	store    BlobStore
	maxBytes int64
	log      *zap.Logger
}

func NewImageUploader(store BlobStore, maxBytes int64, log *zap.Logger) *ImageUploader {
	return &ImageUploader{store: store, maxBytes: maxBytes, log: log}
}

// Upload accepts jpeg, png, gif and webp images up to the configured size.
// Both the extension and the sniffed content must agree on an image type.
func (u *ImageUploader) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	want, ok := allowedImageTypes[ext]
	if !ok {
		return "", fmt.Errorf("%w: only jpeg, png, gif and webp images are allowed", ErrBadInput)
	}

	data, err := io.ReadAll(io.LimitReader(r, u.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("%w: read upload: %v", ErrBadInput, err)
	}
	if int64(len(data)) > u.maxBytes {
		return "", fmt.Errorf("%w: image exceeds %d bytes", ErrBadInput, u.maxBytes)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty file", ErrBadInput)
	}
	if got := http.DetectContentType(data); got != want {
		return "", fmt.Errorf("%w: file content is %s, not %s", ErrBadInput, got, want)
	}

	url, err := u.store.Put(ctx, uuid.NewString()+ext, data)
	if err != nil {
		u.log.Error("Blob store upload failed", zap.Error(err))
		return "", internal(err)
	}
	return url, nil
}

// LocalBlobStore writes files into a directory served under BaseURL.
type LocalBlobStore struct {
	Dir     string
	BaseURL string
}

func (s *LocalBlobStore) Put(_ context.Context, name string, data []byte) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(s.Dir, name), data, 0o644); err != nil {
		return "", err
	}
	return strings.TrimRight(s.BaseURL, "/") + "/" + name, nil
}

type imgurResponse struct {
	Data struct {
		ID   string `json:"id"`
		Link string `json:"link"`
		Type string `json:"type"`
	} `json:"data"`
	Success bool `json:"success"`
	Status  int  `json:"status"`
}

// ImgurBlobStore uploads anonymously to Imgur and returns the direct link.
type ImgurBlobStore struct {
	ClientID string
	Endpoint string
	Client   *http.Client
}

func NewImgurBlobStore(clientID string) *ImgurBlobStore {
	return &ImgurBlobStore{
		ClientID: clientID,
		Endpoint: "https://api.imgur.com/3/image",
		Client:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *ImgurBlobStore) Put(ctx context.Context, _ string, data []byte) (string, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if err := w.WriteField("image", base64.StdEncoding.EncodeToString(data)); err != nil {
		return "", err
	}
	if err := w.WriteField("type", "base64"); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Client-ID "+s.ClientID)
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := s.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("imgur request: %w", err)
	}
	defer resp.Body.Close()

	var out imgurResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode imgur response: %w", err)
	}
	if !out.Success || out.Data.Link == "" {
		return "", fmt.Errorf("imgur upload failed: status %d", out.Status)
	}
	return out.Data.Link, nil
}
