// Package storage uploads course files (slides, videos) to the external file
// storage service and hands back their public URLs.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strings"
	"time"

	"courseportal/backend/config"

	"github.com/google/uuid"
)

var ErrNotConfigured = errors.New("storage: no storage service configured")

type Client struct {
	baseURL   string
	publicURL string
	http      *http.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL:   strings.TrimSuffix(cfg.StorageBaseURL, "/"),
		publicURL: strings.TrimSuffix(cfg.StoragePublicURL, "/"),
		http:      &http.Client{Timeout: 30 * time.Second},
	}
}

// Upload stores the file under a random object name inside folder and returns
// the public URL. The original filename only contributes its extension.
func (c *Client) Upload(ctx context.Context, folder, filename string, content []byte) (string, error) {
	if c.baseURL == "" {
		return "", ErrNotConfigured
	}

	objectName := uuid.NewString() + path.Ext(filename)
	if folder != "" {
		objectName = path.Join(folder, objectName)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", objectName)
	if err != nil {
		return "", fmt.Errorf("storage: build upload body: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return "", fmt.Errorf("storage: build upload body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("storage: build upload body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload/"+objectName, &body)
	if err != nil {
		return "", fmt.Errorf("storage: build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("storage: upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("storage: upload failed with status %d: %s", resp.StatusCode, string(msg))
	}

	base := c.publicURL
	if base == "" {
		base = c.baseURL
	}
	return base + "/" + objectName, nil
}
