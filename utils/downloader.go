package utils

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrImageTooLarge is returned when a download exceeds the upload limit.
var ErrImageTooLarge = fmt.Errorf("image exceeds %d bytes", MaxUploadBytes)

// Downloader fetches remote images for import into the catalog.
type Downloader struct {
	client *http.Client
}

// NewDownloader returns a downloader with a 30 second timeout.
func NewDownloader() *Downloader {
	return &Downloader{client: &http.Client{Timeout: 30 * time.Second}}
}

// NewDownloaderWithClient is used by tests to point at an httptest server.
func NewDownloaderWithClient(client *http.Client) *Downloader {
	return &Downloader{client: client}
}

// FetchImage downloads url and returns its body and content type.
func (d *Downloader) FetchImage(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (macOS) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.114 Safari/537.36")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("bad status: %s", resp.Status)
	}

	// Read one byte past the limit to detect oversize bodies
	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, MaxUploadBytes+1))
	if err != nil {
		return nil, "", err
	}
	if len(bodyBytes) > MaxUploadBytes {
		return nil, "", ErrImageTooLarge
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" || !strings.HasPrefix(contentType, "image/") {
		contentType = http.DetectContentType(bodyBytes)
	}
	return bodyBytes, contentType, nil
}
