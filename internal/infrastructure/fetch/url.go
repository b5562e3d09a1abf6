package fetch

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/go-resty/resty/v2"

	plugindomain "github.com/zshrug/zshrug/internal/core/domain/plugin"
)

// URLFetcher downloads a single file into the plugin directory
type URLFetcher struct {
	client *resty.Client
}

// NewURLFetcher creates a fetcher using client, or a default resty client when nil.
// Requests are not retried.
func NewURLFetcher(client *resty.Client) *URLFetcher {
	if client == nil {
		client = resty.New()
	}
	return &URLFetcher{client: client}
}

// Fetch downloads spec.Name to dir/<last path segment of the URL>
func (u *URLFetcher) Fetch(ctx context.Context, spec plugindomain.Spec, dir string) error {
	name, err := fileName(spec.Name)
	if err != nil {
		return err
	}
	target := filepath.Join(dir, name)

	resp, err := u.client.R().
		SetContext(ctx).
		SetOutput(target).
		Get(spec.Name)
	if err != nil {
		os.Remove(target)
		return fmt.Errorf("couldn't download '%s': %w", spec.Name, err)
	}

	if !resp.IsSuccess() {
		os.Remove(target)
		return fmt.Errorf("couldn't download '%s': server responded %s", spec.Name, resp.Status())
	}

	return nil
}

// fileName picks the saved file name the way wget does
func fileName(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid plugin url '%s': %w", rawURL, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("invalid plugin url '%s': scheme and host are required", rawURL)
	}

	base := path.Base(parsed.Path)
	if base == "." || base == ".." || base == "/" || base == "" {
		return "index.html", nil
	}
	return base, nil
}
