package collector

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"
)

// Fetcher retrieves the raw bytes of a page.
type Fetcher interface {
	Fetch(ctx context.Context, source string) ([]byte, error)
	Name() string
}

// NewFetcher picks a fetcher for the source: http(s) URLs go over the network,
// anything else is read from the local filesystem.
func NewFetcher(source string, timeout time.Duration, proxyURL string) Fetcher {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return NewHTTPFetcher(timeout, proxyURL)
	}
	return &FileFetcher{}
}

// FileFetcher reads pages from disk, accepting plain paths and file:// URLs.
type FileFetcher struct{}

func (f *FileFetcher) Name() string { return "file" }

func (f *FileFetcher) Fetch(_ context.Context, source string) ([]byte, error) {
	path := strings.TrimPrefix(source, "file://")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read page: %w", err)
	}
	return data, nil
}

// StaticFetcher serves a fixed page regardless of source. Useful for tests and
// for replaying a saved snapshot.
type StaticFetcher struct {
	Body []byte
	Err  error
}

func (f *StaticFetcher) Name() string { return "static" }

func (f *StaticFetcher) Fetch(_ context.Context, _ string) ([]byte, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Body, nil
}
