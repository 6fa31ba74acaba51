package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"stonetech/catalog/internal/domain"

	"resty.dev/v3"
)

// Source yields the raw catalog document.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
	String() string
}

// NewSource picks an HTTP source for http(s) locations and a file source otherwise.
func NewSource(location string, timeout time.Duration) Source {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return NewHTTPSource(location, timeout)
	}
	return &FileSource{Path: location}
}

// FileSource reads the catalog from the local filesystem.
type FileSource struct {
	Path string
}

func (s *FileSource) String() string { return s.Path }

func (s *FileSource) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.LoadError{Source: s.Path, Err: err}
	}

	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &domain.LoadError{Source: s.Path, Status: 404, Msg: "Not Found", Err: err}
		}
		return nil, &domain.LoadError{Source: s.Path, Err: err}
	}
	return data, nil
}

// HTTPSource downloads the catalog document.
type HTTPSource struct {
	URL    string
	client *resty.Client
}

func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &HTTPSource{URL: url, client: client}
}

func (s *HTTPSource) String() string { return s.URL }

func (s *HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		Get(s.URL)
	if err != nil {
		return nil, &domain.LoadError{Source: s.URL, Err: fmt.Errorf("failed to fetch URL: %w", err)}
	}

	if resp.IsError() {
		return nil, &domain.LoadError{
			Source: s.URL,
			Status: resp.StatusCode(),
			Msg:    statusText(resp.Status()),
		}
	}

	return resp.Bytes(), nil
}

// statusText strips the numeric code from "404 Not Found".
func statusText(status string) string {
	if i := strings.IndexByte(status, ' '); i >= 0 {
		return status[i+1:]
	}
	return status
}

// Close releases the HTTP client's idle connections.
func (s *HTTPSource) Close() error {
	return s.client.Close()
}
