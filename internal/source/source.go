package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/certpatrol/certpatrol/internal/config"
)

const fetchTimeout = 15 * time.Second

// maxListSize caps how much target-list text is read from a remote
// endpoint. A list larger than this is a misconfiguration, not a fleet.
const maxListSize = 4 << 20

// Provider supplies the raw target-list text for one invocation.
type Provider interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// New returns the Provider selected by cfg. The config package has
// already validated the type and required fields.
func New(cfg config.SourceConfig) (Provider, error) {
	switch cfg.Type {
	case "file":
		return &FileProvider{Path: cfg.Path}, nil
	case "http":
		return &HTTPProvider{
			URL:    cfg.URL,
			auth:   cfg.Auth,
			client: &http.Client{Timeout: fetchTimeout},
		}, nil
	default:
		return nil, fmt.Errorf("source: unsupported type %q", cfg.Type)
	}
}

// FileProvider reads the target list from a local file.
type FileProvider struct {
	Path string
}

// Fetch reads the file. The context is accepted for interface symmetry;
// local reads are not cancellable mid-flight.
func (p *FileProvider) Fetch(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return nil, fmt.Errorf("source: read %s: %w", p.Path, err)
	}
	return data, nil
}

// HTTPProvider fetches the target list from an HTTP(S) endpoint, the
// shape a remote object store exposes it in.
type HTTPProvider struct {
	URL    string
	auth   config.SourceAuth
	client *http.Client
}

// Fetch performs a GET against the configured URL.
func (p *HTTPProvider) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("source: build request: %w", err)
	}
	if p.auth.Header != "" {
		req.Header.Set(p.auth.Header, p.auth.Key())
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("source: fetch %s: %w", p.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("source: fetch %s: unexpected status %d", p.URL, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxListSize))
	if err != nil {
		return nil, fmt.Errorf("source: read body: %w", err)
	}
	return data, nil
}
