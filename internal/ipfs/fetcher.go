// Package ipfs fetches app artifacts through an HTTP IPFS gateway.
package ipfs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/CommonsSwarm/evmscripter/internal/dao"
	"github.com/sethvargo/go-retry"
)

// DefaultGateway is used when no gateway is configured.
const DefaultGateway = "https://ipfs.blossom.software/ipfs/"

const maxArtifactSize = 8 << 20

// Config configures a Fetcher.
type Config struct {
	Gateway    string // base URL ending in /ipfs/
	HTTPClient *http.Client
	Logger     *slog.Logger
	MaxRetries uint64
	BaseDelay  time.Duration
}

// Fetcher implements dao.ArtifactFetcher over a gateway.
type Fetcher struct {
	gateway string
	client  *http.Client
	logger  *slog.Logger
	backoff func() retry.Backoff
}

// NewFetcher creates a gateway fetcher.
func NewFetcher(cfg Config) *Fetcher {
	if cfg.Gateway == "" {
		cfg.Gateway = DefaultGateway
	}
	if !strings.HasSuffix(cfg.Gateway, "/") {
		cfg.Gateway += "/"
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.BaseDelay == 0 {
		cfg.BaseDelay = 200 * time.Millisecond
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}

	return &Fetcher{
		gateway: cfg.Gateway,
		client:  cfg.HTTPClient,
		logger:  cfg.Logger,
		backoff: func() retry.Backoff {
			return retry.WithMaxRetries(cfg.MaxRetries, retry.NewExponential(cfg.BaseDelay))
		},
	}
}

// URL returns the gateway URL of the artifact for contentURI.
func (f *Fetcher) URL(contentURI string) (string, error) {
	cid, ok := strings.CutPrefix(contentURI, "ipfs:")
	if !ok || cid == "" {
		return "", fmt.Errorf("unsupported content uri %q", contentURI)
	}
	return f.gateway + cid + "/artifact.json", nil
}

// Fetch implements dao.ArtifactFetcher. Network errors and 5xx responses
// are retried with exponential backoff.
func (f *Fetcher) Fetch(ctx context.Context, contentURI string) (*dao.Artifact, error) {
	url, err := f.URL(contentURI)
	if err != nil {
		return nil, err
	}

	var body []byte
	attempt := 0
	err = retry.Do(ctx, f.backoff(), func(ctx context.Context) error {
		attempt++
		f.logger.Debug("fetching artifact", "url", url, "attempt", attempt)

		b, err := f.get(ctx, url)
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch artifact %s: %w", contentURI, err)
	}

	return dao.ParseArtifact(body)
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, retry.RetryableError(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return nil, retry.RetryableError(fmt.Errorf("gateway returned %s", resp.Status))
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("gateway returned %s", resp.Status)
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxArtifactSize))
	if err != nil {
		return nil, retry.RetryableError(err)
	}
	return b, nil
}
