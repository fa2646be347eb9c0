package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// FetcherConfig represents the configuration for the document fetcher.
type FetcherConfig struct {
	Timeout   time.Duration
	UserAgent string
	MaxBytes  int64
}

// Fetcher downloads raw document bytes over HTTP. Some publishers reject
// requests without a browser user agent, hence the default.
type Fetcher struct {
	config FetcherConfig
	client *http.Client
}

func NewFetcherWithConfig(config FetcherConfig) *Fetcher {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.UserAgent == "" {
		config.UserAgent = defaultUserAgent
	}
	if config.MaxBytes == 0 {
		config.MaxBytes = 50 << 20 // 50 MiB
	}

	return &Fetcher{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// FetchRawBytes downloads the document at the given URL.
func (f *Fetcher) FetchRawBytes(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &ExtractionError{Stage: "download", Err: err}
	}
	req.Header.Set("User-Agent", f.config.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &ExtractionError{Stage: "download", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ExtractionError{
			Stage: "download",
			Err:   fmt.Errorf("received status code %d for URL: %s", resp.StatusCode, url),
		}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxBytes))
	if err != nil {
		return nil, &ExtractionError{Stage: "download", Err: err}
	}

	return raw, nil
}
