// Package docs fetches static documentation content for the gateway's
// resources. The fetch targets are fixed remote URLs; failures surface to
// the registry, which turns them into error content rather than faults.
package docs

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/assetgate/assetgate/internal/logging"
)

// maxDocumentBytes caps how much remote content a single fetch will read.
const maxDocumentBytes = 1 << 20

// Fetcher retrieves text documents over HTTP.
type Fetcher struct {
	httpClient *http.Client
	logger     logging.Logger
}

// NewFetcher creates a Fetcher.
func NewFetcher(logger logging.Logger) *Fetcher {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	return &Fetcher{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger.WithField("component", "docs_fetcher"),
	}
}

// Fetch retrieves the document at url and returns its text content.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", errors.Wrapf(err, "building request for %s", url)
	}
	f.logger.Debug("Fetching document.", "url", url)
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrapf(err, "fetching %s", url)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", errors.Newf("fetching %s returned HTTP %d", url, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return "", errors.Wrapf(err, "reading %s", url)
	}
	return string(body), nil
}
