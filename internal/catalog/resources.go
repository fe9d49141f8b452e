package catalog

import (
	"context"

	"github.com/assetgate/assetgate/internal/registry"
)

// Documentation sources behind the das:// resources. The URIs are fixed;
// there is no parameterization in this catalog.
const (
	overviewURL = "https://developers.metaplex.com/das-api"
	methodsURL  = "https://developers.metaplex.com/das-api/methods"
)

// DocumentFetcher retrieves remote text content for resources.
type DocumentFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Resources returns the documentation resource templates.
func Resources(fetcher DocumentFetcher) []registry.ResourceTemplate {
	return []registry.ResourceTemplate{
		{
			URI:         "das://docs/overview",
			Name:        "DAS API overview",
			Description: "Introduction to the Digital Asset Standard API",
			MIMEType:    "text/html",
			Fetch: func(ctx context.Context, _ string) (string, error) {
				return fetcher.Fetch(ctx, overviewURL)
			},
		},
		{
			URI:         "das://docs/methods",
			Name:        "DAS API method reference",
			Description: "Reference for the DAS query methods exposed as tools",
			MIMEType:    "text/html",
			Fetch: func(ctx context.Context, _ string) (string, error) {
				return fetcher.Fetch(ctx, methodsURL)
			},
		},
	}
}
