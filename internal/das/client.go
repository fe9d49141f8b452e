package das

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/assetgate/assetgate/internal/logging"
)

// Client is the JSON-RPC adapter implementing Querier against a DAS
// capable node.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     logging.Logger
	nextID     atomic.Uint64
}

var _ Querier = (*Client)(nil)

// NewClient creates a Client for the given endpoint. An api key, when
// non-empty, is attached as an api-key query parameter, the convention of
// the hosted DAS providers.
func NewClient(endpoint, apiKey string, logger logging.Logger) (*Client, error) {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing RPC endpoint %q", endpoint)
	}
	if apiKey != "" {
		q := u.Query()
		q.Set("api-key", apiKey)
		u.RawQuery = q.Encode()
	}
	return &Client{
		endpoint:   u.String(),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger.WithField("component", "das_client"),
	}, nil
}

// rpcRequest is the JSON-RPC 2.0 envelope the node expects.
type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

// rpcError is the JSON-RPC 2.0 error object.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

// call posts one JSON-RPC request and returns the raw result.
func (c *Client) call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "encoding %s request", method)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrapf(err, "building %s request", method)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("Calling DAS RPC method.", "method", method)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "calling %s", method)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errors.Newf("%s returned HTTP %d: %s", method, resp.StatusCode, snippet)
	}

	var decoded rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, errors.Wrapf(err, "decoding %s response", method)
	}
	if decoded.Error != nil {
		return nil, errors.Wrapf(decoded.Error, "%s failed", method)
	}
	if decoded.Result == nil {
		return nil, errors.Newf("%s returned no result", method)
	}
	return decoded.Result, nil
}

// pageParams merges pagination into a params object, omitting zero values.
func pageParams(params map[string]any, page Page) map[string]any {
	if page.Page > 0 {
		params["page"] = page.Page
	}
	if page.Limit > 0 {
		params["limit"] = page.Limit
	}
	return params
}

// GetAsset implements Querier.
func (c *Client) GetAsset(ctx context.Context, id string) (json.RawMessage, error) {
	if err := ValidateKey(id); err != nil {
		return nil, err
	}
	return c.call(ctx, "getAsset", map[string]any{"id": id})
}

// GetAssetBatch implements Querier.
func (c *Client) GetAssetBatch(ctx context.Context, ids []string) (json.RawMessage, error) {
	if len(ids) == 0 {
		return nil, errors.New("ids must not be empty")
	}
	for _, id := range ids {
		if err := ValidateKey(id); err != nil {
			return nil, err
		}
	}
	return c.call(ctx, "getAssetBatch", map[string]any{"ids": ids})
}

// GetAssetProof implements Querier.
func (c *Client) GetAssetProof(ctx context.Context, id string) (json.RawMessage, error) {
	if err := ValidateKey(id); err != nil {
		return nil, err
	}
	return c.call(ctx, "getAssetProof", map[string]any{"id": id})
}

// GetSignaturesForAsset implements Querier.
func (c *Client) GetSignaturesForAsset(ctx context.Context, id string, page Page) (json.RawMessage, error) {
	if err := ValidateKey(id); err != nil {
		return nil, err
	}
	return c.call(ctx, "getSignaturesForAsset", pageParams(map[string]any{"id": id}, page))
}

// GetAssetsByAuthority implements Querier.
func (c *Client) GetAssetsByAuthority(ctx context.Context, authority string, page Page) (json.RawMessage, error) {
	if err := ValidateKey(authority); err != nil {
		return nil, err
	}
	return c.call(ctx, "getAssetsByAuthority", pageParams(map[string]any{"authorityAddress": authority}, page))
}

// GetAssetsByCreator implements Querier.
func (c *Client) GetAssetsByCreator(ctx context.Context, creator string, onlyVerified bool, page Page) (json.RawMessage, error) {
	if err := ValidateKey(creator); err != nil {
		return nil, err
	}
	params := map[string]any{"creatorAddress": creator, "onlyVerified": onlyVerified}
	return c.call(ctx, "getAssetsByCreator", pageParams(params, page))
}

// GetAssetsByGroup implements Querier.
func (c *Client) GetAssetsByGroup(ctx context.Context, groupKey, groupValue string, page Page) (json.RawMessage, error) {
	if groupKey == "" {
		return nil, errors.New("groupKey must not be empty")
	}
	if err := ValidateKey(groupValue); err != nil {
		return nil, err
	}
	params := map[string]any{"groupKey": groupKey, "groupValue": groupValue}
	return c.call(ctx, "getAssetsByGroup", pageParams(params, page))
}

// GetAssetsByOwner implements Querier.
func (c *Client) GetAssetsByOwner(ctx context.Context, owner string, page Page) (json.RawMessage, error) {
	if err := ValidateKey(owner); err != nil {
		return nil, err
	}
	return c.call(ctx, "getAssetsByOwner", pageParams(map[string]any{"ownerAddress": owner}, page))
}
