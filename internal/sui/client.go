// Package sui implements a minimal JSON-RPC 2.0 client for the Sui
// fullnode API, covering the three calls this server needs: object
// fetches, transaction-block queries, and the package version index.
package sui

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PassKeyRa/suisource-mcp/internal/errors"
)

// ErrMethodNotFound marks an endpoint that does not implement a requested
// RPC method. Callers that can degrade (the version index walk) check for
// it with errors.Is.
var ErrMethodNotFound = stderrors.New("rpc method not supported by endpoint")

const requestTimeout = 30 * time.Second

// Client is a JSON-RPC client bound to one endpoint URL.
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient creates a client for the given endpoint.
func NewClient(url string) *Client {
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

const rpcCodeMethodNotFound = -32601

// call performs one JSON-RPC request and decodes the result into out.
// Transport and server failures map to UPSTREAM_UNAVAILABLE; an
// unimplemented method maps to ErrMethodNotFound.
func (c *Client) call(ctx context.Context, method string, params []any, out any) error {
	payload, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return errors.NewInternal(fmt.Errorf("marshal %s request: %w", method, err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return errors.NewInternal(fmt.Errorf("build %s request: %w", method, err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errors.NewUpstreamUnavailable(fmt.Sprintf("%s: rpc request failed: %v", method, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errors.NewUpstreamUnavailable(fmt.Sprintf("%s: rpc returned HTTP %d: %s", method, resp.StatusCode, bytes.TrimSpace(body)))
	}

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return errors.NewUpstreamUnavailable(fmt.Sprintf("%s: decode rpc response: %v", method, err))
	}

	if rpcResp.Error != nil {
		if rpcResp.Error.Code == rpcCodeMethodNotFound {
			return fmt.Errorf("%s: %w", method, ErrMethodNotFound)
		}
		return errors.NewUpstreamUnavailable(fmt.Sprintf("%s: rpc error %d: %s", method, rpcResp.Error.Code, rpcResp.Error.Message))
	}

	if out != nil {
		if err := json.Unmarshal(rpcResp.Result, out); err != nil {
			return errors.NewUpstreamUnavailable(fmt.Sprintf("%s: decode rpc result: %v", method, err))
		}
	}
	return nil
}

// GetObject fetches on-chain object metadata with the BCS payload included.
// A missing or deleted object maps to NOT_FOUND.
func (c *Client) GetObject(ctx context.Context, objectID string) (*ObjectData, error) {
	options := map[string]bool{
		"showType":                true,
		"showPreviousTransaction": true,
		"showBcs":                 true,
	}

	var result ObjectResponse
	if err := c.call(ctx, "sui_getObject", []any{objectID, options}, &result); err != nil {
		return nil, err
	}

	if result.Error != nil {
		switch result.Error.Code {
		case "notExists", "deleted":
			return nil, errors.NewNotFound(objectID)
		default:
			return nil, errors.NewUpstreamUnavailable(fmt.Sprintf("sui_getObject: object error %q for %s", result.Error.Code, objectID))
		}
	}
	if result.Data == nil {
		return nil, errors.NewNotFound(objectID)
	}
	return result.Data, nil
}

// QueryTransactionBlocks fetches one page of transactions matching the filter.
// Cursor may be nil for the first page.
func (c *Client) QueryTransactionBlocks(ctx context.Context, filter TransactionFilter, cursor *string, limit int, descending bool) (*TransactionBlocksPage, error) {
	query := map[string]any{
		"filter":  filter,
		"options": map[string]bool{},
	}

	var page TransactionBlocksPage
	if err := c.call(ctx, "suix_queryTransactionBlocks", []any{query, cursor, limit, descending}, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetPackageVersions fetches one page of the version index for the lineage
// rooted at originalID. Not every endpoint implements the method; callers
// treat ErrMethodNotFound as a missing link, not a failure.
func (c *Client) GetPackageVersions(ctx context.Context, originalID string, cursor *string, limit int) (*PackageVersionsPage, error) {
	var page PackageVersionsPage
	if err := c.call(ctx, "suix_getPackageVersions", []any{originalID, cursor, limit}, &page); err != nil {
		return nil, err
	}
	return &page, nil
}
