// Package transfer implements the ledger's value-transfer collaborator as a
// JSON-RPC client against a settlement node. The node's send primitive is
// all-or-nothing: either the full amount is delivered and a transaction id
// comes back, or nothing moves and an error is returned.
package transfer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/fundsplit/libfundsplit-go/ledger"
	"github.com/fundsplit/libfundsplit-go/rates"
)

// RPCClient is a JSON-RPC 1.0 client for communicating with a settlement node.
// It handles request serialization, authentication, and response parsing.
type RPCClient struct {
	url    string
	user   string
	pass   string
	client *http.Client
	nextID atomic.Int64
}

// rpcRequest represents a JSON-RPC 1.0 request payload.
type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int64         `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

// rpcResponse represents a JSON-RPC 1.0 response payload.
type rpcResponse struct {
	ID     int64           `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

// rpcError represents an error returned by the JSON-RPC server.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// NewRPCClient creates a new JSON-RPC client with the given configuration.
// The client uses HTTP Basic Auth when User is non-empty, and maintains
// a connection pool for efficient reuse.
func NewRPCClient(cfg RPCConfig) *RPCClient {
	return &RPCClient{
		url:  cfg.URL,
		user: cfg.User,
		pass: cfg.Password,
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				MaxIdleConnsPerHost: 10,
			},
		},
	}
}

// Call invokes a JSON-RPC method on the settlement node. It serializes the
// request, sends it with optional Basic Auth, and deserializes the response
// into result.
//
// Call returns ErrConnectionFailed if the HTTP request fails, and
// ErrInvalidResponse if the response cannot be decoded. RPC-level errors are
// returned wrapping ErrTransferRejected with the server's error message.
func (c *RPCClient) Call(ctx context.Context, method string, params []interface{}, result interface{}) error {
	if params == nil {
		params = []interface{}{}
	}
	reqBody := rpcRequest{
		JSONRPC: "1.0",
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("transfer: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("transfer: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.user != "" {
		req.SetBasicAuth(c.user, c.pass)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%w: HTTP %d: %s", ErrConnectionFailed, resp.StatusCode, string(respBody))
	}

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return fmt.Errorf("%w: decode response: %w", ErrInvalidResponse, err)
	}

	if rpcResp.ID != reqBody.ID {
		return fmt.Errorf("%w: response ID mismatch: expected %d, got %d",
			ErrInvalidResponse, reqBody.ID, rpcResp.ID)
	}

	if rpcResp.Error != nil {
		return fmt.Errorf("%w: rpc error %d: %s", ErrTransferRejected, rpcResp.Error.Code, rpcResp.Error.Message)
	}

	if result != nil {
		if err := json.Unmarshal(rpcResp.Result, result); err != nil {
			return fmt.Errorf("%w: decode result: %w", ErrInvalidResponse, err)
		}
	}
	return nil
}

// RPCTransferrer implements ledger.Transferrer over an RPCClient.
type RPCTransferrer struct {
	client   *RPCClient
	decimals uint32
}

// Compile-time interface check.
var _ ledger.Transferrer = (*RPCTransferrer)(nil)

// NewRPCTransferrer wraps an RPC client as a ledger transfer collaborator.
// decimals is the settlement currency precision used to render amounts.
func NewRPCTransferrer(client *RPCClient, decimals uint32) *RPCTransferrer {
	return &RPCTransferrer{client: client, decimals: decimals}
}

// Transfer sends amount (in smallest settlement units) to the claimant's
// address via the node's sendtoaddress method. The node returns a txid on
// success; any error means no value was delivered.
func (t *RPCTransferrer) Transfer(ctx context.Context, toAddress string, amount uint64) error {
	var txid string
	params := []interface{}{toAddress, rates.FormatAmount(amount, t.decimals)}
	if err := t.client.Call(ctx, "sendtoaddress", params, &txid); err != nil {
		return err
	}
	if txid == "" {
		return fmt.Errorf("%w: empty txid", ErrInvalidResponse)
	}
	return nil
}
