package transfer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRPCClientCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "testuser", user)
		assert.Equal(t, "testpass", pass)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "getbalance", req.Method)

		resp := rpcResponse{ID: req.ID, Result: json.RawMessage(`100`)}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewRPCClient(RPCConfig{URL: server.URL, User: "testuser", Password: "testpass"})
	var balance int
	err := client.Call(context.Background(), "getbalance", nil, &balance)
	require.NoError(t, err)
	assert.Equal(t, 100, balance)
}

func TestRPCClientConnectionError(t *testing.T) {
	client := NewRPCClient(RPCConfig{URL: "http://localhost:1"})
	var result int
	err := client.Call(context.Background(), "getbalance", nil, &result)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConnectionFailed)
}

func TestRPCTransferrer_Transfer(t *testing.T) {
	var gotParams []interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "sendtoaddress", req.Method)
		gotParams = req.Params

		resp := rpcResponse{ID: req.ID, Result: json.RawMessage(`"deadbeef"`)}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	tr := NewRPCTransferrer(NewRPCClient(RPCConfig{URL: server.URL}), 8)
	err := tr.Transfer(context.Background(), "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", 650_000_000)
	require.NoError(t, err)

	require.Len(t, gotParams, 2)
	assert.Equal(t, "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", gotParams[0])
	assert.Equal(t, "6.5", gotParams[1]) // 650_000_000 smallest units at 8 decimals
}

func TestRPCTransferrer_Rejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		resp := rpcResponse{
			ID:    req.ID,
			Error: &rpcError{Code: -6, Message: "Insufficient funds"},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	tr := NewRPCTransferrer(NewRPCClient(RPCConfig{URL: server.URL}), 8)
	err := tr.Transfer(context.Background(), "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransferRejected)
	assert.Contains(t, err.Error(), "Insufficient funds")
}

func TestResolveConfig(t *testing.T) {
	// Preset only.
	cfg, err := ResolveConfig(nil, nil, "regtest")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:18332", cfg.URL)

	// Environment overrides preset.
	env := map[string]string{"FUNDSPLIT_RPC_URL": "http://env:1234", "FUNDSPLIT_RPC_USER": "envuser"}
	cfg, err = ResolveConfig(nil, env, "regtest")
	require.NoError(t, err)
	assert.Equal(t, "http://env:1234", cfg.URL)
	assert.Equal(t, "envuser", cfg.User)

	// Explicit overrides beat environment.
	cfg, err = ResolveConfig(&RPCConfig{URL: "http://flag:9"}, env, "regtest")
	require.NoError(t, err)
	assert.Equal(t, "http://flag:9", cfg.URL)

	// Mainnet has no preset; unconfigured is an error.
	_, err = ResolveConfig(nil, nil, "mainnet")
	assert.Error(t, err)
}
