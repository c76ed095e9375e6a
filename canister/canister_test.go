package canister

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCanisterId = "ryjl3-tyaaa-aaaaa-aaaba-cai"

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{
		CanisterId: testCanisterId,
		Network:    "local",
		Timeout:    2 * time.Second,
		MaxRetries: 2,
	})
	require.NoError(t, err)
	return client.WithEndpoint(server.URL), server
}

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient(Config{CanisterId: testCanisterId, Network: "devnet"})
	assert.Error(t, err)

	_, err = NewClient(Config{CanisterId: "not-a-principal", Network: "local"})
	assert.Error(t, err)
}

func TestMint(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/canister/"+testCanisterId+"/call/mint", r.URL.Path)
		var payload NftPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "nft-1", payload.NftId)
		json.NewEncoder(w).Encode(MintResult{TokenId: 7, TxId: "tx-abc"})
	}))

	result, err := client.Mint(context.Background(), &NftPayload{NftId: "nft-1", Owner: "aaaaa-aa"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), result.TokenId)
	assert.Equal(t, "tx-abc", result.TxId)
}

func TestCallRetriesTransientFailures(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(MintResult{TokenId: 1})
	}))

	_, err := client.Mint(context.Background(), &NftPayload{NftId: "nft-2"})
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestCallStopsOnCanisterRejection(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"error_code": "invalid_owner", "message": "owner principal rejected",
		})
	}))

	_, err := client.Mint(context.Background(), &NftPayload{NftId: "nft-3"})
	require.Error(t, err)

	var canisterErr *CanisterError
	require.ErrorAs(t, err, &canisterErr)
	assert.Equal(t, "invalid_owner", canisterErr.Code)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "rejections must not be retried")
}

func TestCheckStatus(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"cycles": 123456})
	}))

	status, err := client.CheckStatus(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Healthy)
	assert.Equal(t, int64(123456), status.Cycles)
	assert.Equal(t, testCanisterId, status.CanisterId)
}

func TestGetInfo(t *testing.T) {
	client, err := NewClient(Config{CanisterId: testCanisterId, Network: "mainnet"})
	require.NoError(t, err)

	info := client.GetInfo()
	assert.Equal(t, "mainnet", info.Network)
	assert.Equal(t, "https://ic0.app", info.Endpoint)
	assert.Equal(t, defaultMaxRetries, info.MaxRetries)
}
