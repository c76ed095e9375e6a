// Package canister talks to the Internet Computer canister that holds
// the on-chain side of every NFT. Calls go through the network gateway
// with retry and exponential backoff.
package canister

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/picha-labs/picha/common/icp"
)

// gateway endpoints per network
var networkEndpoints = map[string]string{
	"local":   "http://localhost:8080",
	"mainnet": "https://ic0.app",
	"testnet": "https://testnet.dfinity.network",
}

const (
	defaultTimeout    = 30 * time.Second
	defaultMaxRetries = 3
)

// CanisterError carries the canister-side error code alongside the
// message.
type CanisterError struct {
	Code    string
	Message string
}

func (e *CanisterError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("canister: %s (%s)", e.Message, e.Code)
	}
	return "canister: " + e.Message
}

// NftPayload is the metadata pushed to the canister on mint and on
// every evolution.
type NftPayload struct {
	NftId        string                 `json:"nft_id"`
	Name         string                 `json:"name"`
	Description  string                 `json:"description"`
	ImageUrl     string                 `json:"image_url"`
	Owner        string                 `json:"owner"`
	Version      int64                  `json:"version"`
	ScarcityInfo map[string]interface{} `json:"scarcity_info"`
	Attributes   map[string]string      `json:"attributes"`
	// TraitAttributes is the OpenSea style attribute array.
	TraitAttributes json.RawMessage `json:"trait_attributes,omitempty"`
}

// MintResult is the canister's answer to a successful mint.
type MintResult struct {
	TokenId int64  `json:"token_id"`
	TxId    string `json:"tx_id"`
}

// Status describes canister health.
type Status struct {
	Healthy    bool   `json:"healthy"`
	CanisterId string `json:"canister_id"`
	Network    string `json:"network"`
	Cycles     int64  `json:"cycles"`
}

// Info is the static client configuration surface.
type Info struct {
	CanisterId string `json:"canister_id"`
	Network    string `json:"network"`
	Endpoint   string `json:"endpoint"`
	Timeout    string `json:"timeout"`
	MaxRetries int    `json:"max_retries"`
}

type Config struct {
	CanisterId string
	Network    string `json:",default=local,options=local|mainnet|testnet"`
	Timeout    time.Duration
	MaxRetries int
}

type Client struct {
	config   Config
	endpoint string
	http     *http.Client
}

func NewClient(config Config) (*Client, error) {
	endpoint, ok := networkEndpoints[config.Network]
	if !ok {
		return nil, errors.Errorf("canister: unknown network %q", config.Network)
	}
	if err := icp.ValidatePrincipal(config.CanisterId); err != nil {
		return nil, errors.Wrap(err, "canister: invalid canister id")
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = defaultMaxRetries
	}
	return &Client{
		config:   config,
		endpoint: endpoint,
		http:     &http.Client{Timeout: config.Timeout},
	}, nil
}

// WithEndpoint overrides the gateway endpoint, used by tests.
func (c *Client) WithEndpoint(endpoint string) *Client {
	c.endpoint = endpoint
	return c
}

// Mint registers a freshly generated NFT on chain.
func (c *Client) Mint(ctx context.Context, payload *NftPayload) (*MintResult, error) {
	result := &MintResult{}
	if err := c.call(ctx, "mint", payload, result); err != nil {
		return nil, err
	}
	return result, nil
}

// GetNft reads the on-chain record of one NFT.
func (c *Client) GetNft(ctx context.Context, nftId string) (*NftPayload, error) {
	payload := &NftPayload{}
	if err := c.call(ctx, "get_nft", map[string]string{"nft_id": nftId}, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// UpdateNft replaces the metadata of an already minted NFT after an
// evolution.
func (c *Client) UpdateNft(ctx context.Context, payload *NftPayload) error {
	return c.call(ctx, "update_nft", payload, nil)
}

// ListNfts returns every NFT the canister holds.
func (c *Client) ListNfts(ctx context.Context) ([]*NftPayload, error) {
	var payloads []*NftPayload
	if err := c.call(ctx, "list_all_nfts", struct{}{}, &payloads); err != nil {
		return nil, err
	}
	return payloads, nil
}

// CheckStatus queries canister health without retrying.
func (c *Client) CheckStatus(ctx context.Context) (*Status, error) {
	status := &Status{CanisterId: c.config.CanisterId, Network: c.config.Network}
	if err := c.callOnce(ctx, "status", struct{}{}, status); err != nil {
		status.Healthy = false
		return status, err
	}
	status.Healthy = true
	return status, nil
}

// GetInfo reports the client configuration.
func (c *Client) GetInfo() *Info {
	return &Info{
		CanisterId: c.config.CanisterId,
		Network:    c.config.Network,
		Endpoint:   c.endpoint,
		Timeout:    c.config.Timeout.String(),
		MaxRetries: c.config.MaxRetries,
	}
}

func (c *Client) call(ctx context.Context, method string, request, response interface{}) error {
	var lastErr error
	for attempt := 0; attempt < c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			wait := time.Duration(1<<uint(attempt-1)) * time.Second
			logx.WithContext(ctx).Infof("canister %s attempt %d failed, retrying in %s: %v",
				method, attempt, wait, lastErr)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		lastErr = c.callOnce(ctx, method, request, response)
		if lastErr == nil {
			return nil
		}
		// canister-side rejections are not transient
		if _, ok := lastErr.(*CanisterError); ok {
			return lastErr
		}
	}
	return errors.Wrapf(lastErr, "canister: all %d attempts for %s failed", c.config.MaxRetries, method)
}

func (c *Client) callOnce(ctx context.Context, method string, request, response interface{}) error {
	body, err := json.Marshal(request)
	if err != nil {
		return errors.Wrap(err, "canister: marshal request")
	}
	url := fmt.Sprintf("%s/api/v2/canister/%s/call/%s", c.endpoint, c.config.CanisterId, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "canister: build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "canister: call gateway")
	}
	defer resp.Body.Close()

	raw, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "canister: read response")
	}
	if resp.StatusCode != http.StatusOK {
		var rejection struct {
			Code    string `json:"error_code"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(raw, &rejection); err == nil && rejection.Message != "" {
			return &CanisterError{Code: rejection.Code, Message: rejection.Message}
		}
		return errors.Errorf("canister: gateway returned %d", resp.StatusCode)
	}
	if response == nil {
		return nil
	}
	if err := json.Unmarshal(raw, response); err != nil {
		return errors.Wrap(err, "canister: decode response")
	}
	return nil
}
