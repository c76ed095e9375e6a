// Package stability generates NFT artwork through the Stability AI
// text-to-image API and stores the results on local disk.
package stability

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/picha-labs/picha/types"
)

const (
	defaultHost   = "https://api.stability.ai"
	defaultEngine = "stable-diffusion-xl-1024-v1-0"

	imageWidth     = 1024
	imageHeight    = 1024
	cfgScale       = 7.5
	steps          = 30
	negativePrompt = "blurry, low quality, distorted, watermark, text, signature"
)

type Config struct {
	ApiKey   string
	Host     string `json:",optional"`
	Engine   string `json:",optional"`
	ImageDir string `json:",default=./data/images"`
	Timeout  time.Duration
}

type Client struct {
	config Config
	http   *http.Client
}

func NewClient(config Config) *Client {
	if config.Host == "" {
		config.Host = defaultHost
	}
	if config.Engine == "" {
		config.Engine = defaultEngine
	}
	if config.Timeout <= 0 {
		config.Timeout = 60 * time.Second
	}
	return &Client{
		config: config,
		http:   &http.Client{Timeout: config.Timeout},
	}
}

// Seed derives a stable generation seed from the combined uniqueness
// seed, so regenerating the same NFT reproduces its artwork.
func Seed(combined string) int64 {
	sum := sha256.Sum256([]byte(combined))
	v, _ := strconv.ParseInt(hex.EncodeToString(sum[:])[:8], 16, 64)
	return v % (1<<31 - 1)
}

type generationRequest struct {
	TextPrompts []textPrompt `json:"text_prompts"`
	CfgScale    float64      `json:"cfg_scale"`
	Width       int          `json:"width"`
	Height      int          `json:"height"`
	Steps       int          `json:"steps"`
	Seed        int64        `json:"seed"`
	Samples     int          `json:"samples"`
}

type textPrompt struct {
	Text   string  `json:"text"`
	Weight float64 `json:"weight"`
}

type generationResponse struct {
	Artifacts []struct {
		Base64       string `json:"base64"`
		FinishReason string `json:"finishReason"`
	} `json:"artifacts"`
}

// Generate renders the prompt and writes the png under the image dir,
// returning the relative url path for serving.
func (c *Client) Generate(ctx context.Context, nftId, prompt string, seed int64) (string, error) {
	reqBody := generationRequest{
		TextPrompts: []textPrompt{
			{Text: prompt, Weight: 1},
			{Text: negativePrompt, Weight: -1},
		},
		CfgScale: cfgScale,
		Width:    imageWidth,
		Height:   imageHeight,
		Steps:    steps,
		Seed:     seed,
		Samples:  1,
	}
	raw, err := json.Marshal(reqBody)
	if err != nil {
		return "", errors.Wrap(err, "stability: marshal request")
	}

	url := fmt.Sprintf("%s/v1/generation/%s/text-to-image", c.config.Host, c.config.Engine)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return "", errors.Wrap(err, "stability: build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.ApiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "stability: call api")
	}
	defer resp.Body.Close()

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "stability: read response")
	}
	if resp.StatusCode != http.StatusOK {
		logx.WithContext(ctx).Errorf("stability api returned %d: %s", resp.StatusCode, body)
		return "", types.AppErrImageGeneration
	}

	var generated generationResponse
	if err := json.Unmarshal(body, &generated); err != nil {
		return "", errors.Wrap(err, "stability: decode response")
	}
	if len(generated.Artifacts) == 0 {
		return "", types.AppErrImageGeneration
	}

	image, err := base64.StdEncoding.DecodeString(generated.Artifacts[0].Base64)
	if err != nil {
		return "", errors.Wrap(err, "stability: decode artifact")
	}
	return c.store(nftId, image)
}

func (c *Client) store(nftId string, image []byte) (string, error) {
	if err := os.MkdirAll(c.config.ImageDir, 0o755); err != nil {
		return "", errors.Wrap(err, "stability: create image dir")
	}
	name := fmt.Sprintf("%s-%d.png", nftId, time.Now().Unix())
	if err := ioutil.WriteFile(filepath.Join(c.config.ImageDir, name), image, 0o644); err != nil {
		return "", errors.Wrap(err, "stability: write image")
	}
	return "/images/" + name, nil
}

// ImagePath resolves a served url path back to the file on disk.
func (c *Client) ImagePath(urlPath string) string {
	return filepath.Join(c.config.ImageDir, filepath.Base(urlPath))
}
