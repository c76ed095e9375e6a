package stability

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/picha-labs/picha/types"
)

func TestSeedStableAndBounded(t *testing.T) {
	a := Seed("location|timestamp|wallet")
	b := Seed("location|timestamp|wallet")
	assert.Equal(t, a, b)
	assert.GreaterOrEqual(t, a, int64(0))
	assert.Less(t, a, int64(1<<31-1))

	assert.NotEqual(t, a, Seed("other seed"))
}

func TestGenerateWritesImage(t *testing.T) {
	imageBytes := []byte("png-bytes")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.True(t, strings.HasSuffix(r.URL.Path, "/text-to-image"))

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.EqualValues(t, 1024, req["width"])
		assert.EqualValues(t, 30, req["steps"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"artifacts": []map[string]string{
				{"base64": base64.StdEncoding.EncodeToString(imageBytes), "finishReason": "SUCCESS"},
			},
		})
	}))
	defer server.Close()

	dir := t.TempDir()
	client := NewClient(Config{
		ApiKey: "test-key", Host: server.URL, ImageDir: dir, Timeout: 2 * time.Second,
	})

	urlPath, err := client.Generate(context.Background(), "nft-1", "a floating city", 42)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(urlPath, "/images/nft-1-"))

	written, err := ioutil.ReadFile(client.ImagePath(urlPath))
	require.NoError(t, err)
	assert.Equal(t, imageBytes, written)
}

func TestGenerateApiFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(Config{ApiKey: "bad", Host: server.URL, ImageDir: t.TempDir()})
	_, err := client.Generate(context.Background(), "nft-2", "prompt", 1)
	assert.ErrorIs(t, err, types.AppErrImageGeneration)
}

func TestImagePathStripsTraversal(t *testing.T) {
	client := NewClient(Config{ImageDir: "/srv/images"})
	assert.Equal(t, filepath.Join("/srv/images", "x.png"), client.ImagePath("/images/../../x.png"))
}
