package social

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// reference values from the published OAuth 1.0a signing walkthrough
func TestSignMatchesReferenceVector(t *testing.T) {
	s := newSigner("xvz1evFS4wEEPTGEFPHBog", "kAcSOqF21Fu85e7zjz7ZN2U4ZRhfV3WpwPAoE3Z7kBw")
	s.nonce = func() string { return "kYjzVBB8Y0ZFabxSWbWovY3uYSQ2pTgmZeNu2VS4cg" }
	s.now = func() time.Time { return time.Unix(1318622958, 0) }

	params := url.Values{}
	params.Set("include_entities", "true")
	params.Set("status", "Hello Ladies + Gentlemen, a signed OAuth request!")

	header := s.sign("POST", "https://api.twitter.com/1.1/statuses/update.json", params,
		"370773112-GmHxMAgYyLbNEtIKZeRNFsMKPR9EyMZeS9weJAEb",
		"LswwdoUaIvS8ltyTt5jkRh4J50vUPVVHtR2YPi5kE", nil)

	assert.Contains(t, header, `oauth_signature="hCtSmYh%2BiHYCEqBWrE7C7hYmtUk%3D"`)
	assert.Contains(t, header, `oauth_consumer_key="xvz1evFS4wEEPTGEFPHBog"`)
	assert.Contains(t, header, `oauth_signature_method="HMAC-SHA1"`)
}

func TestSignOmitsEmptyToken(t *testing.T) {
	s := newSigner("key", "secret")
	header := s.sign("POST", "https://api.twitter.com/oauth/request_token", nil, "", "",
		map[string]string{"oauth_callback": "https://picha.example/auth/x-callback"})

	assert.NotContains(t, header, "oauth_token=")
	assert.Contains(t, header, "oauth_callback=")
}

func TestPercentEncode(t *testing.T) {
	assert.Equal(t, "Ladies%20%2B%20Gentlemen", percentEncode("Ladies + Gentlemen"))
	assert.Equal(t, "abc-._~XYZ123", percentEncode("abc-._~XYZ123"))
	assert.Equal(t, "%E2%98%83", percentEncode("☃"))
}
