package social

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// signer produces OAuth 1.0a HMAC-SHA1 authorization headers for the X
// API.
type signer struct {
	consumerKey    string
	consumerSecret string
	nonce          func() string
	now            func() time.Time
}

func newSigner(consumerKey, consumerSecret string) *signer {
	return &signer{
		consumerKey:    consumerKey,
		consumerSecret: consumerSecret,
		nonce:          randomNonce,
		now:            time.Now,
	}
}

func randomNonce() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// sign builds the Authorization header for one request. token and
// tokenSecret are empty during the request-token leg.
func (s *signer) sign(method, rawUrl string, params url.Values, token, tokenSecret string, extra map[string]string) string {
	oauth := map[string]string{
		"oauth_consumer_key":     s.consumerKey,
		"oauth_nonce":            s.nonce(),
		"oauth_signature_method": "HMAC-SHA1",
		"oauth_timestamp":        strconv.FormatInt(s.now().Unix(), 10),
		"oauth_version":          "1.0",
	}
	if token != "" {
		oauth["oauth_token"] = token
	}
	for k, v := range extra {
		oauth[k] = v
	}

	// signature base: every oauth and query parameter, percent encoded
	// and sorted
	all := url.Values{}
	for k, vs := range params {
		for _, v := range vs {
			all.Add(k, v)
		}
	}
	for k, v := range oauth {
		all.Set(k, v)
	}
	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		for _, v := range all[k] {
			pairs = append(pairs, percentEncode(k)+"="+percentEncode(v))
		}
	}
	base := strings.Join([]string{
		method,
		percentEncode(rawUrl),
		percentEncode(strings.Join(pairs, "&")),
	}, "&")

	signingKey := percentEncode(s.consumerSecret) + "&" + percentEncode(tokenSecret)
	mac := hmac.New(sha1.New, []byte(signingKey))
	mac.Write([]byte(base))
	oauth["oauth_signature"] = base64.StdEncoding.EncodeToString(mac.Sum(nil))

	headerKeys := make([]string, 0, len(oauth))
	for k := range oauth {
		headerKeys = append(headerKeys, k)
	}
	sort.Strings(headerKeys)
	headerPairs := make([]string, 0, len(headerKeys))
	for _, k := range headerKeys {
		headerPairs = append(headerPairs, fmt.Sprintf(`%s="%s"`, percentEncode(k), percentEncode(oauth[k])))
	}
	return "OAuth " + strings.Join(headerPairs, ", ")
}

func (s *signer) authorize(req *http.Request, token, tokenSecret string, extra map[string]string) {
	baseUrl := req.URL.Scheme + "://" + req.URL.Host + req.URL.Path
	req.Header.Set("Authorization",
		s.sign(req.Method, baseUrl, req.URL.Query(), token, tokenSecret, extra))
}

// percentEncode follows RFC 3986 as OAuth 1.0a requires, which differs
// from url.QueryEscape for space and tilde.
func percentEncode(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9',
			c == '-', c == '.', c == '_', c == '~':
			b.WriteByte(c)
		default:
			b.WriteString(fmt.Sprintf("%%%02X", c))
		}
	}
	return b.String()
}
