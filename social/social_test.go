package social

import (
	"context"
	"io/ioutil"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTransport answers every request from a fixed function, keeping
// the client's hardwired provider urls out of the way.
type stubTransport func(*http.Request) (*http.Response, error)

func (f stubTransport) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func stubbedClient(status int, body string) *Client {
	c := NewClient(Config{ConsumerKey: "ck", ConsumerSecret: "cs"})
	c.http = &http.Client{Transport: stubTransport(func(*http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: status,
			Body:       ioutil.NopCloser(strings.NewReader(body)),
			Header:     make(http.Header),
		}, nil
	})}
	return c
}

func TestMeasureEmpty(t *testing.T) {
	metrics := Measure(nil, 7*24*time.Hour, time.Now())
	assert.Zero(t, metrics.MentionCount)
	assert.Zero(t, metrics.EngagementScore)
}

func TestMeasureAggregates(t *testing.T) {
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	posts := []*Post{
		{Text: "this NFT art is amazing", LikeCount: 10, RepostCount: 5, PostedAt: now.Add(-24 * time.Hour)},
		{Text: "terrible drop, total scam", LikeCount: 2, PostedAt: now.Add(-48 * time.Hour)},
		{Text: "old crypto post", LikeCount: 1, PostedAt: now.Add(-30 * 24 * time.Hour)},
	}

	metrics := Measure(posts, 7*24*time.Hour, now)
	assert.Equal(t, int64(3), metrics.MentionCount)
	assert.InDelta(t, 23, metrics.EngagementScore, 1e-9)
	assert.Greater(t, metrics.KeywordMatches, int64(0))
	// two of three posts fall inside the seven day window
	assert.InDelta(t, 2.0/7.0, metrics.PostFrequency, 1e-9)
}

func TestMeasureCountsReplies(t *testing.T) {
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	posts := []*Post{
		{Text: "gm", LikeCount: 1, RepostCount: 1, ReplyCount: 4, PostedAt: now},
	}
	metrics := Measure(posts, 7*24*time.Hour, now)
	assert.InDelta(t, 7, metrics.EngagementScore, 1e-9)
}

func TestFetchRecentPostsDecodesTimeline(t *testing.T) {
	c := stubbedClient(http.StatusOK, `[
		{"full_text":"hello art world","favorite_count":3,"retweet_count":2,"reply_count":1,
		 "created_at":"Mon Jan 02 15:04:05 -0700 2006"},
		{"text":"short one","favorite_count":1}
	]`)

	posts, err := c.FetchRecentPosts(context.Background(), &AccessToken{Token: "t", Secret: "s"}, 10)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "hello art world", posts[0].Text)
	assert.Equal(t, int64(3), posts[0].LikeCount)
	assert.Equal(t, int64(2), posts[0].RepostCount)
	assert.Equal(t, int64(1), posts[0].ReplyCount)
	assert.False(t, posts[0].PostedAt.IsZero())
	assert.Equal(t, "short one", posts[1].Text)
}

func TestVerifyCredentials(t *testing.T) {
	c := stubbedClient(http.StatusOK, `{"id_str":"12345","screen_name":"dali_fan"}`)

	verified, err := c.VerifyCredentials(context.Background(), &AccessToken{Token: "t", Secret: "s"})
	require.NoError(t, err)
	assert.Equal(t, "12345", verified.UserId)
	assert.Equal(t, "dali_fan", verified.ScreenName)
	assert.Equal(t, "t", verified.Token)
}

func TestVerifyCredentialsRejected(t *testing.T) {
	c := stubbedClient(http.StatusUnauthorized, `{}`)

	_, err := c.VerifyCredentials(context.Background(), &AccessToken{Token: "t", Secret: "s"})
	assert.Error(t, err)
}
