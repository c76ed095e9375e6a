// Package social connects wallets to X accounts through the OAuth 1.0a
// three-legged flow and pulls recent posts for the evolution engine's
// social signal.
package social

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/picha-labs/picha/core/evolution"
)

const (
	requestTokenUrl = "https://api.twitter.com/oauth/request_token"
	authorizeUrl    = "https://api.twitter.com/oauth/authorize"
	accessTokenUrl  = "https://api.twitter.com/oauth/access_token"
	userTimelineUrl = "https://api.twitter.com/1.1/statuses/user_timeline.json"
	verifyUrl       = "https://api.twitter.com/1.1/account/verify_credentials.json"
)

type Config struct {
	ConsumerKey    string
	ConsumerSecret string
	CallbackUrl    string
	Timeout        time.Duration
}

type Client struct {
	config Config
	signer *signer
	http   *http.Client
}

// RequestToken is the first OAuth leg's result; Secret must survive
// until the callback arrives.
type RequestToken struct {
	Token        string
	Secret       string
	AuthorizeUrl string
}

// AccessToken is the credential pair stored, sealed, per wallet.
type AccessToken struct {
	Token      string
	Secret     string
	UserId     string
	ScreenName string
}

// Post is one fetched social post.
type Post struct {
	Text        string
	LikeCount   int64
	RepostCount int64
	ReplyCount  int64
	PostedAt    time.Time
}

func NewClient(config Config) *Client {
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}
	return &Client{
		config: config,
		signer: newSigner(config.ConsumerKey, config.ConsumerSecret),
		http:   &http.Client{Timeout: config.Timeout},
	}
}

// InitiateAuth starts the three-legged flow and returns the url the
// browser should be sent to.
func (c *Client) InitiateAuth(ctx context.Context) (*RequestToken, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, requestTokenUrl, nil)
	if err != nil {
		return nil, errors.Wrap(err, "social: build request token call")
	}
	c.signer.authorize(req, "", "", map[string]string{"oauth_callback": c.config.CallbackUrl})

	values, err := c.formCall(req)
	if err != nil {
		return nil, err
	}
	token := values.Get("oauth_token")
	if token == "" {
		return nil, errors.New("social: empty request token")
	}
	return &RequestToken{
		Token:        token,
		Secret:       values.Get("oauth_token_secret"),
		AuthorizeUrl: authorizeUrl + "?oauth_token=" + url.QueryEscape(token),
	}, nil
}

// CompleteAuth exchanges the callback verifier for a permanent access
// token.
func (c *Client) CompleteAuth(ctx context.Context, requestToken, requestSecret, verifier string) (*AccessToken, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, accessTokenUrl, nil)
	if err != nil {
		return nil, errors.Wrap(err, "social: build access token call")
	}
	c.signer.authorize(req, requestToken, requestSecret, map[string]string{"oauth_verifier": verifier})

	values, err := c.formCall(req)
	if err != nil {
		return nil, err
	}
	token := values.Get("oauth_token")
	if token == "" {
		return nil, errors.New("social: empty access token")
	}
	return &AccessToken{
		Token:      token,
		Secret:     values.Get("oauth_token_secret"),
		UserId:     values.Get("user_id"),
		ScreenName: values.Get("screen_name"),
	}, nil
}

// FetchRecentPosts pulls the user's latest posts.
func (c *Client) FetchRecentPosts(ctx context.Context, token *AccessToken, count int) ([]*Post, error) {
	if count <= 0 {
		count = 50
	}
	endpoint := userTimelineUrl + "?count=" + strconv.Itoa(count) + "&tweet_mode=extended"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, "social: build timeline call")
	}
	c.signer.authorize(req, token.Token, token.Secret, nil)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "social: call timeline")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("social: timeline returned %d", resp.StatusCode)
	}

	var raw []struct {
		FullText      string `json:"full_text"`
		Text          string `json:"text"`
		FavoriteCount int64  `json:"favorite_count"`
		RetweetCount  int64  `json:"retweet_count"`
		ReplyCount    int64  `json:"reply_count"`
		CreatedAt     string `json:"created_at"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, errors.Wrap(err, "social: decode timeline")
	}

	posts := make([]*Post, 0, len(raw))
	for _, item := range raw {
		text := item.FullText
		if text == "" {
			text = item.Text
		}
		postedAt, _ := time.Parse(time.RubyDate, item.CreatedAt)
		posts = append(posts, &Post{
			Text:        text,
			LikeCount:   item.FavoriteCount,
			RepostCount: item.RetweetCount,
			ReplyCount:  item.ReplyCount,
			PostedAt:    postedAt,
		})
	}
	return posts, nil
}

// VerifyCredentials confirms a token pair still works and returns the
// account identity behind it. The token exchange sometimes omits the
// identity fields, this fills them in.
func (c *Client) VerifyCredentials(ctx context.Context, token *AccessToken) (*AccessToken, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, verifyUrl, nil)
	if err != nil {
		return nil, errors.Wrap(err, "social: build verify call")
	}
	c.signer.authorize(req, token.Token, token.Secret, nil)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "social: call verify")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("social: verify returned %d", resp.StatusCode)
	}

	var user struct {
		IdStr      string `json:"id_str"`
		ScreenName string `json:"screen_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, errors.Wrap(err, "social: decode verify response")
	}
	verified := *token
	verified.UserId = user.IdStr
	verified.ScreenName = user.ScreenName
	return &verified, nil
}

// Measure aggregates fetched posts into the evolution engine's social
// metrics for one cycle.
func Measure(posts []*Post, window time.Duration, now time.Time) *evolution.SocialMetrics {
	metrics := &evolution.SocialMetrics{}
	if len(posts) == 0 {
		return metrics
	}

	texts := make([]string, 0, len(posts))
	var recent int64
	for _, post := range posts {
		texts = append(texts, post.Text)
		metrics.EngagementScore += float64(post.LikeCount + post.RepostCount*2 + post.ReplyCount)
		if now.Sub(post.PostedAt) <= window {
			recent++
		}
	}
	metrics.MentionCount = int64(len(posts))
	metrics.SentimentScore = evolution.ScoreTexts(texts)
	metrics.KeywordMatches = evolution.CountKeywordMatches(texts)
	if window > 0 {
		days := window.Hours() / 24
		if days > 0 {
			metrics.PostFrequency = float64(recent) / days
		}
	}
	return metrics
}

func (c *Client) formCall(req *http.Request) (url.Values, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "social: oauth call")
	}
	defer resp.Body.Close()
	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "social: read oauth response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("social: oauth endpoint returned %d: %s", resp.StatusCode, body)
	}
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, errors.Wrap(err, "social: parse oauth response")
	}
	return values, nil
}
