package config

import (
	"time"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/rest"

	"github.com/picha-labs/picha/canister"
	"github.com/picha-labs/picha/service/apiserver/internal/flowctrl"
	"github.com/picha-labs/picha/social"
	"github.com/picha-labs/picha/stability"
)

type Config struct {
	rest.RestConf
	// CorsAllowOrigins lists the browser origins allowed to call the
	// api. The first entry doubles as the frontend base the oauth
	// callback redirects back to.
	CorsAllowOrigins []string `json:",optional"`
	Postgres         struct {
		DataSource string
	}
	CacheRedis struct {
		Address  string
		Password string `json:",optional"`
	}
	Canister  canister.Config
	Stability stability.Config
	Social    social.Config
	Secret    struct {
		Passphrase string
	}
	Admin struct {
		ApiKey string
	}
	Evolution struct {
		PeriodDays    int           `json:",default=30"`
		DriftStrength float64       `json:",default=0.1"`
		SocialWindow  time.Duration `json:",default=168h"`
	}
	Websocket struct {
		RateLimitMessages int           `json:",default=10"`
		RateLimitWindow   time.Duration `json:",default=5s"`
	}
	FlowControl flowctrl.FlowControlConfig `json:",optional"`
	LogConf     logx.LogConf
}

// FrontendBase is where browser driven flows land after the oauth
// redirect dance. Empty when no origins are configured.
func (c Config) FrontendBase() string {
	if len(c.CorsAllowOrigins) == 0 {
		return ""
	}
	return c.CorsAllowOrigins[0]
}
