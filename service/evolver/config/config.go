package config

import (
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/picha-labs/picha/canister"
	"github.com/picha-labs/picha/social"
	"github.com/picha-labs/picha/stability"
)

type Config struct {
	Postgres struct {
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
	Evolution struct {
		PeriodDays       int           `json:",default=30"`
		DriftStrength    float64       `json:",default=0.1"`
		SocialWindow     time.Duration `json:",default=168h"`
		BatchSize        int           `json:",default=50"`
		BacklogThreshold int64         `json:",default=200"`
	}
	LogConf logx.LogConf
}
