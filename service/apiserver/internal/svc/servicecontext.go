package svc

import (
	"math/rand"
	"time"

	"github.com/eko/gocache/v2/store"
	"github.com/go-redis/redis/v8"
	gocache "github.com/patrickmn/go-cache"
	"github.com/zeromicro/go-zero/core/logx"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/picha-labs/picha/canister"
	"github.com/picha-labs/picha/common/events"
	"github.com/picha-labs/picha/common/secret"
	"github.com/picha-labs/picha/core/engine"
	"github.com/picha-labs/picha/core/evolution"
	"github.com/picha-labs/picha/core/prompt"
	"github.com/picha-labs/picha/core/tracker"
	"github.com/picha-labs/picha/dao/combination"
	"github.com/picha-labs/picha/dao/mintevent"
	"github.com/picha-labs/picha/dao/nft"
	"github.com/picha-labs/picha/dao/socialauth"
	"github.com/picha-labs/picha/dao/waitlist"
	"github.com/picha-labs/picha/service/apiserver/internal/config"
	"github.com/picha-labs/picha/social"
	"github.com/picha-labs/picha/stability"
)

type ServiceContext struct {
	Config config.Config

	DB          *gorm.DB
	RedisClient *redis.Client

	NftModel          nft.NftModel
	CombinationModel  combination.CombinationModel
	WaitlistModel     waitlist.WaitlistModel
	SocialAuthModel   socialauth.SocialAuthModel
	SocialMetricModel socialauth.SocialMetricModel
	MintEventModel    mintevent.MintEventModel

	Tracker         *tracker.Tracker
	PromptGenerator *prompt.Generator
	Evolution       *evolution.Engine
	Engine          *engine.Engine

	CanisterClient  *canister.Client
	StabilityClient *stability.Client
	SocialClient    *social.Client
	Cipher          *secret.Cipher
	Publisher       *events.Publisher

	// MemCache holds short-lived state such as pending oauth request
	// tokens keyed by token.
	MemCache *gocache.Cache
}

func NewServiceContext(c config.Config) *ServiceContext {
	db, err := gorm.Open(postgres.Open(c.Postgres.DataSource))
	if err != nil {
		logx.Must(err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     c.CacheRedis.Address,
		Password: c.CacheRedis.Password,
	})

	canisterClient, err := canister.NewClient(c.Canister)
	if err != nil {
		logx.Must(err)
	}

	combinationModel := combination.NewCombinationModel(db)
	nftModel := nft.NewNftModel(db)
	mintEventModel := mintevent.NewMintEventModel(db)
	memCache := gocache.New(gocache.NoExpiration, 10*time.Minute)

	scarcityTracker := tracker.New(combinationModel, store.NewRedis(redisClient, nil))
	promptGenerator := prompt.NewGenerator()
	evolutionEngine := evolution.NewEngine(rand.NewSource(time.Now().UnixNano()))
	stabilityClient := stability.NewClient(c.Stability)
	publisher := events.NewPublisher(redisClient)

	return &ServiceContext{
		Config:      c,
		DB:          db,
		RedisClient: redisClient,

		NftModel:          nftModel,
		CombinationModel:  combinationModel,
		WaitlistModel:     waitlist.NewWaitlistModel(db),
		SocialAuthModel:   socialauth.NewSocialAuthModel(db),
		SocialMetricModel: socialauth.NewSocialMetricModel(db),
		MintEventModel:    mintEventModel,

		Tracker:         scarcityTracker,
		PromptGenerator: promptGenerator,
		Evolution:       evolutionEngine,
		Engine: engine.New(engine.Params{
			NftModel:        nftModel,
			MintEventModel:  mintEventModel,
			Tracker:         scarcityTracker,
			Prompts:         promptGenerator,
			Evolution:       evolutionEngine,
			Canister:        canisterClient,
			Stability:       stabilityClient,
			Publisher:       publisher,
			EvolutionPeriod: time.Duration(c.Evolution.PeriodDays) * 24 * time.Hour,
			DriftStrength:   c.Evolution.DriftStrength,
		}),

		CanisterClient:  canisterClient,
		StabilityClient: stabilityClient,
		SocialClient:    social.NewClient(c.Social),
		Cipher:          secret.NewCipher(c.Secret.Passphrase),
		Publisher:       publisher,

		MemCache: memCache,
	}
}
