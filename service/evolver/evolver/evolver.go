/*
 * Copyright © 2026 Picha Labs
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package evolver

import (
	"context"
	"math/rand"
	"time"

	"github.com/eko/gocache/v2/store"
	"github.com/go-redis/redis/v8"
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
	"github.com/picha-labs/picha/service/evolver/config"
	"github.com/picha-labs/picha/social"
	"github.com/picha-labs/picha/stability"
)

// Evolver owns the background lifecycle: the periodic evolution sweep
// over due NFTs and the canister retry queue.
type Evolver struct {
	Config config.Config

	nftModel          nft.NftModel
	socialAuthModel   socialauth.SocialAuthModel
	socialMetricModel socialauth.SocialMetricModel

	engine       *engine.Engine
	socialClient *social.Client
	cipher       *secret.Cipher
	redisClient  *redis.Client
}

func NewEvolver(c config.Config) (*Evolver, error) {
	db, err := gorm.Open(postgres.Open(c.Postgres.DataSource))
	if err != nil {
		return nil, err
	}
	redisClient := redis.NewClient(&redis.Options{
		Addr:     c.CacheRedis.Address,
		Password: c.CacheRedis.Password,
	})
	canisterClient, err := canister.NewClient(c.Canister)
	if err != nil {
		return nil, err
	}

	nftModel := nft.NewNftModel(db)
	combinationModel := combination.NewCombinationModel(db)

	return &Evolver{
		Config:            c,
		nftModel:          nftModel,
		socialAuthModel:   socialauth.NewSocialAuthModel(db),
		socialMetricModel: socialauth.NewSocialMetricModel(db),
		engine: engine.New(engine.Params{
			NftModel:        nftModel,
			MintEventModel:  mintevent.NewMintEventModel(db),
			Tracker:         tracker.New(combinationModel, store.NewRedis(redisClient, nil)),
			Prompts:         prompt.NewGenerator(),
			Evolution:       evolution.NewEngine(rand.NewSource(time.Now().UnixNano())),
			Canister:        canisterClient,
			Stability:       stability.NewClient(c.Stability),
			Publisher:       events.NewPublisher(redisClient),
			EvolutionPeriod: time.Duration(c.Evolution.PeriodDays) * 24 * time.Hour,
			DriftStrength:   c.Evolution.DriftStrength,
		}),
		socialClient: social.NewClient(c.Social),
		cipher:       secret.NewCipher(c.Secret.Passphrase),
		redisClient:  redisClient,
	}, nil
}

// EvolveDueNfts runs one sweep over NFTs whose evolution period has
// elapsed, feeding each owner's social signal into the cycle.
func (e *Evolver) EvolveDueNfts() error {
	ctx := context.Background()
	rows, err := e.engine.DueForEvolution(e.Config.Evolution.BatchSize)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	logx.Infof("evolving %d due nfts", len(rows))

	metricsByOwner := make(map[string]*evolution.SocialMetrics)
	for _, row := range rows {
		metrics, ok := metricsByOwner[row.OwnerPrincipal]
		if !ok {
			metrics = e.collectSocialMetrics(ctx, row.OwnerPrincipal)
			metricsByOwner[row.OwnerPrincipal] = metrics
		}
		if _, err := e.engine.EvolveNft(ctx, row, metrics); err != nil {
			logx.Errorf("failed to evolve nft %s, %v", row.NftId, err)
		}
	}
	return nil
}

// RetryCanisterMints re-drives NFTs stuck in failed or pending
// canister states.
func (e *Evolver) RetryCanisterMints() {
	retried, failed := e.engine.RetryCanister(context.Background(), e.Config.Evolution.BatchSize)
	if retried+failed > 0 {
		logx.Infof("canister retry pass finished: %d ok, %d still failing", retried, failed)
	}
}

// collectSocialMetrics pulls fresh posts for a connected owner and
// persists the snapshot. Owners without a connected account get nil.
func (e *Evolver) collectSocialMetrics(ctx context.Context, owner string) *evolution.SocialMetrics {
	auth, err := e.socialAuthModel.GetAuth(owner, socialauth.PlatformX)
	if err != nil {
		return nil
	}
	token, err := e.cipher.Decrypt(auth.AccessTokenSealed)
	if err != nil {
		logx.Errorf("failed to unseal access token for %s: %v", owner, err)
		return nil
	}
	tokenSecret, err := e.cipher.Decrypt(auth.AccessSecretSealed)
	if err != nil {
		logx.Errorf("failed to unseal access secret for %s: %v", owner, err)
		return nil
	}

	posts, err := e.socialClient.FetchRecentPosts(ctx, &social.AccessToken{
		Token: token, Secret: tokenSecret,
	}, 50)
	if err != nil {
		logx.Errorf("failed to fetch posts for %s: %v", owner, err)
		return nil
	}

	metrics := social.Measure(posts, e.Config.Evolution.SocialWindow, time.Now().UTC())
	if err := e.socialMetricModel.CreateMetric(&socialauth.SocialMetric{
		WalletPrincipal: owner,
		Platform:        socialauth.PlatformX,
		EngagementScore: metrics.EngagementScore,
		SentimentScore:  metrics.SentimentScore,
		MentionCount:    metrics.MentionCount,
		PostFrequency:   metrics.PostFrequency,
		KeywordMatches:  metrics.KeywordMatches,
	}); err != nil {
		logx.Errorf("failed to store social metrics for %s: %v", owner, err)
	}
	return metrics
}

func (e *Evolver) Shutdown() {
	_ = e.redisClient.Close()
}
