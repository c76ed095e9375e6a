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
 *
 */

package mintevent

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/picha-labs/picha/types"
)

const (
	TableName = `mint_event`
)

var saveMintEventMetric = prometheus.NewGauge(prometheus.GaugeOpts{
	Namespace: "picha",
	Name:      "mint_event_save_db",
	Help:      "mint event save into db",
})

type (
	// MintEventModel records the public mint feed shown on the landing
	// page and replayed to fresh websocket subscribers, together with
	// the canister outcome of each mint for the admin retry path.
	MintEventModel interface {
		CreateMintEventTable() error
		DropMintEventTable() error
		CreateMintEvent(event *MintEvent) error
		GetRecentMintEvents(limit int) (events []*MintEvent, err error)
		GetMintEventByNftId(nftId string) (event *MintEvent, err error)
		UpdateMintOutcome(nftId, canisterStatus, failureReason string) error
		IncrementRetryCount(nftId string) error
	}

	defaultMintEventModel struct {
		table string
		DB    *gorm.DB
	}

	MintEvent struct {
		gorm.Model
		NftId          string `gorm:"index:idx_mint_nft_id,unique"`
		Artist         string `gorm:"index"`
		EventType      string `gorm:"index"`
		MintNumber     int64
		TotalSupply    int64
		RarityTier     string
		CanisterStatus string
		// FailureReason holds the last canister error for mints that
		// did not land on chain, cleared once a retry succeeds.
		FailureReason string
		RetryCount    int64
	}
)

func NewMintEventModel(db *gorm.DB) MintEventModel {
	_ = prometheus.Register(saveMintEventMetric)
	return &defaultMintEventModel{
		table: TableName,
		DB:    db,
	}
}

func (*MintEvent) TableName() string {
	return TableName
}

func (m *defaultMintEventModel) CreateMintEventTable() error {
	return m.DB.AutoMigrate(MintEvent{})
}

func (m *defaultMintEventModel) DropMintEventTable() error {
	return m.DB.Migrator().DropTable(m.table)
}

func (m *defaultMintEventModel) CreateMintEvent(event *MintEvent) error {
	start := time.Now()
	dbTx := m.DB.Table(m.table).Create(event)
	saveMintEventMetric.Set(float64(time.Since(start).Milliseconds()))
	if dbTx.Error != nil {
		return types.DbErrSqlOperation
	}
	return nil
}

func (m *defaultMintEventModel) GetRecentMintEvents(limit int) (events []*MintEvent, err error) {
	dbTx := m.DB.Table(m.table).Order("created_at desc").Limit(limit).Find(&events)
	if dbTx.Error != nil {
		return nil, types.DbErrSqlOperation
	}
	return events, nil
}

func (m *defaultMintEventModel) GetMintEventByNftId(nftId string) (event *MintEvent, err error) {
	dbTx := m.DB.Table(m.table).Where("nft_id = ?", nftId).Limit(1).Find(&event)
	if dbTx.Error != nil {
		return nil, types.DbErrSqlOperation
	} else if dbTx.RowsAffected == 0 {
		return nil, types.DbErrNotFound
	}
	return event, nil
}

func (m *defaultMintEventModel) UpdateMintOutcome(nftId, canisterStatus, failureReason string) error {
	dbTx := m.DB.Table(m.table).Where("nft_id = ?", nftId).Updates(map[string]interface{}{
		"canister_status": canisterStatus,
		"failure_reason":  failureReason,
	})
	if dbTx.Error != nil {
		return types.DbErrSqlOperation
	} else if dbTx.RowsAffected == 0 {
		return types.DbErrNotFound
	}
	return nil
}

func (m *defaultMintEventModel) IncrementRetryCount(nftId string) error {
	dbTx := m.DB.Table(m.table).Where("nft_id = ?", nftId).
		Update("retry_count", gorm.Expr("retry_count + 1"))
	if dbTx.Error != nil {
		return types.DbErrSqlOperation
	} else if dbTx.RowsAffected == 0 {
		return types.DbErrNotFound
	}
	return nil
}
