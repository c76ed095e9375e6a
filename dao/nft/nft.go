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

package nft

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/picha-labs/picha/types"
)

const (
	CanisterStatusPendingMint  = "pending_mint"
	CanisterStatusMinted       = "minted"
	CanisterStatusFailedMint   = "failed_mint"
	CanisterStatusFailedUpdate = "failed_update"
)

const (
	TableName = `nft`
)

var (
	saveNftMetric = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "picha",
		Name:      "nft_save_db",
		Help:      "nft save into db",
	})
	updateNftMetric = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "picha",
		Name:      "nft_update_db",
		Help:      "nft update in db",
	})
)

type (
	NftModel interface {
		CreateNftTable() error
		DropNftTable() error
		CreateNft(nft *Nft) error
		GetNftById(nftId string) (nft *Nft, err error)
		GetNftsByOwner(owner string, limit, offset int) (nfts []*Nft, err error)
		GetNfts(limit, offset int) (nfts []*Nft, err error)
		GetNftsTotalCount() (count int64, err error)
		GetNftsDueForEvolution(before time.Time, limit int) (nfts []*Nft, err error)
		GetNftsByCanisterStatus(status string, limit int) (nfts []*Nft, err error)
		UpdateNftInTx(nft *Nft) error
		UpdateCanisterStatus(nftId string, status string, tokenId int64) error
		GetCanisterStatusCounts() (counts map[string]int64, err error)
	}

	defaultNftModel struct {
		table string
		DB    *gorm.DB
	}

	Nft struct {
		gorm.Model
		NftId              string `gorm:"index:idx_nft_id,unique"`
		Artist             string `gorm:"index"`
		EventType          string `gorm:"index"`
		GenerationMode     string
		PromptUsed         string
		ImageUrl           string
		OwnerPrincipal     string `gorm:"index"`
		OwnerAccountId     string
		GeneticTraits      string
		UniquenessFactors  string
		EvolutionHistory   string
		EvolutionVersion   int64
		RarityScore        float64
		EvolutionPeriodSec int64
		LastEvolvedAt      time.Time `gorm:"index"`
		CanisterStatus     string    `gorm:"index"`
		CanisterTokenId    int64
	}
)

func NewNftModel(db *gorm.DB) NftModel {
	_ = prometheus.Register(saveNftMetric)
	_ = prometheus.Register(updateNftMetric)
	return &defaultNftModel{
		table: TableName,
		DB:    db,
	}
}

func (*Nft) TableName() string {
	return TableName
}

func (m *defaultNftModel) CreateNftTable() error {
	return m.DB.AutoMigrate(Nft{})
}

func (m *defaultNftModel) DropNftTable() error {
	return m.DB.Migrator().DropTable(m.table)
}

func (m *defaultNftModel) CreateNft(nft *Nft) error {
	start := time.Now()
	dbTx := m.DB.Table(m.table).Create(nft)
	saveNftMetric.Set(float64(time.Since(start).Milliseconds()))
	if dbTx.Error != nil {
		return types.DbErrSqlOperation
	}
	return nil
}

func (m *defaultNftModel) GetNftById(nftId string) (nft *Nft, err error) {
	dbTx := m.DB.Table(m.table).Where("nft_id = ?", nftId).Limit(1).Find(&nft)
	if dbTx.Error != nil {
		return nil, types.DbErrSqlOperation
	} else if dbTx.RowsAffected == 0 {
		return nil, types.DbErrNotFound
	}
	return nft, nil
}

func (m *defaultNftModel) GetNftsByOwner(owner string, limit, offset int) (nfts []*Nft, err error) {
	dbTx := m.DB.Table(m.table).Where("owner_principal = ?", owner).
		Order("created_at desc").Limit(limit).Offset(offset).Find(&nfts)
	if dbTx.Error != nil {
		return nil, types.DbErrSqlOperation
	} else if dbTx.RowsAffected == 0 {
		return nil, types.DbErrNotFound
	}
	return nfts, nil
}

func (m *defaultNftModel) GetNfts(limit, offset int) (nfts []*Nft, err error) {
	dbTx := m.DB.Table(m.table).Order("created_at desc").Limit(limit).Offset(offset).Find(&nfts)
	if dbTx.Error != nil {
		return nil, types.DbErrSqlOperation
	} else if dbTx.RowsAffected == 0 {
		return nil, types.DbErrNotFound
	}
	return nfts, nil
}

func (m *defaultNftModel) GetNftsTotalCount() (count int64, err error) {
	dbTx := m.DB.Table(m.table).Where("deleted_at is NULL").Count(&count)
	if dbTx.Error != nil {
		return 0, types.DbErrSqlOperation
	}
	return count, nil
}

func (m *defaultNftModel) GetNftsDueForEvolution(before time.Time, limit int) (nfts []*Nft, err error) {
	dbTx := m.DB.Table(m.table).
		Where("last_evolved_at + evolution_period_sec * interval '1 second' <= ?", before).
		Order("last_evolved_at asc").Limit(limit).Find(&nfts)
	if dbTx.Error != nil {
		return nil, types.DbErrSqlOperation
	} else if dbTx.RowsAffected == 0 {
		return nil, types.DbErrNotFound
	}
	return nfts, nil
}

func (m *defaultNftModel) GetNftsByCanisterStatus(status string, limit int) (nfts []*Nft, err error) {
	dbTx := m.DB.Table(m.table).Where("canister_status = ?", status).
		Order("updated_at asc").Limit(limit).Find(&nfts)
	if dbTx.Error != nil {
		return nil, types.DbErrSqlOperation
	} else if dbTx.RowsAffected == 0 {
		return nil, types.DbErrNotFound
	}
	return nfts, nil
}

func (m *defaultNftModel) UpdateNftInTx(nft *Nft) error {
	start := time.Now()
	dbTx := m.DB.Table(m.table).Where("nft_id = ?", nft.NftId).
		Select("*").Omit("id", "created_at").Updates(nft)
	updateNftMetric.Set(float64(time.Since(start).Milliseconds()))
	if dbTx.Error != nil {
		return types.DbErrSqlOperation
	} else if dbTx.RowsAffected == 0 {
		return types.DbErrNotFound
	}
	return nil
}

func (m *defaultNftModel) GetCanisterStatusCounts() (counts map[string]int64, err error) {
	var rows []struct {
		CanisterStatus string
		Total          int64
	}
	dbTx := m.DB.Table(m.table).Select("canister_status, count(*) as total").
		Group("canister_status").Find(&rows)
	if dbTx.Error != nil {
		return nil, types.DbErrSqlOperation
	}
	counts = make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.CanisterStatus] = row.Total
	}
	return counts, nil
}

func (m *defaultNftModel) UpdateCanisterStatus(nftId string, status string, tokenId int64) error {
	updates := map[string]interface{}{"canister_status": status}
	if tokenId > 0 {
		updates["canister_token_id"] = tokenId
	}
	dbTx := m.DB.Table(m.table).Where("nft_id = ?", nftId).Updates(updates)
	if dbTx.Error != nil {
		return types.DbErrSqlOperation
	} else if dbTx.RowsAffected == 0 {
		return types.DbErrNotFound
	}
	return nil
}
