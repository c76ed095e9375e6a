package socialauth

import (
	"time"

	"gorm.io/gorm"

	"github.com/picha-labs/picha/types"
)

const (
	MetricTableName = `social_metric`
)

type (
	SocialMetricModel interface {
		CreateSocialMetricTable() error
		DropSocialMetricTable() error
		CreateMetric(metric *SocialMetric) error
		GetLatestMetric(walletPrincipal string) (metric *SocialMetric, err error)
		GetMetricsSince(walletPrincipal string, since time.Time) (metrics []*SocialMetric, err error)
	}

	defaultSocialMetricModel struct {
		table string
		DB    *gorm.DB
	}

	// SocialMetric is one social signal snapshot used by an evolution
	// cycle, kept for history and auditability.
	SocialMetric struct {
		gorm.Model
		WalletPrincipal string `gorm:"index"`
		Platform        string
		EngagementScore float64
		SentimentScore  float64
		MentionCount    int64
		PostFrequency   float64
		KeywordMatches  int64
	}
)

func NewSocialMetricModel(db *gorm.DB) SocialMetricModel {
	return &defaultSocialMetricModel{
		table: MetricTableName,
		DB:    db,
	}
}

func (*SocialMetric) TableName() string {
	return MetricTableName
}

func (m *defaultSocialMetricModel) CreateSocialMetricTable() error {
	return m.DB.AutoMigrate(SocialMetric{})
}

func (m *defaultSocialMetricModel) DropSocialMetricTable() error {
	return m.DB.Migrator().DropTable(m.table)
}

func (m *defaultSocialMetricModel) CreateMetric(metric *SocialMetric) error {
	dbTx := m.DB.Table(m.table).Create(metric)
	if dbTx.Error != nil {
		return types.DbErrSqlOperation
	}
	return nil
}

func (m *defaultSocialMetricModel) GetLatestMetric(walletPrincipal string) (metric *SocialMetric, err error) {
	dbTx := m.DB.Table(m.table).Where("wallet_principal = ?", walletPrincipal).
		Order("created_at desc").Limit(1).Find(&metric)
	if dbTx.Error != nil {
		return nil, types.DbErrSqlOperation
	} else if dbTx.RowsAffected == 0 {
		return nil, types.DbErrNotFound
	}
	return metric, nil
}

func (m *defaultSocialMetricModel) GetMetricsSince(walletPrincipal string, since time.Time) (metrics []*SocialMetric, err error) {
	dbTx := m.DB.Table(m.table).
		Where("wallet_principal = ? and created_at >= ?", walletPrincipal, since).
		Order("created_at asc").Find(&metrics)
	if dbTx.Error != nil {
		return nil, types.DbErrSqlOperation
	}
	return metrics, nil
}
