package socialauth

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/picha-labs/picha/types"
)

const (
	PlatformX = "x"
)

const (
	TableName = `social_auth`
)

type (
	SocialAuthModel interface {
		CreateSocialAuthTable() error
		DropSocialAuthTable() error
		// UpsertAuth stores or refreshes the encrypted token pair for a
		// wallet on one platform.
		UpsertAuth(auth *SocialAuth) error
		GetAuth(walletPrincipal, platform string) (auth *SocialAuth, err error)
		GetAuthsByPlatform(platform string, limit, offset int) (auths []*SocialAuth, err error)
		DeleteAuth(walletPrincipal, platform string) error
	}

	defaultSocialAuthModel struct {
		table string
		DB    *gorm.DB
	}

	// SocialAuth links a wallet to a social account. Token fields hold
	// secretbox-sealed values, never plaintext.
	SocialAuth struct {
		gorm.Model
		WalletPrincipal      string `gorm:"index:idx_wallet_platform,unique"`
		Platform             string `gorm:"index:idx_wallet_platform,unique"`
		SocialUserId         string `gorm:"index"`
		SocialUsername       string
		AccessTokenSealed    string
		AccessSecretSealed   string
	}
)

func NewSocialAuthModel(db *gorm.DB) SocialAuthModel {
	return &defaultSocialAuthModel{
		table: TableName,
		DB:    db,
	}
}

func (*SocialAuth) TableName() string {
	return TableName
}

func (m *defaultSocialAuthModel) CreateSocialAuthTable() error {
	return m.DB.AutoMigrate(SocialAuth{})
}

func (m *defaultSocialAuthModel) DropSocialAuthTable() error {
	return m.DB.Migrator().DropTable(m.table)
}

func (m *defaultSocialAuthModel) UpsertAuth(auth *SocialAuth) error {
	dbTx := m.DB.Table(m.table).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "wallet_principal"}, {Name: "platform"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"social_user_id", "social_username",
			"access_token_sealed", "access_secret_sealed", "updated_at",
		}),
	}).Create(auth)
	if dbTx.Error != nil {
		return types.DbErrSqlOperation
	}
	return nil
}

func (m *defaultSocialAuthModel) GetAuth(walletPrincipal, platform string) (auth *SocialAuth, err error) {
	dbTx := m.DB.Table(m.table).
		Where("wallet_principal = ? and platform = ?", walletPrincipal, platform).
		Limit(1).Find(&auth)
	if dbTx.Error != nil {
		return nil, types.DbErrSqlOperation
	} else if dbTx.RowsAffected == 0 {
		return nil, types.DbErrNotFound
	}
	return auth, nil
}

func (m *defaultSocialAuthModel) GetAuthsByPlatform(platform string, limit, offset int) (auths []*SocialAuth, err error) {
	dbTx := m.DB.Table(m.table).Where("platform = ?", platform).
		Order("id asc").Limit(limit).Offset(offset).Find(&auths)
	if dbTx.Error != nil {
		return nil, types.DbErrSqlOperation
	}
	return auths, nil
}

func (m *defaultSocialAuthModel) DeleteAuth(walletPrincipal, platform string) error {
	dbTx := m.DB.Table(m.table).
		Where("wallet_principal = ? and platform = ?", walletPrincipal, platform).
		Delete(&SocialAuth{})
	if dbTx.Error != nil {
		return types.DbErrSqlOperation
	}
	return nil
}
