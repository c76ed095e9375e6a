package waitlist

import (
	"gorm.io/gorm"

	"github.com/picha-labs/picha/types"
)

const (
	TableName = `waitlist`
)

type (
	WaitlistModel interface {
		CreateWaitlistTable() error
		DropWaitlistTable() error
		// CreateEntry inserts an entry, returning AppErrAlreadyOnWaitlist
		// when the principal already waits for this combination.
		CreateEntry(entry *Waitlist) error
		GetEntries(artist, eventType string) (entries []*Waitlist, err error)
		GetPosition(artist, eventType, principal string) (position int64, err error)
		MarkNotified(id uint) error
	}

	defaultWaitlistModel struct {
		table string
		DB    *gorm.DB
	}

	Waitlist struct {
		gorm.Model
		Artist           string `gorm:"index:idx_wait_combo_wallet,unique"`
		EventType        string `gorm:"index:idx_wait_combo_wallet,unique"`
		WalletPrincipal  string `gorm:"index:idx_wait_combo_wallet,unique"`
		Email            string
		NotificationSent bool
	}
)

func NewWaitlistModel(db *gorm.DB) WaitlistModel {
	return &defaultWaitlistModel{
		table: TableName,
		DB:    db,
	}
}

func (*Waitlist) TableName() string {
	return TableName
}

func (m *defaultWaitlistModel) CreateWaitlistTable() error {
	return m.DB.AutoMigrate(Waitlist{})
}

func (m *defaultWaitlistModel) DropWaitlistTable() error {
	return m.DB.Migrator().DropTable(m.table)
}

func (m *defaultWaitlistModel) CreateEntry(entry *Waitlist) error {
	var existing Waitlist
	dbTx := m.DB.Table(m.table).
		Where("artist = ? and event_type = ? and wallet_principal = ?",
			entry.Artist, entry.EventType, entry.WalletPrincipal).
		Limit(1).Find(&existing)
	if dbTx.Error != nil {
		return types.DbErrSqlOperation
	} else if dbTx.RowsAffected > 0 {
		return types.AppErrAlreadyOnWaitlist
	}

	dbTx = m.DB.Table(m.table).Create(entry)
	if dbTx.Error != nil {
		return types.DbErrSqlOperation
	}
	return nil
}

func (m *defaultWaitlistModel) GetEntries(artist, eventType string) (entries []*Waitlist, err error) {
	dbTx := m.DB.Table(m.table).Where("artist = ? and event_type = ?", artist, eventType).
		Order("created_at asc").Find(&entries)
	if dbTx.Error != nil {
		return nil, types.DbErrSqlOperation
	}
	return entries, nil
}

func (m *defaultWaitlistModel) GetPosition(artist, eventType, principal string) (position int64, err error) {
	entry := &Waitlist{}
	dbTx := m.DB.Table(m.table).
		Where("artist = ? and event_type = ? and wallet_principal = ?", artist, eventType, principal).
		Limit(1).Find(&entry)
	if dbTx.Error != nil {
		return 0, types.DbErrSqlOperation
	} else if dbTx.RowsAffected == 0 {
		return 0, types.DbErrNotFound
	}

	var ahead int64
	dbTx = m.DB.Table(m.table).
		Where("artist = ? and event_type = ? and created_at <= ? and deleted_at is NULL",
			artist, eventType, entry.CreatedAt).
		Count(&ahead)
	if dbTx.Error != nil {
		return 0, types.DbErrSqlOperation
	}
	return ahead, nil
}

func (m *defaultWaitlistModel) MarkNotified(id uint) error {
	dbTx := m.DB.Table(m.table).Where("id = ?", id).Update("notification_sent", true)
	if dbTx.Error != nil {
		return types.DbErrSqlOperation
	} else if dbTx.RowsAffected == 0 {
		return types.DbErrNotFound
	}
	return nil
}
