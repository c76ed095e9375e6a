package combination

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/picha-labs/picha/types"
)

const (
	TableName = `combination_count`
)

// DefaultTotalLimit applies to combinations without a seeded budget.
const DefaultTotalLimit = 50

// SeededLimits are the launch mint budgets per artist-event combination.
var SeededLimits = map[string]int64{
	"Da Vinci-architecture": 100,
	"Da Vinci-portrait":     150,
	"Van Gogh-nature":       200,
	"Van Gogh-abstract":     120,
	"Picasso-abstract":      80,
	"Picasso-portrait":      100,
	"Monet-nature":          250,
	"Dali-fantasy":          75,
	"Da Vinci-nature":       120,
	"Van Gogh-cosmic":       90,
	"Picasso-urban":         110,
	"Monet-historical":      180,
	"Dali-cosmic":           85,
}

var incrementMintedMetric = prometheus.NewGauge(prometheus.GaugeOpts{
	Namespace: "picha",
	Name:      "combination_increment_db",
	Help:      "combination minted count increment in db",
})

type (
	CombinationModel interface {
		CreateCombinationTable() error
		DropCombinationTable() error
		SeedCombinations() error
		GetCombination(artist, eventType string) (row *Combination, err error)
		GetAllCombinations() (rows []*Combination, err error)
		// IncrementMinted reserves one mint slot. It returns
		// AppErrCombinationSoldOut when the budget is exhausted.
		IncrementMinted(artist, eventType string) (row *Combination, err error)
		DecrementMinted(artist, eventType string) error
	}

	defaultCombinationModel struct {
		table string
		DB    *gorm.DB
	}

	Combination struct {
		gorm.Model
		Artist      string `gorm:"index:idx_artist_event,unique"`
		EventType   string `gorm:"index:idx_artist_event,unique"`
		TotalLimit  int64
		MintedCount int64
	}
)

func NewCombinationModel(db *gorm.DB) CombinationModel {
	_ = prometheus.Register(incrementMintedMetric)
	return &defaultCombinationModel{
		table: TableName,
		DB:    db,
	}
}

func (*Combination) TableName() string {
	return TableName
}

func (m *defaultCombinationModel) CreateCombinationTable() error {
	return m.DB.AutoMigrate(Combination{})
}

func (m *defaultCombinationModel) DropCombinationTable() error {
	return m.DB.Migrator().DropTable(m.table)
}

func (m *defaultCombinationModel) SeedCombinations() error {
	for key, limit := range SeededLimits {
		artist, eventType := splitKey(key)
		row := &Combination{Artist: artist, EventType: eventType, TotalLimit: limit}
		dbTx := m.DB.Table(m.table).
			Clauses(clause.OnConflict{DoNothing: true}).Create(row)
		if dbTx.Error != nil {
			return types.DbErrSqlOperation
		}
	}
	return nil
}

func (m *defaultCombinationModel) GetCombination(artist, eventType string) (row *Combination, err error) {
	dbTx := m.DB.Table(m.table).Where("artist = ? and event_type = ?", artist, eventType).
		Limit(1).Find(&row)
	if dbTx.Error != nil {
		return nil, types.DbErrSqlOperation
	} else if dbTx.RowsAffected == 0 {
		return nil, types.DbErrNotFound
	}
	return row, nil
}

func (m *defaultCombinationModel) GetAllCombinations() (rows []*Combination, err error) {
	dbTx := m.DB.Table(m.table).Order("artist asc, event_type asc").Find(&rows)
	if dbTx.Error != nil {
		return nil, types.DbErrSqlOperation
	}
	return rows, nil
}

// IncrementMinted uses a conditional update so that concurrent mints of
// the last slot cannot oversell the combination.
func (m *defaultCombinationModel) IncrementMinted(artist, eventType string) (row *Combination, err error) {
	start := time.Now()
	defer func() {
		incrementMintedMetric.Set(float64(time.Since(start).Milliseconds()))
	}()

	row, err = m.GetCombination(artist, eventType)
	if err == types.DbErrNotFound {
		row = &Combination{Artist: artist, EventType: eventType, TotalLimit: DefaultTotalLimit}
		dbTx := m.DB.Table(m.table).
			Clauses(clause.OnConflict{DoNothing: true}).Create(row)
		if dbTx.Error != nil {
			return nil, types.DbErrSqlOperation
		}
	} else if err != nil {
		return nil, err
	}

	dbTx := m.DB.Table(m.table).
		Where("artist = ? and event_type = ? and minted_count < total_limit", artist, eventType).
		Update("minted_count", gorm.Expr("minted_count + 1"))
	if dbTx.Error != nil {
		return nil, types.DbErrSqlOperation
	} else if dbTx.RowsAffected == 0 {
		return nil, types.AppErrCombinationSoldOut
	}
	return m.GetCombination(artist, eventType)
}

// DecrementMinted releases a reserved slot after a failed mint.
func (m *defaultCombinationModel) DecrementMinted(artist, eventType string) error {
	dbTx := m.DB.Table(m.table).
		Where("artist = ? and event_type = ? and minted_count > 0", artist, eventType).
		Update("minted_count", gorm.Expr("minted_count - 1"))
	if dbTx.Error != nil {
		return types.DbErrSqlOperation
	}
	return nil
}

func splitKey(key string) (artist, eventType string) {
	for i := len(key) - 1; i >= 0; i-- {
		if key[i] == '-' {
			return key[:i], key[i+1:]
		}
	}
	return key, ""
}
