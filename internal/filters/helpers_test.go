package filters

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type testShow struct {
	ID           uint `gorm:"primaryKey"`
	Title        string
	Description  *string
	Year         int
	Difficulty   string
	Featured     bool
	DisplayOrder int
	Price        float64
	CreatedAt    time.Time
}

func (testShow) TableName() string { return "shows" }

type testTag struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

func (testTag) TableName() string { return "tags" }

type testShowTag struct {
	ShowID uint `gorm:"primaryKey;autoIncrement:false"`
	TagID  uint `gorm:"primaryKey;autoIncrement:false"`
}

func (testShowTag) TableName() string { return "show_tags" }

type testArrangement struct {
	ID     uint `gorm:"primaryKey"`
	Title  string
	ShowID *uint
}

func (testArrangement) TableName() string { return "arrangements" }

// setupFilterTestDB creates an in-memory database with the shows fixture
// tables. A single connection keeps every query on the same :memory: db.
func setupFilterTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&testShow{}, &testTag{}, &testShowTag{}, &testArrangement{}))
	return db
}

func strPtr(s string) *string { return &s }

// seedShows inserts five shows and two tags:
//
//	1 Rhapsody in Blue  2019 Advanced      150  featured  jazz
//	2 Blue Moon         2021 Beginner       50
//	3 Summer Nights     2023 Intermediate  200            jazz, classical
//	4 Winter Tale       2020 Advanced      250            classical
//	5 Sea Shanties      2018 Beginner      100
func seedShows(t *testing.T, db *gorm.DB) {
	t.Helper()

	shows := []testShow{
		{ID: 1, Title: "Rhapsody in Blue", Description: strPtr("Gershwin jazz"), Year: 2019, Difficulty: "Advanced", Featured: true, DisplayOrder: 1, Price: 150, CreatedAt: time.Date(2024, 5, 31, 23, 0, 0, 0, time.UTC)},
		{ID: 2, Title: "Blue Moon", Year: 2021, Difficulty: "Beginner", DisplayOrder: 2, Price: 50, CreatedAt: time.Date(2024, 6, 1, 1, 0, 0, 0, time.UTC)},
		{ID: 3, Title: "Summer Nights", Description: strPtr("A blue summer"), Year: 2023, Difficulty: "Intermediate", DisplayOrder: 3, Price: 200, CreatedAt: time.Date(2024, 6, 2, 12, 0, 0, 0, time.UTC)},
		{ID: 4, Title: "Winter Tale", Year: 2020, Difficulty: "Advanced", DisplayOrder: 4, Price: 250, CreatedAt: time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)},
		{ID: 5, Title: "Sea Shanties", Description: strPtr("Maritime blues"), Year: 2018, Difficulty: "Beginner", DisplayOrder: 5, Price: 100, CreatedAt: time.Date(2024, 6, 4, 12, 0, 0, 0, time.UTC)},
	}
	require.NoError(t, db.Create(&shows).Error)
	require.NoError(t, db.Create(&[]testTag{{ID: 1, Name: "jazz"}, {ID: 2, Name: "classical"}}).Error)
	require.NoError(t, db.Create(&[]testShowTag{{ShowID: 1, TagID: 1}, {ShowID: 3, TagID: 1}, {ShowID: 3, TagID: 2}, {ShowID: 4, TagID: 2}}).Error)
}

// queryIDs returns the ids of shows matching every expression, in id order.
func queryIDs(t *testing.T, db *gorm.DB, exprs ...clause.Expression) []uint {
	t.Helper()

	q := db.Model(&testShow{})
	if where := And(exprs...); where != nil {
		q = q.Where(where)
	}
	ids := []uint{}
	require.NoError(t, q.Order("id").Pluck("id", &ids).Error)
	return ids
}

// renderWhere renders expr as the WHERE clause of a dry-run query.
func renderWhere(t *testing.T, db *gorm.DB, expr clause.Expression) (string, []any) {
	t.Helper()

	stmt := db.Session(&gorm.Session{DryRun: true}).
		Table("shows").
		Where(expr).
		Find(&[]map[string]any{}).
		Statement
	return stmt.SQL.String(), stmt.Vars
}

func mustTable(t *testing.T) *Table {
	t.Helper()

	table, err := NewTable(testSchema())
	require.NoError(t, err)
	return table
}
