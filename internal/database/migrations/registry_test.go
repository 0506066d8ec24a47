package migrations

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/jmylchreest/showbook/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

func newMigrator(db *gorm.DB) *Migrator {
	m := NewMigrator(db, nil)
	m.RegisterAll(AllMigrations())
	return m
}

func TestAllMigrations_VersionsAreUniqueAndOrdered(t *testing.T) {
	migrations := AllMigrations()
	require.NotEmpty(t, migrations)

	for i := 1; i < len(migrations); i++ {
		assert.Less(t, migrations[i-1].Version, migrations[i].Version)
	}
	for _, m := range migrations {
		assert.NotNil(t, m.Up, m.Version)
		assert.NotNil(t, m.Down, m.Version)
		assert.NotEmpty(t, m.Description, m.Version)
	}
}

func TestMigrator_Up_CreatesCatalogTables(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, newMigrator(db).Up(ctx))

	for _, table := range []string{"shows", "tags", "show_tags", "arrangements", "schema_migrations"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	assert.True(t, db.Migrator().HasIndex(&models.Show{}, "idx_shows_difficulty_year"))
	assert.True(t, db.Migrator().HasIndex(&models.Arrangement{}, "idx_arrangements_show_title"))
}

func TestMigrator_Up_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	m := newMigrator(db)

	require.NoError(t, m.Up(ctx))
	require.NoError(t, m.Up(ctx))

	var count int64
	require.NoError(t, db.Model(&MigrationRecord{}).Count(&count).Error)
	assert.Equal(t, int64(len(AllMigrations())), count)
}

func TestMigrator_StatusAndPending(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	m := newMigrator(db)

	pending, err := m.Pending(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, len(AllMigrations()))

	statuses, err := m.Status(ctx)
	require.NoError(t, err)
	for _, s := range statuses {
		assert.False(t, s.Applied)
		assert.Nil(t, s.AppliedAt)
	}

	require.NoError(t, m.Up(ctx))

	pending, err = m.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	statuses, err = m.Status(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, len(AllMigrations()))
	assert.Equal(t, "001", statuses[0].Version)
	for _, s := range statuses {
		assert.True(t, s.Applied)
		assert.NotNil(t, s.AppliedAt)
	}
}

func TestMigrator_Down_RollsBackInReverseOrder(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	m := newMigrator(db)
	require.NoError(t, m.Up(ctx))

	require.NoError(t, m.Down(ctx))
	assert.False(t, db.Migrator().HasIndex(&models.Show{}, "idx_shows_difficulty_year"))
	assert.True(t, db.Migrator().HasTable("shows"))

	require.NoError(t, m.Down(ctx))
	assert.False(t, db.Migrator().HasTable("shows"))
	assert.False(t, db.Migrator().HasTable("show_tags"))

	// Nothing left to roll back.
	require.NoError(t, m.Down(ctx))

	pending, err := m.Pending(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, len(AllMigrations()))
}

func TestMigrator_Down_WithoutRollback(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	m := NewMigrator(db, nil)
	m.RegisterAll([]Migration{{
		Version:     "001",
		Description: "one way",
		Up:          func(tx *gorm.DB) error { return nil },
	}})
	require.NoError(t, m.Up(ctx))

	err := m.Down(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not support rollback")
}

func TestMigrator_RegisterAll_SortsByVersion(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	var order []string
	record := func(v string) func(*gorm.DB) error {
		return func(*gorm.DB) error { order = append(order, v); return nil }
	}

	m := NewMigrator(db, nil)
	m.RegisterAll([]Migration{
		{Version: "003", Description: "c", Up: record("003")},
		{Version: "001", Description: "a", Up: record("001")},
	})
	m.RegisterAll([]Migration{{Version: "002", Description: "b", Up: record("002")}})

	require.NoError(t, m.Up(ctx))
	assert.Equal(t, []string{"001", "002", "003"}, order)
}

func TestMigrations_CatalogRelationships(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	require.NoError(t, newMigrator(db).Up(ctx))

	show := models.Show{Title: "Rhapsody in Blue", Year: 2019, Difficulty: models.DifficultyAdvanced, Tags: []models.Tag{{Name: "jazz"}}}
	require.NoError(t, db.Create(&show).Error)

	arrangement := models.Arrangement{Title: "Bolero", ShowID: &show.ID}
	require.NoError(t, db.Create(&arrangement).Error)

	var loaded models.Show
	require.NoError(t, db.Preload("Tags").Preload("Arrangements").First(&loaded, "id = ?", show.ID).Error)
	require.Len(t, loaded.Tags, 1)
	assert.Equal(t, "jazz", loaded.Tags[0].Name)
	require.Len(t, loaded.Arrangements, 1)
	assert.Equal(t, "Bolero", loaded.Arrangements[0].Title)
}
