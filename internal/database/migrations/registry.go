package migrations

import (
	"github.com/jmylchreest/showbook/internal/models"
	"gorm.io/gorm"
)

// AllMigrations returns every catalog migration in version order.
func AllMigrations() []Migration {
	return []Migration{
		migration001Schema(),
		migration002ListingIndexes(),
	}
}

// catalogTables are dropped in reverse dependency order.
var catalogTables = []string{"show_tags", "arrangements", "tags", "shows"}

func migration001Schema() Migration {
	return Migration{
		Version:     "001",
		Description: "Create catalog tables",
		Up: func(tx *gorm.DB) error {
			return tx.AutoMigrate(
				&models.Show{},
				&models.Tag{},
				&models.Arrangement{},
			)
		},
		Down: func(tx *gorm.DB) error {
			for _, table := range catalogTables {
				if tx.Migrator().HasTable(table) {
					if err := tx.Migrator().DropTable(table); err != nil {
						return err
					}
				}
			}
			return nil
		},
	}
}

// listingIndex is a composite index not expressible through model tags.
type listingIndex struct {
	model   any
	name    string
	table   string
	columns string
}

var listingIndexes = []listingIndex{
	{&models.Show{}, "idx_shows_difficulty_year", "shows", "difficulty, year"},
	{&models.Arrangement{}, "idx_arrangements_show_title", "arrangements", "show_id, title"},
}

// migration002ListingIndexes backs the difficulty/year browse path and the
// per-show arrangement listing.
func migration002ListingIndexes() Migration {
	return Migration{
		Version:     "002",
		Description: "Add listing indexes",
		Up: func(tx *gorm.DB) error {
			for _, idx := range listingIndexes {
				if tx.Migrator().HasIndex(idx.model, idx.name) {
					continue
				}
				if err := tx.Exec("CREATE INDEX " + idx.name + " ON " + idx.table + " (" + idx.columns + ")").Error; err != nil {
					return err
				}
			}
			return nil
		},
		Down: func(tx *gorm.DB) error {
			for _, idx := range listingIndexes {
				if !tx.Migrator().HasIndex(idx.model, idx.name) {
					continue
				}
				if err := tx.Migrator().DropIndex(idx.model, idx.name); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
