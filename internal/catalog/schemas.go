// Package catalog declares the filterable showbook entities: their table
// schemas, advertised filter fields, search columns, default ordering and
// presets.
package catalog

import (
	"github.com/jmylchreest/showbook/internal/filters"
	"github.com/jmylchreest/showbook/internal/models"
)

// Entity names.
const (
	Shows        filters.Entity = "shows"
	Arrangements filters.Entity = "arrangements"
)

func bound(v float64) *float64 {
	return &v
}

// ShowsSchema describes the shows table and its tag and arrangement
// relations.
func ShowsSchema() filters.TableSchema {
	return filters.TableSchema{
		Name: "shows",
		Fields: []filters.SchemaField{
			{Key: "id", Type: "varchar(26)"},
			{
				Key: "title", Type: "varchar(255)",
				Description: "The name of the show",
				Placeholder: "Search by show title...",
			},
			{
				Key: "year", Type: "smallint",
				Description: "The year the show was created or premiered",
				Placeholder: "Filter by year...",
			},
			{
				Key: "difficulty", Type: "enum", EnumValues: models.DifficultyNames(),
				Description: "The skill level required: Beginner (Grade 1-2), Intermediate (Grade 3-4), or Advanced (Grade 5+)",
				Placeholder: "Select difficulty level...",
			},
			{
				Key: "featured", Type: "boolean",
				Description: "Featured shows are editor's picks and recommended highlights",
			},
			{
				Key: "displayOrder", Type: "integer",
				Description: "Custom display order for shows (lower numbers appear first)",
			},
			{
				Key: "duration", Type: "varchar(20)",
				Description: "The total duration or length of the show",
				Placeholder: "Filter by duration...",
			},
			{
				Key: "price", Type: "numeric(10,2)", Min: bound(0), Max: bound(10000),
				Description: "The purchase price of the show in USD",
				Placeholder: "Filter by price range...",
			},
			{Key: "description", Type: "text", Nullable: true},
			{Key: "createdAt", Type: "timestamp", Label: "Created"},
		},
		Relations: []filters.RelationSchema{
			{
				Key:            "tags",
				Type:           filters.RelationMany,
				Table:          "tags",
				Fields:         []string{"name"},
				JoinTable:      "show_tags",
				JoinLocalKey:   "show_id",
				JoinForeignKey: "tag_id",
				Description:    "Filter by tags or categories associated with the show",
				Placeholder:    "Select tags...",
			},
			{
				Key:         "arrangements",
				Type:        filters.RelationMany,
				Table:       "arrangements",
				Fields:      []string{"title"},
				ForeignKey:  "show_id",
				Description: "Filter by arrangements included in the show",
				Placeholder: "Filter by arrangements...",
			},
		},
	}
}

// ArrangementsSchema describes the arrangements table and its show relation.
func ArrangementsSchema() filters.TableSchema {
	return filters.TableSchema{
		Name: "arrangements",
		Fields: []filters.SchemaField{
			{Key: "id", Type: "varchar(26)"},
			{Key: "title", Type: "varchar(255)"},
			{Key: "type", Type: "varchar(100)", Nullable: true},
			{Key: "price", Type: "numeric(10,2)"},
			{Key: "showId", Type: "varchar(26)", Label: "Show ID"},
			{Key: "createdAt", Type: "timestamp", Label: "Created"},
		},
		Relations: []filters.RelationSchema{
			{
				Key:    "show",
				Type:   filters.RelationOne,
				Table:  "shows",
				Fields: []string{"title", "year", "difficulty"},
			},
		},
	}
}
