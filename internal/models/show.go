package models

import (
	"slices"
	"strings"
)

// Difficulty is the performance difficulty of a show.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "Beginner"
	DifficultyIntermediate Difficulty = "Intermediate"
	DifficultyAdvanced     Difficulty = "Advanced"
)

// Difficulties lists the valid difficulties in ascending order.
var Difficulties = []Difficulty{DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced}

// DifficultyNames returns the difficulties as strings, for enum declarations.
func DifficultyNames() []string {
	names := make([]string, len(Difficulties))
	for i, d := range Difficulties {
		names[i] = string(d)
	}
	return names
}

// IsValid reports whether d is a known difficulty.
func (d Difficulty) IsValid() bool {
	return slices.Contains(Difficulties, d)
}

// Show is a complete marching show design offered in the catalog.
type Show struct {
	BaseModel

	// Title is the display name of the show.
	Title string `gorm:"size:255;not null;index" json:"title"`

	// Year is the season the show was written for.
	Year int `gorm:"not null;index" json:"year"`

	Difficulty Difficulty `gorm:"size:20;not null;index" json:"difficulty"`

	// Featured shows are highlighted on the landing page.
	Featured bool `gorm:"not null;default:false;index" json:"featured"`

	// DisplayOrder is the manual position within featured listings.
	DisplayOrder int `gorm:"not null;default:0" json:"displayOrder"`

	// Duration is the running time as written on the score, e.g. "8:30".
	Duration string `gorm:"size:20" json:"duration"`

	Price float64 `gorm:"type:numeric(10,2);not null;default:0" json:"price"`

	Description *string `gorm:"type:text" json:"description,omitempty"`

	Tags         []Tag         `gorm:"many2many:show_tags;constraint:OnDelete:CASCADE" json:"tags,omitempty"`
	Arrangements []Arrangement `gorm:"foreignKey:ShowID" json:"arrangements,omitempty"`
}

// TableName returns the table name for the Show model.
func (Show) TableName() string {
	return "shows"
}

// Validate checks if the show is valid.
func (s *Show) Validate() error {
	if strings.TrimSpace(s.Title) == "" {
		return ValidationError{Field: "title", Message: "title is required"}
	}
	if s.Year < 1900 {
		return ValidationError{Field: "year", Message: "year must be 1900 or later"}
	}
	if !s.Difficulty.IsValid() {
		return ValidationError{Field: "difficulty", Message: "difficulty must be one of Beginner, Intermediate or Advanced"}
	}
	if s.Price < 0 {
		return ValidationError{Field: "price", Message: "price must not be negative"}
	}
	return nil
}

// Tag is a free-form label attached to shows, e.g. "jazz" or "classical".
type Tag struct {
	BaseModel

	Name string `gorm:"size:100;not null;uniqueIndex" json:"name"`
}

// TableName returns the table name for the Tag model.
func (Tag) TableName() string {
	return "tags"
}

// Validate checks if the tag is valid.
func (t *Tag) Validate() error {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return ValidationError{Field: "name", Message: "name is required"}
	}
	return nil
}
