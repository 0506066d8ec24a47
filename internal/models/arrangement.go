package models

import (
	"strings"
)

// Arrangement is a single musical arrangement, optionally part of a show.
type Arrangement struct {
	BaseModel

	Title string `gorm:"size:255;not null;index" json:"title"`

	// Type is the ensemble the arrangement is scored for, e.g.
	// "Full Orchestral" or "Marching Band". Unclassified arrangements leave
	// it unset.
	Type *string `gorm:"size:100;index" json:"type,omitempty"`

	Price float64 `gorm:"type:numeric(10,2);not null;default:0" json:"price"`

	ShowID *ULID `gorm:"type:varchar(26);index" json:"showId,omitempty"`
	Show   *Show `gorm:"foreignKey:ShowID;constraint:OnDelete:SET NULL" json:"show,omitempty"`
}

// TableName returns the table name for the Arrangement model.
func (Arrangement) TableName() string {
	return "arrangements"
}

// Validate checks if the arrangement is valid.
func (a *Arrangement) Validate() error {
	if strings.TrimSpace(a.Title) == "" {
		return ValidationError{Field: "title", Message: "title is required"}
	}
	if a.Price < 0 {
		return ValidationError{Field: "price", Message: "price must not be negative"}
	}
	return nil
}
