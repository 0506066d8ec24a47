// Package models defines GORM database models for showbook entities.
package models

import (
	"crypto/rand"
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// ULID is a wrapper around ulid.ULID for database storage as primary key.
type ULID ulid.ULID

// NewULID generates a new ULID.
func NewULID() ULID {
	return ULID(ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader))
}

// ParseULID parses a ULID string.
func ParseULID(s string) (ULID, error) {
	id, err := ulid.Parse(s)
	if err != nil {
		return ULID{}, fmt.Errorf("invalid ULID: %w", err)
	}
	return ULID(id), nil
}

// String returns the string representation of the ULID.
func (u ULID) String() string {
	return ulid.ULID(u).String()
}

// IsZero returns true if the ULID is zero/empty.
func (u ULID) IsZero() bool {
	return ulid.ULID(u).Compare(ulid.ULID{}) == 0
}

// Value implements driver.Valuer. Zero IDs are stored as NULL.
func (u ULID) Value() (driver.Value, error) {
	if u.IsZero() {
		return nil, nil
	}
	return u.String(), nil
}

// Scan implements sql.Scanner.
func (u *ULID) Scan(value any) error {
	var s string
	switch v := value.(type) {
	case nil:
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("unsupported type for ULID: %T", value)
	}

	if s == "" {
		*u = ULID{}
		return nil
	}
	id, err := ulid.Parse(s)
	if err != nil {
		return fmt.Errorf("scanning ULID: %w", err)
	}
	*u = ULID(id)
	return nil
}

// MarshalText implements encoding.TextMarshaler, which also drives JSON and
// YAML encoding.
func (u ULID) MarshalText() ([]byte, error) {
	if u.IsZero() {
		return []byte{}, nil
	}
	return []byte(u.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (u *ULID) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*u = ULID{}
		return nil
	}
	id, err := ulid.Parse(string(data))
	if err != nil {
		return fmt.Errorf("parsing ULID: %w", err)
	}
	*u = ULID(id)
	return nil
}

// GormDataType returns the GORM data type for ULID.
func (ULID) GormDataType() string {
	return "varchar(26)"
}

// BaseModel provides common fields for all models with ULID as primary key.
type BaseModel struct {
	ID        ULID      `gorm:"primarykey;type:varchar(26)" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate generates a ULID if not already set.
func (b *BaseModel) BeforeCreate(_ *gorm.DB) error {
	if b.ID.IsZero() {
		b.ID = NewULID()
	}
	return nil
}
