package models

import (
	"gorm.io/gorm"
)

// SoftDelete is embedded in every ledger-managed entity. DeletedAt doubles as
// gorm's soft-delete marker so default queries skip deleted rows.
type SoftDelete struct {
	IsDeleted   bool           `gorm:"column:is_deleted;not null;index" json:"is_deleted"`
	DeletedAt   gorm.DeletedAt `gorm:"column:deleted_at;index" json:"deleted_at,omitempty"`
	DeletedByID *uint          `gorm:"column:deleted_by_id" json:"deleted_by_id,omitempty"`
}
