package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

type QueryMode string

const (
	QueryDefault     QueryMode = "default"
	QueryWithDeleted QueryMode = "with_deleted"
	QueryDeletedOnly QueryMode = "deleted_only"
)

func ParseQueryMode(raw string) (QueryMode, error) {
	switch QueryMode(strings.TrimSpace(raw)) {
	case "", QueryDefault:
		return QueryDefault, nil
	case QueryWithDeleted:
		return QueryWithDeleted, nil
	case QueryDeletedOnly:
		return QueryDeletedOnly, nil
	}
	return "", Validation("invalid_query_mode", fmt.Sprintf("Unknown query mode %q.", raw))
}

// Apply narrows db to the rows visible in mode. The default mode relies on
// gorm's deleted_at scope.
func (m QueryMode) Apply(db *gorm.DB) *gorm.DB {
	switch m {
	case QueryWithDeleted:
		return db.Unscoped()
	case QueryDeletedOnly:
		return db.Unscoped().Where("is_deleted = ?", true)
	}
	return db
}

// Ledger sets and clears the soft-delete triple on any model embedding
// models.SoftDelete. It knows nothing about relations between entities.
type Ledger struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{DB: db, Now: time.Now}
}

// WithTx returns a ledger bound to tx so guards and flag changes commit
// together.
func (l *Ledger) WithTx(tx *gorm.DB) *Ledger {
	return &Ledger{DB: tx, Now: l.Now}
}

func (l *Ledger) deletedFlag(ctx context.Context, model interface{}, id uint) (bool, error) {
	var flags []bool
	err := l.DB.WithContext(ctx).Unscoped().Model(model).Where("id = ?", id).Limit(1).Pluck("is_deleted", &flags).Error
	if err != nil {
		return false, Internal(err)
	}
	if len(flags) == 0 {
		return false, NotFound("not_found", "Record not found.")
	}
	return flags[0], nil
}

// SoftDelete marks the row deleted, stamping time and actor.
func (l *Ledger) SoftDelete(ctx context.Context, model interface{}, id uint, actorID *uint) error {
	deleted, err := l.deletedFlag(ctx, model, id)
	if err != nil {
		return err
	}
	if deleted {
		return Conflict("already_deleted", "Record is already deleted.")
	}
	res := l.DB.WithContext(ctx).Unscoped().Model(model).
		Where("id = ? AND is_deleted = ?", id, false).
		UpdateColumns(map[string]interface{}{
			"is_deleted":    true,
			"deleted_at":    l.Now().UTC(),
			"deleted_by_id": actorID,
		})
	if res.Error != nil {
		return Internal(res.Error)
	}
	if res.RowsAffected == 0 {
		return Conflict("already_deleted", "Record is already deleted.")
	}
	return nil
}

// Restore clears all three ledger fields.
func (l *Ledger) Restore(ctx context.Context, model interface{}, id uint) error {
	deleted, err := l.deletedFlag(ctx, model, id)
	if err != nil {
		return err
	}
	if !deleted {
		return Conflict("not_deleted", "Record is not deleted.")
	}
	res := l.DB.WithContext(ctx).Unscoped().Model(model).
		Where("id = ? AND is_deleted = ?", id, true).
		UpdateColumns(map[string]interface{}{
			"is_deleted":    false,
			"deleted_at":    nil,
			"deleted_by_id": nil,
		})
	if res.Error != nil {
		return Internal(res.Error)
	}
	if res.RowsAffected == 0 {
		return Conflict("not_deleted", "Record is not deleted.")
	}
	return nil
}

// HardDelete removes the row whether or not it is soft-deleted.
func (l *Ledger) HardDelete(ctx context.Context, model interface{}, id uint) error {
	res := l.DB.WithContext(ctx).Unscoped().Where("id = ?", id).Delete(model)
	if res.Error != nil {
		return Internal(res.Error)
	}
	if res.RowsAffected == 0 {
		return NotFound("not_found", "Record not found.")
	}
	return nil
}
