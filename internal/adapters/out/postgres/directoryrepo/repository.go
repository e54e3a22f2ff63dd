// Package directoryrepo reads users and roles owned by the identity subsystem.
package directoryrepo

import (
	"context"

	"orderflow/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const followupRole = "followup"

// GormDirectory implements ports.Directory with raw queries.
type GormDirectory struct {
	db *gorm.DB
}

func NewGormDirectory(db *gorm.DB) *GormDirectory {
	return &GormDirectory{db: db}
}

// ActiveFollowupWorkers returns the roster in a stable order.
func (d *GormDirectory) ActiveFollowupWorkers(ctx context.Context) ([]kernel.UUID, error) {
	rows, err := d.db.WithContext(ctx).
		Raw(`SELECT id FROM users WHERE role = ? AND active ORDER BY id`, followupRole).
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	roster := make([]kernel.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err = rows.Scan(&id); err != nil {
			return nil, err
		}
		worker, convErr := kernel.FromGoogle(id)
		if convErr != nil {
			return nil, convErr
		}
		roster = append(roster, worker)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return roster, nil
}
