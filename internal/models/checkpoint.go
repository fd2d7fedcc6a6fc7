package models

import (
	stderrors "errors"
	"strings"
	"time"

	"basapp/pkg/errors"

	"gorm.io/gorm"
)

// Checkpoint is one ordered location ping in an alert's trail.
// Append-only: no update or delete is exposed.
type Checkpoint struct {
	ID          uint        `json:"id" gorm:"primaryKey"`
	AlertID     uint        `json:"alertId" gorm:"index"`
	Geolocation Geolocation `json:"geolocation" gorm:"serializer:json"`
	CreatedAt   time.Time   `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt   time.Time   `json:"updatedAt" gorm:"autoUpdateTime"`
}

// AddCheckpoint appends a ping to an existing alert's trail.
func AddCheckpoint(db *gorm.DB, alertID uint, loc Geolocation) (*Checkpoint, error) {
	if !loc.Valid() {
		return nil, errors.Validation("geolocation: invalid coordinates")
	}
	var alert Alert
	if err := db.Select("id").First(&alert, alertID).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.WithCode(errors.CodeAlertNotFound, "alert not found")
		}
		return nil, err
	}
	checkpoint := &Checkpoint{AlertID: alertID, Geolocation: loc}
	if err := db.Create(checkpoint).Error; err != nil {
		return nil, err
	}
	return checkpoint, nil
}

// ListCheckpoints returns the trail in a stable, client-requested
// order so path reconstruction is deterministic. Default is creation
// time ascending; id breaks same-timestamp ties.
func ListCheckpoints(db *gorm.DB, alertID uint, order string, limit, offset int) ([]Checkpoint, error) {
	var alert Alert
	if err := db.Select("id").First(&alert, alertID).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.WithCode(errors.CodeAlertNotFound, "alert not found")
		}
		return nil, err
	}

	dir := "ASC"
	if strings.EqualFold(order, "desc") {
		dir = "DESC"
	}
	query := db.Where("alert_id = ?", alertID).
		Order("created_at " + dir).Order("id " + dir)
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}

	var checkpoints []Checkpoint
	if err := query.Find(&checkpoints).Error; err != nil {
		return nil, err
	}
	return checkpoints, nil
}
