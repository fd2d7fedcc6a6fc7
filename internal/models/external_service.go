package models

import (
	"time"

	"gorm.io/gorm"
)

// Names of the third-party integrations an alert can be enriched by.
const (
	ServiceCybermapa = "Cybermapa"
	ServiceTraccar   = "Traccar"
	ServiceGeocoding = "GoogleGeocoding"
)

// ExternalService is the audit trail of enrichment attempts: one row
// per call, written whether or not the call succeeded. It must never
// block alert creation.
type ExternalService struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	AlertID    uint      `json:"alertId" gorm:"index"`
	Service    string    `json:"service" gorm:"size:64"`
	Attributes string    `json:"attributes,omitempty" gorm:"size:4096"` // JSON payload of the result
	Error      bool      `json:"error"`
	ErrorText  string    `json:"errorText,omitempty" gorm:"size:1024"`
	CreatedAt  time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt  time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

// LogExternalSuccess records a successful enrichment attempt.
func LogExternalSuccess(db *gorm.DB, alertID uint, service, attributes string) error {
	return db.Create(&ExternalService{
		AlertID:    alertID,
		Service:    service,
		Attributes: attributes,
	}).Error
}

// LogExternalFailure records a failed enrichment attempt.
func LogExternalFailure(db *gorm.DB, alertID uint, service string, callErr error) error {
	entry := &ExternalService{
		AlertID: alertID,
		Service: service,
		Error:   true,
	}
	if callErr != nil {
		entry.ErrorText = callErr.Error()
	}
	return db.Create(entry).Error
}

// ExternalServicesOf lists an alert's enrichment trail.
func ExternalServicesOf(db *gorm.DB, alertID uint) ([]ExternalService, error) {
	var entries []ExternalService
	if err := db.Where("alert_id = ?", alertID).Order("created_at").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
