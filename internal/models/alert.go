package models

import (
	stderrors "errors"
	"time"

	"basapp/pkg/errors"

	"gorm.io/gorm"
)

const maxOperatorCodeLen = 20

// Alert is a reported security incident. Created once, mutated only
// through state transitions and enrichment address merges; never
// reassigned to another customer and never deleted in normal operation.
type Alert struct {
	ID           uint  `json:"id" gorm:"primaryKey"`
	CustomerID   uint  `json:"customerId" gorm:"index"`
	UserID       uint  `json:"userId" gorm:"index"`
	AlertTypeID  uint  `json:"alertTypeId"`
	AlertStateID *uint `json:"alertStateId"`

	Geolocation         Geolocation     `json:"geolocation" gorm:"serializer:json"`
	Geolocations        GeolocationList `json:"geolocations,omitempty" gorm:"serializer:json"` // client-side samples captured before submission
	OriginalGeolocation *Geolocation    `json:"originalGeolocation,omitempty" gorm:"serializer:json"`

	ApproximateAddress string `json:"approximateAddress" gorm:"size:512"`
	City               string `json:"city" gorm:"size:128"`
	District           string `json:"district" gorm:"size:128"`
	State              string `json:"state" gorm:"size:128"`
	Country            string `json:"country" gorm:"size:128"`
	LocationID         *uint  `json:"locationId"` // matched locality/neighborhood

	Manual      bool   `json:"manual"`
	Dragged     bool   `json:"dragged"`
	TrialPeriod bool   `json:"trialPeriod"`
	Code        string `json:"code" gorm:"size:20"`

	Observations string `json:"observations" gorm:"size:1024"`

	AlertStateUpdatedAt *time.Time `json:"alertStateUpdatedAt"`
	CreatedAt           time.Time  `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt           time.Time  `json:"updatedAt" gorm:"autoUpdateTime"`

	AlertType  *AlertType  `json:"alertType,omitempty" gorm:"foreignKey:AlertTypeID"`
	AlertState *AlertState `json:"alertState,omitempty" gorm:"foreignKey:AlertStateID"`
}

// CreateAlert persists a new alert in the customer-visible issued
// state. Enrichment and fanout happen after this returns. Coordinate
// validation is the caller's job: the SMS path legitimately creates
// alerts without a position fix.
func CreateAlert(db *gorm.DB, alert *Alert) (*Alert, error) {
	issued, err := IssuedStateFor(db, alert.CustomerID)
	if err != nil {
		return nil, err
	}
	alert.AlertStateID = &issued.ID
	now := time.Now()
	alert.AlertStateUpdatedAt = &now

	if err := db.Create(alert).Error; err != nil {
		return nil, err
	}
	alert.AlertState = issued
	return alert, nil
}

// GetAlert fetches one alert with its type and state.
func GetAlert(db *gorm.DB, id uint) (*Alert, error) {
	var alert Alert
	err := db.Preload("AlertType").Preload("AlertState").First(&alert, id).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.WithCode(errors.CodeAlertNotFound, "alert not found")
		}
		return nil, err
	}
	return &alert, nil
}

// ListAlerts pages a customer set's alerts, newest first.
func ListAlerts(db *gorm.DB, customerIDs []uint, limit, offset int) ([]Alert, int64, error) {
	var alerts []Alert
	var total int64
	query := db.Model(&Alert{}).Where("customer_id IN ?", customerIDs)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	err := query.Preload("AlertType").Preload("AlertState").
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&alerts).Error
	if err != nil {
		return nil, 0, err
	}
	return alerts, total, nil
}

// ChangeAlertState applies a state transition. The target must be an
// active state visible to the alert's customer. Only state, operator
// code and observations are mutable through this path.
func ChangeAlertState(db *gorm.DB, alertID, stateID uint, code, observations string) (*Alert, error) {
	if len(code) > maxOperatorCodeLen {
		return nil, errors.Validation("code: too long")
	}
	alert, err := GetAlert(db, alertID)
	if err != nil {
		return nil, err
	}
	state, err := FindVisibleState(db, stateID, alert.CustomerID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	updates := map[string]interface{}{
		"alert_state_id":         state.ID,
		"alert_state_updated_at": now,
	}
	if code != "" {
		updates["code"] = code
	}
	if observations != "" {
		updates["observations"] = observations
	}
	if err := db.Model(&Alert{}).Where("id = ?", alert.ID).Updates(updates).Error; err != nil {
		return nil, err
	}

	alert.AlertStateID = &state.ID
	alert.AlertState = state
	alert.AlertStateUpdatedAt = &now
	if code != "" {
		alert.Code = code
	}
	if observations != "" {
		alert.Observations = observations
	}
	return alert, nil
}

// MergeResolvedAddress fills address fields from a reverse geocode
// without regressing anything already set. When the client supplied an
// approximate address it stays verbatim; only the parsed components
// are taken from the geocoder.
func MergeResolvedAddress(db *gorm.DB, alertID uint, formatted, city, district, state, country string) error {
	var alert Alert
	if err := db.First(&alert, alertID).Error; err != nil {
		return err
	}
	updates := map[string]interface{}{}
	if alert.ApproximateAddress == "" && formatted != "" {
		updates["approximate_address"] = formatted
	}
	if alert.City == "" && city != "" {
		updates["city"] = city
	}
	if alert.District == "" && district != "" {
		updates["district"] = district
	}
	if alert.State == "" && state != "" {
		updates["state"] = state
	}
	if alert.Country == "" && country != "" {
		updates["country"] = country
	}
	if len(updates) == 0 {
		return nil
	}
	return db.Model(&Alert{}).Where("id = ?", alertID).Updates(updates).Error
}

// SetAlertLocation records the matched locality/neighborhood.
func SetAlertLocation(db *gorm.DB, alertID, locationID uint) error {
	return db.Model(&Alert{}).Where("id = ?", alertID).
		Update("location_id", locationID).Error
}
