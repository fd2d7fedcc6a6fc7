package models

import (
	stderrors "errors"
	"time"

	"basapp/pkg/errors"

	"gorm.io/gorm"
)

// TypeNeighborhoodAlarm is the SMS discriminator that triggers the
// shared siren fanout instead of a personal alert.
const TypeNeighborhoodAlarm = "neighborhood-alarm"

type AlertType struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Type      string    `json:"type" gorm:"size:64;uniqueIndex"` // machine code, e.g. "fire"
	Name      string    `json:"name" gorm:"size:128"`            // display name
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

// CustomerAlertType is the tenant's opt-in subset and ordering of types.
type CustomerAlertType struct {
	ID          uint `json:"id" gorm:"primaryKey"`
	CustomerID  uint `json:"customerId" gorm:"index"`
	AlertTypeID uint `json:"alertTypeId"`
	SortOrder   int  `json:"order" gorm:"column:sort_order"`
}

// FindAlertTypeByType resolves a type by its machine code.
func FindAlertTypeByType(db *gorm.DB, typeCode string) (*AlertType, error) {
	if typeCode == "" {
		return nil, errors.WithCode(errors.CodeAlertTypeNotFound, "alert type not found")
	}
	var at AlertType
	if err := db.Where("type = ?", typeCode).First(&at).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.WithCode(errors.CodeAlertTypeNotFound, "alert type not found")
		}
		return nil, err
	}
	return &at, nil
}

// AlertTypesOf lists a customer's opted-in types in configured order.
func AlertTypesOf(db *gorm.DB, customerID uint) ([]AlertType, error) {
	var types []AlertType
	err := db.Model(&AlertType{}).
		Joins("JOIN customer_alert_types ON customer_alert_types.alert_type_id = alert_types.id").
		Where("customer_alert_types.customer_id = ?", customerID).
		Order("customer_alert_types.sort_order").
		Find(&types).Error
	if err != nil {
		return nil, err
	}
	return types, nil
}
