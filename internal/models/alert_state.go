package models

import (
	stderrors "errors"
	"time"

	"basapp/pkg/errors"

	"gorm.io/gorm"
)

// StateIssued is the initial state every alert is created in.
const StateIssued = "Emitida"

// AlertState is a table-backed lifecycle state. CustomerID null means
// the state is global and visible to every tenant.
type AlertState struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	Name       string    `json:"name" gorm:"size:128"`
	Active     bool      `json:"active" gorm:"default:true"`
	CustomerID *uint     `json:"customerId" gorm:"index"`
	CreatedAt  time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt  time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

// FindVisibleState fetches an active state visible to the customer:
// global or scoped to that exact customer.
func FindVisibleState(db *gorm.DB, stateID, customerID uint) (*AlertState, error) {
	var state AlertState
	err := db.Where("id = ? AND active = ? AND (customer_id IS NULL OR customer_id = ?)",
		stateID, true, customerID).
		First(&state).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.WithCode(errors.CodeAlertStateNotFound, "alert state not found")
		}
		return nil, err
	}
	return &state, nil
}

// IssuedStateFor returns the customer-visible "Emitida" state,
// preferring the tenant-scoped one over the global. The ordering
// sorts on NULL-ness explicitly; NULL placement under DESC differs
// between sqlite/mysql and postgres.
func IssuedStateFor(db *gorm.DB, customerID uint) (*AlertState, error) {
	var state AlertState
	err := db.Where("name = ? AND active = ? AND (customer_id IS NULL OR customer_id = ?)",
		StateIssued, true, customerID).
		Order("customer_id IS NULL").
		First(&state).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.WithCode(errors.CodeAlertStateNotFound, "issued state not configured")
		}
		return nil, err
	}
	return &state, nil
}
