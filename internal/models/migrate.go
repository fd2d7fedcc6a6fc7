package models

import (
	"basapp/pkg/middleware"

	"gorm.io/gorm"
)

// Migrate creates the full schema. Tests run it against the in-memory
// sqlite driver.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Customer{},
		&Location{},
		&User{},
		&UserContact{},
		&AlertType{},
		&CustomerAlertType{},
		&AlertState{},
		&Alert{},
		&Checkpoint{},
		&ExternalService{},
		&NeighborhoodAlarm{},
		&NeighborhoodAlarmUser{},
		&Notification{},
		&Event{},
		&middleware.OperatorLog{},
	)
}
