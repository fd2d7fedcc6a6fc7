package models

import (
	"time"

	"gorm.io/gorm"
)

// NeighborhoodAlarm is a shared siren event: one user triggers it and
// every user sharing the same urgency number is fanned out to.
type NeighborhoodAlarm struct {
	ID                 uint        `json:"id" gorm:"primaryKey"`
	UserID             uint        `json:"userId" gorm:"index"`
	CustomerID         uint        `json:"customerId" gorm:"index"`
	Urgency            int         `json:"urgency"`
	ApproximateAddress string      `json:"approximateAddress" gorm:"size:512"`
	Geolocation        Geolocation `json:"geolocation" gorm:"serializer:json"`
	CreatedAt          time.Time   `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt          time.Time   `json:"updatedAt" gorm:"autoUpdateTime"`
}

// NeighborhoodAlarmUser records one peer that shares the urgency
// number and received the fanout.
type NeighborhoodAlarmUser struct {
	ID                  uint      `json:"id" gorm:"primaryKey"`
	NeighborhoodAlarmID uint      `json:"neighborhoodAlarmId" gorm:"index"`
	UserID              uint      `json:"userId"`
	CreatedAt           time.Time `json:"createdAt" gorm:"autoCreateTime"`
}

// CreateNeighborhoodAlarm persists the alarm and its peer rows. Zero
// peers is valid; the alarm still stands on its own.
func CreateNeighborhoodAlarm(db *gorm.DB, alarm *NeighborhoodAlarm, peers []User) (*NeighborhoodAlarm, error) {
	if err := db.Create(alarm).Error; err != nil {
		return nil, err
	}
	for _, peer := range peers {
		row := NeighborhoodAlarmUser{NeighborhoodAlarmID: alarm.ID, UserID: peer.ID}
		if err := db.Create(&row).Error; err != nil {
			return nil, err
		}
	}
	return alarm, nil
}

// AlarmRecipients lists the recorded peer rows of an alarm.
func AlarmRecipients(db *gorm.DB, alarmID uint) ([]NeighborhoodAlarmUser, error) {
	var rows []NeighborhoodAlarmUser
	if err := db.Where("neighborhood_alarm_id = ?", alarmID).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
