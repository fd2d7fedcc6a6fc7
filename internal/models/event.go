package models

import "time"

// Event is the minimal scheduled event/reservation record the
// statistics engine shares with the scheduling subsystem. Scheduling
// itself lives elsewhere; statistics only needs the dimensions.
type Event struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	CustomerID uint      `json:"customerId" gorm:"index"`
	UserID     uint      `json:"userId"`
	Type       string    `json:"type" gorm:"size:64"`
	State      string    `json:"state" gorm:"size:64"`
	CreatedAt  time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt  time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}
