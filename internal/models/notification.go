package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	NotificationTypeAlert      = "alert"
	NotificationTypeAlertState = "alert-state"
	NotificationTypeAlarm      = "neighborhood-alarm"
	NotificationTypeEvent      = "event"
)

// Notification is one fanout record for one recipient. Created as a
// side effect of alert creation and transitions; never required for
// the triggering operation to succeed, and never mutated.
type Notification struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserID      uint      `json:"userId" gorm:"index"`
	CustomerID  uint      `json:"customerId" gorm:"index"`
	Title       string    `json:"title" gorm:"size:255"`
	Description string    `json:"description" gorm:"size:1024"`
	Type        string    `json:"type" gorm:"size:32"`
	Emergency   bool      `json:"emergency"`
	AlertID     *uint     `json:"alertId"`
	EventID     *uint     `json:"eventId"`
	SentAt      time.Time `json:"sentAt"`
	CreatedAt   time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

// CreateNotification persists one fanout record.
func CreateNotification(db *gorm.DB, n *Notification) error {
	if n.SentAt.IsZero() {
		n.SentAt = time.Now()
	}
	return db.Create(n).Error
}

// NotificationsOf pages a user's notifications, newest first.
func NotificationsOf(db *gorm.DB, userID uint, limit, offset int) ([]Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var notifications []Notification
	err := db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

// PruneNotifications deletes records older than the retention window.
// Run by the nightly cron job.
func PruneNotifications(db *gorm.DB, olderThan time.Time) (int64, error) {
	res := db.Where("created_at < ?", olderThan).Delete(&Notification{})
	return res.RowsAffected, res.Error
}
