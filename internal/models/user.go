package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

const (
	RoleUser       = "user"
	RoleMonitoring = "monitoring"
	RoleAdmin      = "admin"
)

type User struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	CustomerID uint   `json:"customerId" gorm:"index"`
	FullName   string `json:"fullName" gorm:"size:255"`
	Username   string `json:"username" gorm:"size:64;uniqueIndex"` // phone number
	Role       string `json:"role" gorm:"size:20"`
	Active     bool   `json:"active" gorm:"default:true"`
	OnDuty     bool   `json:"onDuty" gorm:"default:false"` // monitoring users currently on shift

	// Stored home address, used verbatim by the SMS path.
	AddressStreet string `json:"addressStreet" gorm:"size:255"`
	AddressNumber string `json:"addressNumber" gorm:"size:20"`
	AddressCity   string `json:"addressCity" gorm:"size:128"`

	// Shared siren code for the neighborhood alarm feature.
	AlarmNumber *int `json:"alarmNumber" gorm:"index"`

	// Comma-separated vehicle plates registered for tracking lookups.
	VehiclePlates string `json:"vehiclePlates" gorm:"size:255"`

	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

// UserContact is a personal emergency contact. UserID links the
// contact to an app account when the phone number is registered.
type UserContact struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	OwnerID     uint      `json:"ownerId" gorm:"index"`
	PhoneNumber string    `json:"phoneNumber" gorm:"size:64"`
	UserID      *uint     `json:"userId"`
	CreatedAt   time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

// Plates splits the registered plate list.
func (u *User) Plates() []string {
	if u.VehiclePlates == "" {
		return nil
	}
	parts := strings.Split(u.VehiclePlates, ",")
	plates := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			plates = append(plates, p)
		}
	}
	return plates
}

// HomeAddress concatenates the stored address components. The SMS path
// uses this instead of a fresh reverse geocode.
func (u *User) HomeAddress() string {
	parts := make([]string, 0, 3)
	if u.AddressStreet != "" {
		street := u.AddressStreet
		if u.AddressNumber != "" {
			street += " " + u.AddressNumber
		}
		parts = append(parts, street)
	}
	if u.AddressCity != "" {
		parts = append(parts, u.AddressCity)
	}
	return strings.Join(parts, ", ")
}

// GetUser fetches one user by id.
func GetUser(db *gorm.DB, id uint) (*User, error) {
	var user User
	if err := db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ContactUserIDs returns the app-user ids behind the owner's personal
// contacts. Contacts without an account are skipped.
func ContactUserIDs(db *gorm.DB, ownerID uint) ([]uint, error) {
	var ids []uint
	if err := db.Model(&UserContact{}).
		Where("owner_id = ? AND user_id IS NOT NULL", ownerID).
		Pluck("user_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// OnDutyMonitorIDs returns the destination customer's on-shift
// monitoring users.
func OnDutyMonitorIDs(db *gorm.DB, customerID uint) ([]uint, error) {
	var ids []uint
	if err := db.Model(&User{}).
		Where("customer_id = ? AND role = ? AND active = ? AND on_duty = ?",
			customerID, RoleMonitoring, true, true).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// UsersByAlarmNumber lists active users sharing an urgency number,
// excluding the triggering user.
func UsersByAlarmNumber(db *gorm.DB, customerID uint, alarmNumber int, excludeUserID uint) ([]User, error) {
	var users []User
	if err := db.Where("customer_id = ? AND alarm_number = ? AND active = ? AND id <> ?",
		customerID, alarmNumber, true, excludeUserID).
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
