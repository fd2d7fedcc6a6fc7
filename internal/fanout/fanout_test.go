package fanout

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"basapp/internal/models"
	"basapp/pkg/cache"
	"basapp/pkg/notification"
	"basapp/pkg/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakePush struct {
	calls [][]uint
	err   error
}

func (f *fakePush) Push(ctx context.Context, userIDs []uint, title, description string, extras map[string]interface{}) error {
	f.calls = append(f.calls, userIDs)
	return f.err
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := util.InitDatabase("", "file::memory:")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, models.Migrate(db))
	return db
}

func seedBase(t *testing.T, db *gorm.DB) (*models.Customer, *models.User, *models.Alert) {
	t.Helper()
	customer := &models.Customer{Name: "Barrio", Type: models.CustomerTypeBusiness, Active: true}
	require.NoError(t, db.Create(customer).Error)
	user := &models.User{CustomerID: customer.ID, Username: "rep", Active: true}
	require.NoError(t, db.Create(user).Error)
	require.NoError(t, db.Create(&models.AlertState{Name: models.StateIssued, Active: true}).Error)
	alertType := &models.AlertType{Type: "fire", Name: "Incendio"}
	require.NoError(t, db.Create(alertType).Error)
	alert, err := models.CreateAlert(db, &models.Alert{
		CustomerID:  customer.ID,
		UserID:      user.ID,
		AlertTypeID: alertType.ID,
		Geolocation: models.Geolocation{Latitude: -34.6, Longitude: -58.4},
	})
	require.NoError(t, err)
	alert.AlertType = alertType
	return customer, user, alert
}

func TestOnAlertCreatedNotifiesMonitors(t *testing.T) {
	db := newTestDB(t)
	customer, _, alert := seedBase(t, db)

	onDuty := &models.User{CustomerID: customer.ID, Username: "mon1", Role: models.RoleMonitoring, Active: true, OnDuty: true}
	require.NoError(t, db.Create(onDuty).Error)
	offDuty := &models.User{CustomerID: customer.ID, Username: "mon2", Role: models.RoleMonitoring, Active: true, OnDuty: false}
	require.NoError(t, db.Create(offDuty).Error)

	push := &fakePush{}
	f := New(db, notification.NewPush(push), nil)
	f.OnAlertCreated(context.Background(), alert, false)

	got, err := models.NotificationsOf(db, onDuty.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Nueva alerta", got[0].Title)
	assert.Equal(t, "Se ha emitido una alerta de Incendio", got[0].Description)
	assert.Equal(t, models.NotificationTypeAlert, got[0].Type)
	require.NotNil(t, got[0].AlertID)
	assert.Equal(t, alert.ID, *got[0].AlertID)

	none, err := models.NotificationsOf(db, offDuty.ID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, none)

	require.Len(t, push.calls, 1)
	assert.Equal(t, []uint{onDuty.ID}, push.calls[0])
}

func TestOnAlertCreatedContactsOnly(t *testing.T) {
	db := newTestDB(t)
	customer, reporter, alert := seedBase(t, db)

	onDuty := &models.User{CustomerID: customer.ID, Username: "mon", Role: models.RoleMonitoring, Active: true, OnDuty: true}
	require.NoError(t, db.Create(onDuty).Error)
	friend := &models.User{CustomerID: customer.ID, Username: "ami", Active: true}
	require.NoError(t, db.Create(friend).Error)
	require.NoError(t, db.Create(&models.UserContact{OwnerID: reporter.ID, PhoneNumber: "+5491100000001", UserID: &friend.ID}).Error)
	// contact without an account is skipped
	require.NoError(t, db.Create(&models.UserContact{OwnerID: reporter.ID, PhoneNumber: "+5491100000002"}).Error)

	f := New(db, nil, nil)
	f.OnAlertCreated(context.Background(), alert, true)

	got, err := models.NotificationsOf(db, friend.ID, 10, 0)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	none, err := models.NotificationsOf(db, onDuty.ID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestOnDutyListServedFromCache(t *testing.T) {
	db := newTestDB(t)
	customer, _, alert := seedBase(t, db)

	onDuty := &models.User{CustomerID: customer.ID, Username: "mon", Role: models.RoleMonitoring, Active: true, OnDuty: true}
	require.NoError(t, db.Create(onDuty).Error)

	c := cache.NewLocalCache(cache.LocalConfig{})
	defer c.Close()
	f := New(db, nil, c)

	f.OnAlertCreated(context.Background(), alert, false)
	got, err := models.NotificationsOf(db, onDuty.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)

	// shift change within the TTL is not observed yet
	require.NoError(t, db.Model(onDuty).Update("on_duty", false).Error)
	f.OnAlertCreated(context.Background(), alert, false)
	got, err = models.NotificationsOf(db, onDuty.ID, 10, 0)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	// an expired entry falls back to the database
	require.NoError(t, c.Delete(context.Background(), fmt.Sprintf("onduty:%d", customer.ID)))
	f.OnAlertCreated(context.Background(), alert, false)
	got, err = models.NotificationsOf(db, onDuty.ID, 10, 0)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestOnAlertStateChanged(t *testing.T) {
	db := newTestDB(t)
	_, reporter, alert := seedBase(t, db)

	f := New(db, nil, nil)
	f.OnAlertStateChanged(context.Background(), alert)

	got, err := models.NotificationsOf(db, reporter.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Tu alerta pasó al estado Emitida", got[0].Description)
	assert.Equal(t, models.NotificationTypeAlertState, got[0].Type)
}

func TestOnNeighborhoodAlarm(t *testing.T) {
	db := newTestDB(t)
	customer, reporter, _ := seedBase(t, db)

	peer := &models.User{CustomerID: customer.ID, Username: "vec", Active: true}
	require.NoError(t, db.Create(peer).Error)
	alarm := &models.NeighborhoodAlarm{UserID: reporter.ID, CustomerID: customer.ID, Urgency: 7}
	require.NoError(t, db.Create(alarm).Error)

	f := New(db, nil, nil)
	f.OnNeighborhoodAlarm(context.Background(), alarm, []models.User{*peer})

	got, err := models.NotificationsOf(db, peer.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Se activó la alarma vecinal 7", got[0].Description)
	assert.Equal(t, models.NotificationTypeAlarm, got[0].Type)
	assert.Nil(t, got[0].AlertID)
}

func TestPushFailureDoesNotLoseNotifications(t *testing.T) {
	db := newTestDB(t)
	customer, _, alert := seedBase(t, db)
	onDuty := &models.User{CustomerID: customer.ID, Username: "mon", Role: models.RoleMonitoring, Active: true, OnDuty: true}
	require.NoError(t, db.Create(onDuty).Error)

	push := &fakePush{err: errors.New("gateway down")}
	f := New(db, notification.NewPush(push), nil)
	f.OnAlertCreated(context.Background(), alert, false)

	got, err := models.NotificationsOf(db, onDuty.ID, 10, 0)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
