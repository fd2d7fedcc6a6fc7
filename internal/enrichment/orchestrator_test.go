package enrichment

import (
	"context"
	"errors"
	"testing"
	"time"

	"basapp/internal/models"
	"basapp/pkg/geo"
	"basapp/pkg/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeGeocoder struct {
	addr *geo.Address
	err  error
}

func (f *fakeGeocoder) ReverseGeocode(ctx context.Context, lat, lng float64) (*geo.Address, error) {
	return f.addr, f.err
}

type fakeVehicles struct {
	vehicles []geo.Vehicle
	err      error
	called   bool
}

func (f *fakeVehicles) Vehicles(ctx context.Context, plates []string) ([]geo.Vehicle, error) {
	f.called = true
	return f.vehicles, f.err
}

type fakeDevices struct {
	devices   []geo.Device
	positions []geo.Position
	err       error
	called    bool
}

func (f *fakeDevices) Devices(ctx context.Context) ([]geo.Device, error) {
	f.called = true
	return f.devices, f.err
}

func (f *fakeDevices) Positions(ctx context.Context) ([]geo.Position, error) {
	return f.positions, f.err
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

func seedAlert(t *testing.T, db *gorm.DB, customer *models.Customer, user *models.User) *models.Alert {
	t.Helper()
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
	return alert
}

func trailOf(t *testing.T, db *gorm.DB, alertID uint) map[string]models.ExternalService {
	t.Helper()
	entries, err := models.ExternalServicesOf(db, alertID)
	require.NoError(t, err)
	byService := map[string]models.ExternalService{}
	for _, e := range entries {
		byService[e.Service] = e
	}
	return byService
}

func TestEnrichRunsConfiguredIntegrations(t *testing.T) {
	db := newTestDB(t)
	customer := &models.Customer{
		Name: "Barrio", Type: models.CustomerTypeBusiness, Active: true,
		CybermapaURL: "https://gps.example.com", CybermapaUser: "u", CybermapaPassword: "p",
		TraccarURL: "https://traccar.example.com", TraccarUser: "u", TraccarPassword: "p",
	}
	require.NoError(t, db.Create(customer).Error)
	user := &models.User{CustomerID: customer.ID, Username: "dri", Active: true, VehiclePlates: "ABC123,XYZ789"}
	require.NoError(t, db.Create(user).Error)
	alert := seedAlert(t, db, customer, user)

	vehicles := &fakeVehicles{vehicles: []geo.Vehicle{{Plate: "ABC123", Latitude: -34.61, Longitude: -58.41}}}
	devices := &fakeDevices{devices: []geo.Device{{ID: 1, Name: "unit-1"}}}
	o := New(db, &fakeGeocoder{addr: &geo.Address{Formatted: "Av. Siempre Viva 742", City: "Springfield"}}, time.Second).
		WithClients(
			func(*models.Customer) VehicleTracker { return vehicles },
			func(*models.Customer) DeviceTracker { return devices },
		)

	o.Enrich(context.Background(), alert.ID)

	assert.True(t, vehicles.called)
	assert.True(t, devices.called)

	trail := trailOf(t, db, alert.ID)
	require.Len(t, trail, 3)
	assert.False(t, trail[models.ServiceGeocoding].Error)
	assert.False(t, trail[models.ServiceCybermapa].Error)
	assert.False(t, trail[models.ServiceTraccar].Error)
	assert.Contains(t, trail[models.ServiceCybermapa].Attributes, "ABC123")

	// resolved address filled the empty fields
	got, err := models.GetAlert(db, alert.ID)
	require.NoError(t, err)
	assert.Equal(t, "Av. Siempre Viva 742", got.ApproximateAddress)
	assert.Equal(t, "Springfield", got.City)
}

func TestEnrichSkipsUnconfiguredIntegrations(t *testing.T) {
	db := newTestDB(t)
	customer := &models.Customer{Name: "Trial", Type: models.CustomerTypeBusiness, Active: true}
	require.NoError(t, db.Create(customer).Error)
	user := &models.User{CustomerID: customer.ID, Username: "ped", Active: true}
	require.NoError(t, db.Create(user).Error)
	alert := seedAlert(t, db, customer, user)

	vehicles := &fakeVehicles{}
	devices := &fakeDevices{}
	o := New(db, &fakeGeocoder{addr: &geo.Address{City: "Springfield"}}, time.Second).
		WithClients(
			func(*models.Customer) VehicleTracker { return vehicles },
			func(*models.Customer) DeviceTracker { return devices },
		)

	o.Enrich(context.Background(), alert.ID)

	assert.False(t, vehicles.called)
	assert.False(t, devices.called)

	trail := trailOf(t, db, alert.ID)
	require.Len(t, trail, 1)
	_, ok := trail[models.ServiceGeocoding]
	assert.True(t, ok)
}

func TestEnrichRecordsFailures(t *testing.T) {
	db := newTestDB(t)
	customer := &models.Customer{
		Name: "Barrio", Type: models.CustomerTypeBusiness, Active: true,
		TraccarURL: "https://traccar.example.com",
	}
	require.NoError(t, db.Create(customer).Error)
	user := &models.User{CustomerID: customer.ID, Username: "lau", Active: true}
	require.NoError(t, db.Create(user).Error)
	alert := seedAlert(t, db, customer, user)

	devices := &fakeDevices{err: errors.New("connection refused")}
	o := New(db, &fakeGeocoder{err: errors.New("quota exceeded")}, time.Second).
		WithClients(nil, func(*models.Customer) DeviceTracker { return devices })

	o.Enrich(context.Background(), alert.ID)

	trail := trailOf(t, db, alert.ID)
	require.Len(t, trail, 2)
	assert.True(t, trail[models.ServiceGeocoding].Error)
	assert.Equal(t, "quota exceeded", trail[models.ServiceGeocoding].ErrorText)
	assert.True(t, trail[models.ServiceTraccar].Error)
	assert.Equal(t, "connection refused", trail[models.ServiceTraccar].ErrorText)

	// failed enrichment never touches the alert
	got, err := models.GetAlert(db, alert.ID)
	require.NoError(t, err)
	assert.Empty(t, got.ApproximateAddress)
}

func TestEnrichPreservesClientAddress(t *testing.T) {
	db := newTestDB(t)
	customer := &models.Customer{Name: "Barrio", Type: models.CustomerTypeBusiness, Active: true}
	require.NoError(t, db.Create(customer).Error)
	user := &models.User{CustomerID: customer.ID, Username: "mar", Active: true}
	require.NoError(t, db.Create(user).Error)

	require.NoError(t, db.Create(&models.AlertState{Name: models.StateIssued, Active: true}).Error)
	alertType := &models.AlertType{Type: "fire", Name: "Incendio"}
	require.NoError(t, db.Create(alertType).Error)
	alert, err := models.CreateAlert(db, &models.Alert{
		CustomerID:         customer.ID,
		UserID:             user.ID,
		AlertTypeID:        alertType.ID,
		Geolocation:        models.Geolocation{Latitude: -34.6, Longitude: -58.4},
		ApproximateAddress: "Frente a la plaza",
	})
	require.NoError(t, err)

	o := New(db, &fakeGeocoder{addr: &geo.Address{Formatted: "Calle Falsa 123", City: "Springfield"}}, time.Second)
	o.Enrich(context.Background(), alert.ID)

	got, err := models.GetAlert(db, alert.ID)
	require.NoError(t, err)
	assert.Equal(t, "Frente a la plaza", got.ApproximateAddress)
	assert.Equal(t, "Springfield", got.City)
}
