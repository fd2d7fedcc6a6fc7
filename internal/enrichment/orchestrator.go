package enrichment

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"basapp/internal/models"
	"basapp/pkg/geo"
	"basapp/pkg/logger"
	"basapp/pkg/metrics"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultCallTimeout = 10 * time.Second

// VehicleTracker is the narrow surface of the legacy Cybermapa feed.
type VehicleTracker interface {
	Vehicles(ctx context.Context, plates []string) ([]geo.Vehicle, error)
}

// DeviceTracker is the narrow surface of a Traccar server.
type DeviceTracker interface {
	Devices(ctx context.Context) ([]geo.Device, error)
	Positions(ctx context.Context) ([]geo.Position, error)
}

// Orchestrator runs the best-effort enrichment calls for a freshly
// created alert. Calls are parallel and independent: one failing,
// hanging or timing out never blocks the others, and nothing here ever
// propagates to the alert's creator. Every attempt leaves an
// ExternalService row.
type Orchestrator struct {
	db       *gorm.DB
	geocoder geo.Geocoder
	timeout  time.Duration

	// per-customer client factories, replaceable in tests
	cybermapaFor func(c *models.Customer) VehicleTracker
	traccarFor   func(c *models.Customer) DeviceTracker
}

func New(db *gorm.DB, geocoder geo.Geocoder, timeout time.Duration) *Orchestrator {
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}
	return &Orchestrator{
		db:       db,
		geocoder: geocoder,
		timeout:  timeout,
		cybermapaFor: func(c *models.Customer) VehicleTracker {
			return geo.NewCybermapaClient(c.CybermapaURL, c.CybermapaUser, c.CybermapaPassword)
		},
		traccarFor: func(c *models.Customer) DeviceTracker {
			return geo.NewTraccarClient(c.TraccarURL, c.TraccarUser, c.TraccarPassword)
		},
	}
}

// WithClients overrides the integration client factories (tests).
func (o *Orchestrator) WithClients(cybermapa func(*models.Customer) VehicleTracker, traccar func(*models.Customer) DeviceTracker) *Orchestrator {
	if cybermapa != nil {
		o.cybermapaFor = cybermapa
	}
	if traccar != nil {
		o.traccarFor = traccar
	}
	return o
}

// Enrich runs all configured integrations for the alert and waits for
// them. Callers that must not wait run it in a goroutine.
func (o *Orchestrator) Enrich(ctx context.Context, alertID uint) {
	alert, err := models.GetAlert(o.db, alertID)
	if err != nil {
		logger.Warn("enrichment: alert load failed", zap.Uint("alertId", alertID), zap.Error(err))
		return
	}
	customer, err := models.GetCustomer(o.db, alert.CustomerID)
	if err != nil {
		logger.Warn("enrichment: customer load failed", zap.Uint("alertId", alertID), zap.Error(err))
		return
	}
	user, err := models.GetUser(o.db, alert.UserID)
	if err != nil {
		logger.Warn("enrichment: user load failed", zap.Uint("alertId", alertID), zap.Error(err))
		return
	}

	var wg sync.WaitGroup
	run := func(fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					logger.Error("enrichment panic", zap.Uint("alertId", alertID), zap.Any("panic", r))
				}
			}()
			fn()
		}()
	}

	if o.geocoder != nil {
		run(func() { o.reverseGeocode(ctx, alert) })
	}
	if customer.HasCybermapa() && len(user.Plates()) > 0 {
		run(func() { o.cybermapa(ctx, alert, customer, user) })
	}
	if customer.HasTraccar() {
		run(func() { o.traccar(ctx, alert, customer) })
	}
	wg.Wait()
}

func (o *Orchestrator) reverseGeocode(ctx context.Context, alert *models.Alert) {
	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	addr, err := o.geocoder.ReverseGeocode(callCtx, alert.Geolocation.Latitude, alert.Geolocation.Longitude)
	if err != nil {
		o.logFailure(alert.ID, models.ServiceGeocoding, err)
		return
	}
	o.logSuccess(alert.ID, models.ServiceGeocoding, addr)

	// the client-supplied approximate address stays verbatim; the
	// resolved one only fills what is still empty
	if err := models.MergeResolvedAddress(o.db, alert.ID, addr.Formatted, addr.City, addr.District, addr.State, addr.Country); err != nil {
		logger.Warn("enrichment: address merge failed", zap.Uint("alertId", alert.ID), zap.Error(err))
	}
}

func (o *Orchestrator) cybermapa(ctx context.Context, alert *models.Alert, customer *models.Customer, user *models.User) {
	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	vehicles, err := o.cybermapaFor(customer).Vehicles(callCtx, user.Plates())
	if err != nil {
		o.logFailure(alert.ID, models.ServiceCybermapa, err)
		return
	}
	o.logSuccess(alert.ID, models.ServiceCybermapa, vehicles)
}

func (o *Orchestrator) traccar(ctx context.Context, alert *models.Alert, customer *models.Customer) {
	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	client := o.traccarFor(customer)
	devices, err := client.Devices(callCtx)
	if err != nil {
		o.logFailure(alert.ID, models.ServiceTraccar, err)
		return
	}
	positions, err := client.Positions(callCtx)
	if err != nil {
		o.logFailure(alert.ID, models.ServiceTraccar, err)
		return
	}
	o.logSuccess(alert.ID, models.ServiceTraccar, map[string]interface{}{
		"devices":   devices,
		"positions": positions,
	})
}

func (o *Orchestrator) logSuccess(alertID uint, service string, payload interface{}) {
	metrics.EnrichmentCalls.WithLabelValues(service, "success").Inc()
	attrs, err := json.Marshal(payload)
	if err != nil {
		attrs = []byte("{}")
	}
	if err := models.LogExternalSuccess(o.db, alertID, service, string(attrs)); err != nil {
		logger.Warn("enrichment: log write failed", zap.Uint("alertId", alertID), zap.String("service", service), zap.Error(err))
	}
}

func (o *Orchestrator) logFailure(alertID uint, service string, callErr error) {
	metrics.EnrichmentCalls.WithLabelValues(service, "failure").Inc()
	logger.Warn("enrichment call failed", zap.Uint("alertId", alertID), zap.String("service", service), zap.Error(callErr))
	if err := models.LogExternalFailure(o.db, alertID, service, callErr); err != nil {
		logger.Warn("enrichment: log write failed", zap.Uint("alertId", alertID), zap.String("service", service), zap.Error(err))
	}
}
