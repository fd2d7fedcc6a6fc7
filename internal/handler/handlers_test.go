package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"basapp/internal/enrichment"
	"basapp/internal/fanout"
	"basapp/internal/models"
	"basapp/internal/resolver"
	"basapp/pkg/cache"
	"basapp/pkg/config"
	"basapp/pkg/logger"
	"basapp/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSMSSecret = "test-sms-secret"

func newTestServer(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger.Init(logger.LogConfig{Level: "error"})
	config.GlobalConfig = &config.Config{
		APIPrefix:    "/v1",
		SMSSecretKey: testSMSSecret,
		RateLimit:    "1000-M",
		SMSRateLimit: "1000-M",
	}

	db, err := util.InitDatabase("", "file::memory:")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, models.Migrate(db))

	c, err := cache.NewCache(cache.Config{Type: "local"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	h := NewHandlers(db,
		resolver.New(db, nil),
		enrichment.New(db, nil, time.Second),
		fanout.New(db, nil, c),
		c,
	)
	engine := gin.New()
	h.Register(engine)
	return engine, db
}

func seedTenant(t *testing.T, db *gorm.DB) (*models.Customer, *models.User, *models.AlertType, *models.AlertState) {
	t.Helper()
	customer := &models.Customer{Name: "Barrio Norte", Type: models.CustomerTypeBusiness, Active: true}
	require.NoError(t, db.Create(customer).Error)
	user := &models.User{CustomerID: customer.ID, Username: "+5491100000000", Active: true}
	require.NoError(t, db.Create(user).Error)
	alertType := &models.AlertType{Type: "fire", Name: "Incendio"}
	require.NoError(t, db.Create(alertType).Error)
	issued := &models.AlertState{Name: models.StateIssued, Active: true}
	require.NoError(t, db.Create(issued).Error)
	return customer, user, alertType, issued
}

func doRequest(engine *gin.Engine, method, path string, body []byte, userID uint) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if userID != 0 {
		req.Header.Set("X-User-ID", strconv.FormatUint(uint64(userID), 10))
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func doRequestWithKey(engine *gin.Engine, body []byte, userID uint, idemKey string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/alerts", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", strconv.FormatUint(uint64(userID), 10))
	req.Header.Set("Idempotency-Key", idemKey)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}
