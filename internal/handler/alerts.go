package handler

import (
	"context"
	stderrors "errors"
	"strconv"

	"basapp/internal/models"
	"basapp/pkg/errors"
	"basapp/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type createAlertRequest struct {
	AlertTypeID         uint                   `json:"alertTypeId" binding:"required"`
	Geolocation         models.Geolocation     `json:"geolocation" binding:"required"`
	Geolocations        models.GeolocationList `json:"geolocations"`
	OriginalGeolocation *models.Geolocation    `json:"originalGeolocation"`
	ApproximateAddress  string                 `json:"approximateAddress"`
	Manual              bool                   `json:"manual"`
	Dragged             bool                   `json:"dragged"`
}

func (h *Handlers) handleCreateAlert(c *gin.Context) {
	var req createAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, errors.Validation(err.Error()))
		return
	}
	if !req.Geolocation.Valid() {
		response.Fail(c, errors.Validation("geolocation: invalid coordinates"))
		return
	}

	user := CurrentUser(c)
	alert, contactsOnly, err := h.createAlert(c.Request.Context(), user, &req)
	if err != nil {
		response.Fail(c, err)
		return
	}

	// the client's response never waits on enrichment or fanout
	go h.enricher.Enrich(context.Background(), alert.ID)
	alertCopy := *alert
	go h.fanout.OnAlertCreated(context.Background(), &alertCopy, contactsOnly)

	response.Created(c, alert)
}

// createAlert is the shared creation path for the authenticated and
// SMS adapters: resolve the owning customer, persist in issued state.
func (h *Handlers) createAlert(ctx context.Context, user *models.User, req *createAlertRequest) (*models.Alert, bool, error) {
	var alertType models.AlertType
	if err := h.db.First(&alertType, req.AlertTypeID).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, errors.WithCode(errors.CodeAlertTypeNotFound, "alert type not found")
		}
		return nil, false, err
	}

	res, err := h.resolver.Resolve(ctx, user, req.Geolocation)
	if err != nil {
		return nil, false, err
	}

	alert := &models.Alert{
		CustomerID:          res.Customer.ID,
		UserID:              user.ID,
		AlertTypeID:         alertType.ID,
		Geolocation:         req.Geolocation,
		Geolocations:        req.Geolocations,
		OriginalGeolocation: req.OriginalGeolocation,
		ApproximateAddress:  req.ApproximateAddress,
		LocationID:          res.LocationID,
		Manual:              req.Manual,
		Dragged:             req.Dragged,
		TrialPeriod:         res.TrialPeriod,
	}
	created, err := models.CreateAlert(h.db, alert)
	if err != nil {
		return nil, false, err
	}
	created.AlertType = &alertType
	return created, res.ContactsOnly, nil
}

func (h *Handlers) handleGetAlert(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Fail(c, err)
		return
	}
	alert, err := h.loadVisibleAlert(c, id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, alert)
}

// loadVisibleAlert fetches an alert the caller's tenant may see.
// Cross-tenant ids surface as not-found so existence never leaks.
func (h *Handlers) loadVisibleAlert(c *gin.Context, id uint) (*models.Alert, error) {
	alert, err := models.GetAlert(h.db, id)
	if err != nil {
		return nil, err
	}
	if !h.visibleTo(CurrentUser(c), alert.CustomerID) {
		return nil, errors.WithCode(errors.CodeAlertNotFound, "alert not found")
	}
	return alert, nil
}

func (h *Handlers) handleListAlerts(c *gin.Context) {
	user := CurrentUser(c)
	allowed, err := models.AllowedCustomerIDs(h.db, user.CustomerID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	alerts, total, err := models.ListAlerts(h.db, allowed, limit, offset)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, gin.H{"alerts": alerts, "total": total})
}

type changeStateRequest struct {
	AlertStateID uint   `json:"alertStateId" binding:"required"`
	Code         string `json:"code"`
	Observations string `json:"observations"`
}

func (h *Handlers) handleChangeAlertState(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Fail(c, err)
		return
	}
	var req changeStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, errors.Validation(err.Error()))
		return
	}
	if _, err := h.loadVisibleAlert(c, id); err != nil {
		response.Fail(c, err)
		return
	}

	alert, err := models.ChangeAlertState(h.db, id, req.AlertStateID, req.Code, req.Observations)
	if err != nil {
		response.Fail(c, err)
		return
	}

	alertCopy := *alert
	go h.fanout.OnAlertStateChanged(context.Background(), &alertCopy)

	response.Success(c, alert)
}

type addCheckpointRequest struct {
	Geolocation models.Geolocation `json:"geolocation" binding:"required"`
}

func (h *Handlers) handleAddCheckpoint(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Fail(c, err)
		return
	}
	var req addCheckpointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, errors.Validation(err.Error()))
		return
	}
	if _, err := h.loadVisibleAlert(c, id); err != nil {
		response.Fail(c, err)
		return
	}

	checkpoint, err := models.AddCheckpoint(h.db, id, req.Geolocation)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, checkpoint)
}

func (h *Handlers) handleListCheckpoints(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Fail(c, err)
		return
	}
	if _, err := h.loadVisibleAlert(c, id); err != nil {
		response.Fail(c, err)
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	checkpoints, err := models.ListCheckpoints(h.db, id, c.DefaultQuery("order", "asc"), limit, offset)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, checkpoints)
}

// handleListAlertTypes returns the caller tenant's opted-in types in
// configured order; the mobile client builds its panic buttons from it.
func (h *Handlers) handleListAlertTypes(c *gin.Context) {
	user := CurrentUser(c)
	types, err := models.AlertTypesOf(h.db, user.CustomerID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, types)
}

func (h *Handlers) visibleTo(user *models.User, customerID uint) bool {
	allowed, err := models.AllowedCustomerIDs(h.db, user.CustomerID)
	if err != nil {
		return false
	}
	for _, id := range allowed {
		if id == customerID {
			return true
		}
	}
	return false
}

func pathID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, errors.Validation("id: must be a positive integer")
	}
	return uint(id), nil
}
