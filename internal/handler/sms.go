package handler

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"basapp/internal/models"
	"basapp/pkg/config"
	"basapp/pkg/errors"
	"basapp/pkg/response"
	"basapp/pkg/token"

	"github.com/gin-gonic/gin"
)

// smsPayload is the structure inside the signed `msj` token the
// carrier gateway builds after decoding the inbound SMS.
type smsPayload struct {
	UserID      uint                `json:"userId"`
	Type        string              `json:"type"`
	Geolocation *models.Geolocation `json:"geolocation,omitempty"`
}

// handleSMSAlert ingests an alert from the SMS gateway. The path is
// unauthenticated: the HMAC signature on the token is the credential.
// Not-found conditions surface as 422, not 404, so the unauthenticated
// caller cannot probe what exists.
func (h *Handlers) handleSMSAlert(c *gin.Context) {
	raw := c.Query("msj")
	payloadBytes, err := token.Verify(raw, config.GlobalConfig.SMSSecretKey)
	if err != nil {
		response.Fail(c, errors.WithCode(errors.CodeAuthorizationRequired, "authorization required"))
		return
	}
	var payload smsPayload
	if err := json.Unmarshal(payloadBytes, &payload); err != nil || payload.UserID == 0 {
		response.Fail(c, errors.WithCode(errors.CodeAuthorizationRequired, "authorization required"))
		return
	}

	user, err := models.GetUser(h.db, payload.UserID)
	if err != nil || !user.Active {
		response.Fail(c, errors.WithCode(errors.CodeAuthorizationRequired, "authorization required"))
		return
	}

	alertType, err := models.FindAlertTypeByType(h.db, payload.Type)
	if err != nil {
		response.Fail(c, asSMSError(err))
		return
	}

	loc := models.Geolocation{}
	if payload.Geolocation != nil {
		loc = *payload.Geolocation
	}

	if alertType.Type == models.TypeNeighborhoodAlarm {
		if err := h.smsNeighborhoodAlarm(c.Request.Context(), user, alertType, loc); err != nil {
			response.Fail(c, asSMSError(err))
			return
		}
		response.Success(c, gin.H{"received": true})
		return
	}

	req := &createAlertRequest{
		AlertTypeID:        alertType.ID,
		Geolocation:        loc,
		ApproximateAddress: user.HomeAddress(),
	}
	alert, contactsOnly, err := h.createAlert(c.Request.Context(), user, req)
	if err != nil {
		response.Fail(c, asSMSError(err))
		return
	}

	go h.enricher.Enrich(context.Background(), alert.ID)
	alertCopy := *alert
	go h.fanout.OnAlertCreated(context.Background(), &alertCopy, contactsOnly)

	response.Success(c, gin.H{"received": true})
}

// smsNeighborhoodAlarm creates the shared siren record, one backing
// alert, and the peer rows for every user sharing the urgency number.
// Zero peers is a valid fanout.
func (h *Handlers) smsNeighborhoodAlarm(ctx context.Context, user *models.User, alertType *models.AlertType, loc models.Geolocation) error {
	if user.AlarmNumber == nil {
		return errors.Validation("alarmNumber: not configured for user")
	}
	urgency := *user.AlarmNumber

	peers, err := models.UsersByAlarmNumber(h.db, user.CustomerID, urgency, user.ID)
	if err != nil {
		return err
	}

	alarm := &models.NeighborhoodAlarm{
		UserID:             user.ID,
		CustomerID:         user.CustomerID,
		Urgency:            urgency,
		ApproximateAddress: user.HomeAddress(),
		Geolocation:        loc,
	}
	if _, err := models.CreateNeighborhoodAlarm(h.db, alarm, peers); err != nil {
		return err
	}

	req := &createAlertRequest{
		AlertTypeID:        alertType.ID,
		Geolocation:        loc,
		ApproximateAddress: user.HomeAddress(),
	}
	alert, _, err := h.createAlert(ctx, user, req)
	if err != nil {
		return err
	}

	go h.enricher.Enrich(context.Background(), alert.ID)
	alarmCopy := *alarm
	peersCopy := append([]models.User(nil), peers...)
	go h.fanout.OnNeighborhoodAlarm(context.Background(), &alarmCopy, peersCopy)
	return nil
}

// asSMSError remaps not-found conditions to 422 for the SMS path.
func asSMSError(err error) error {
	var svcErr *errors.Error
	if stderrors.As(err, &svcErr) {
		switch svcErr.Code {
		case errors.CodeAlertNotFound, errors.CodeAlertStateNotFound, errors.CodeAlertTypeNotFound:
			return svcErr.WithStatus(http.StatusUnprocessableEntity)
		}
	}
	return err
}
