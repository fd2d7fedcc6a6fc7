package fanout

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"basapp/internal/models"
	"basapp/pkg/cache"
	"basapp/pkg/logger"
	"basapp/pkg/notification"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// onDutyCacheTTL bounds how stale the cached monitor list may be.
// Shift changes propagate within this window.
const onDutyCacheTTL = 30 * time.Second

// Fanout builds and persists notifications for alert events. Entirely
// best-effort: every failure is logged and swallowed so the triggering
// operation never depends on it.
type Fanout struct {
	db    *gorm.DB
	push  *notification.Push
	cache cache.Cache
}

func New(db *gorm.DB, push *notification.Push, c cache.Cache) *Fanout {
	if push == nil {
		push = notification.NewPush(nil)
	}
	return &Fanout{db: db, push: push, cache: c}
}

// OnAlertCreated notifies the reporter's personal contacts when the
// alert landed outside their own customer (contactsOnly), otherwise
// the destination customer's on-duty monitoring users.
func (f *Fanout) OnAlertCreated(ctx context.Context, alert *models.Alert, contactsOnly bool) {
	var recipients []uint
	var err error
	if contactsOnly {
		recipients, err = models.ContactUserIDs(f.db, alert.UserID)
	} else {
		recipients, err = f.onDutyRecipients(ctx, alert.CustomerID)
	}
	if err != nil {
		logger.Warn("fanout: recipient lookup failed", zap.Uint("alertId", alert.ID), zap.Error(err))
		return
	}

	typeName := "alerta"
	if alert.AlertType != nil {
		typeName = alert.AlertType.Name
	}
	title := "Nueva alerta"
	description := fmt.Sprintf("Se ha emitido una alerta de %s", typeName)

	f.deliver(ctx, recipients, alert.CustomerID, &alert.ID, models.NotificationTypeAlert, title, description)
}

// onDutyRecipients resolves the destination customer's on-shift
// monitors, served from the shared cache within the TTL. Entries are
// JSON-encoded strings so the redis backend can hold them too.
func (f *Fanout) onDutyRecipients(ctx context.Context, customerID uint) ([]uint, error) {
	key := fmt.Sprintf("onduty:%d", customerID)
	if f.cache != nil {
		if raw, ok := f.cache.Get(ctx, key); ok {
			if encoded, ok := raw.(string); ok {
				var ids []uint
				if err := json.Unmarshal([]byte(encoded), &ids); err == nil {
					return ids, nil
				}
			}
		}
	}

	ids, err := models.OnDutyMonitorIDs(f.db, customerID)
	if err != nil {
		return nil, err
	}
	if f.cache != nil {
		encoded, err := json.Marshal(ids)
		if err == nil {
			if err := f.cache.Set(ctx, key, string(encoded), onDutyCacheTTL); err != nil {
				logger.Warn("fanout: on-duty cache write failed", zap.Uint("customerId", customerID), zap.Error(err))
			}
		}
	}
	return ids, nil
}

// OnAlertStateChanged notifies the original reporter, naming the new
// state in the description.
func (f *Fanout) OnAlertStateChanged(ctx context.Context, alert *models.Alert) {
	stateName := ""
	if alert.AlertState != nil {
		stateName = alert.AlertState.Name
	}
	title := "Tu alerta cambió de estado"
	description := fmt.Sprintf("Tu alerta pasó al estado %s", stateName)

	f.deliver(ctx, []uint{alert.UserID}, alert.CustomerID, &alert.ID, models.NotificationTypeAlertState, title, description)
}

// OnNeighborhoodAlarm notifies every peer sharing the urgency number.
func (f *Fanout) OnNeighborhoodAlarm(ctx context.Context, alarm *models.NeighborhoodAlarm, peers []models.User) {
	recipients := make([]uint, 0, len(peers))
	for _, p := range peers {
		recipients = append(recipients, p.ID)
	}
	title := "Alarma vecinal"
	description := fmt.Sprintf("Se activó la alarma vecinal %d", alarm.Urgency)

	f.deliver(ctx, recipients, alarm.CustomerID, nil, models.NotificationTypeAlarm, title, description)
}

func (f *Fanout) deliver(ctx context.Context, recipients []uint, customerID uint, alertID *uint, notifType, title, description string) {
	for _, userID := range recipients {
		n := &models.Notification{
			UserID:      userID,
			CustomerID:  customerID,
			Title:       title,
			Description: description,
			Type:        notifType,
			Emergency:   true,
			AlertID:     alertID,
		}
		if err := models.CreateNotification(f.db, n); err != nil {
			logger.Warn("fanout: notification write failed", zap.Uint("userId", userID), zap.Error(err))
		}
	}
	if err := f.push.Send(ctx, recipients, title, description, map[string]interface{}{"type": notifType}); err != nil {
		logger.Warn("fanout: push delivery failed", zap.Error(err))
	}
}
