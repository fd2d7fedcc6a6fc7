package models

import (
	"testing"

	"basapp/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAlert(t *testing.T) {
	db := newTestDB(t)
	customer := seedCustomer(t, db, "Barrio Norte", CustomerTypeBusiness, nil)
	issued := seedIssuedState(t, db)
	at := seedAlertType(t, db, "fire", "Incendio")
	user := seedUser(t, db, customer.ID, "ana")

	t.Run("created in issued state", func(t *testing.T) {
		alert, err := CreateAlert(db, &Alert{
			CustomerID:  customer.ID,
			UserID:      user.ID,
			AlertTypeID: at.ID,
			Geolocation: Geolocation{Latitude: -34.6, Longitude: -58.4},
		})
		require.NoError(t, err)
		require.NotNil(t, alert.AlertStateID)
		assert.Equal(t, issued.ID, *alert.AlertStateID)
		assert.NotNil(t, alert.AlertStateUpdatedAt)
	})

	t.Run("tenant-scoped issued state wins over the global one", func(t *testing.T) {
		scoped := &AlertState{Name: StateIssued, Active: true, CustomerID: &customer.ID}
		require.NoError(t, db.Create(scoped).Error)

		alert, err := CreateAlert(db, &Alert{
			CustomerID:  customer.ID,
			UserID:      user.ID,
			AlertTypeID: at.ID,
			Geolocation: Geolocation{Latitude: -34.6, Longitude: -58.4},
		})
		require.NoError(t, err)
		assert.Equal(t, scoped.ID, *alert.AlertStateID)
	})

	t.Run("scoped state wins regardless of creation order", func(t *testing.T) {
		late := seedCustomer(t, db, "Barrio Sur", CustomerTypeBusiness, nil)
		scoped := &AlertState{Name: StateIssued, Active: true, CustomerID: &late.ID}
		require.NoError(t, db.Create(scoped).Error)
		lateUser := seedUser(t, db, late.ID, "sur")

		state, err := IssuedStateFor(db, late.ID)
		require.NoError(t, err)
		assert.Equal(t, scoped.ID, state.ID)

		alert, err := CreateAlert(db, &Alert{
			CustomerID:  late.ID,
			UserID:      lateUser.ID,
			AlertTypeID: at.ID,
			Geolocation: Geolocation{Latitude: -34.6, Longitude: -58.4},
		})
		require.NoError(t, err)
		assert.Equal(t, scoped.ID, *alert.AlertStateID)
	})
}

func TestChangeAlertState(t *testing.T) {
	db := newTestDB(t)
	customer := seedCustomer(t, db, "Barrio Norte", CustomerTypeBusiness, nil)
	other := seedCustomer(t, db, "Otro", CustomerTypeBusiness, nil)
	seedIssuedState(t, db)
	at := seedAlertType(t, db, "fire", "Incendio")
	user := seedUser(t, db, customer.ID, "ana")

	newAlert := func(t *testing.T) *Alert {
		alert, err := CreateAlert(db, &Alert{
			CustomerID:  customer.ID,
			UserID:      user.ID,
			AlertTypeID: at.ID,
			Geolocation: Geolocation{Latitude: -34.6, Longitude: -58.4},
		})
		require.NoError(t, err)
		return alert
	}

	t.Run("valid transition updates state, code and observations", func(t *testing.T) {
		attended := &AlertState{Name: "Atendida", Active: true}
		require.NoError(t, db.Create(attended).Error)

		alert := newAlert(t)
		before := *alert.AlertStateUpdatedAt

		updated, err := ChangeAlertState(db, alert.ID, attended.ID, "OP-7", "patrulla en camino")
		require.NoError(t, err)
		assert.Equal(t, attended.ID, *updated.AlertStateID)
		assert.Equal(t, "OP-7", updated.Code)
		assert.Equal(t, "patrulla en camino", updated.Observations)
		assert.False(t, updated.AlertStateUpdatedAt.Before(before))

		reloaded, err := GetAlert(db, alert.ID)
		require.NoError(t, err)
		assert.Equal(t, attended.ID, *reloaded.AlertStateID)
	})

	t.Run("state scoped to another tenant is invisible", func(t *testing.T) {
		foreign := &AlertState{Name: "Cerrada", Active: true, CustomerID: &other.ID}
		require.NoError(t, db.Create(foreign).Error)

		alert := newAlert(t)
		_, err := ChangeAlertState(db, alert.ID, foreign.ID, "", "")
		var svcErr *errors.Error
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, errors.CodeAlertStateNotFound, svcErr.Code)
	})

	t.Run("inactive state is invisible", func(t *testing.T) {
		inactive := &AlertState{Name: "Vieja", Active: false}
		require.NoError(t, db.Create(inactive).Error)

		alert := newAlert(t)
		_, err := ChangeAlertState(db, alert.ID, inactive.ID, "", "")
		var svcErr *errors.Error
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, errors.CodeAlertStateNotFound, svcErr.Code)
	})

	t.Run("missing alert", func(t *testing.T) {
		_, err := ChangeAlertState(db, 99999, 1, "", "")
		var svcErr *errors.Error
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, errors.CodeAlertNotFound, svcErr.Code)
	})

	t.Run("oversized operator code", func(t *testing.T) {
		alert := newAlert(t)
		_, err := ChangeAlertState(db, alert.ID, 1, "THIS-CODE-IS-WAY-TOO-LONG-FOR-THE-FIELD", "")
		var svcErr *errors.Error
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, errors.CodeValidation, svcErr.Code)
	})
}

func TestMergeResolvedAddress(t *testing.T) {
	db := newTestDB(t)
	customer := seedCustomer(t, db, "Barrio Norte", CustomerTypeBusiness, nil)
	seedIssuedState(t, db)
	at := seedAlertType(t, db, "fire", "Incendio")
	user := seedUser(t, db, customer.ID, "ana")

	t.Run("fills empty fields only", func(t *testing.T) {
		alert, err := CreateAlert(db, &Alert{
			CustomerID:         customer.ID,
			UserID:             user.ID,
			AlertTypeID:        at.ID,
			Geolocation:        Geolocation{Latitude: -34.6, Longitude: -58.4},
			ApproximateAddress: "Av. Siempre Viva 742",
		})
		require.NoError(t, err)

		require.NoError(t, MergeResolvedAddress(db, alert.ID, "Calle Falsa 123", "Springfield", "Centro", "BA", "AR"))

		reloaded, err := GetAlert(db, alert.ID)
		require.NoError(t, err)
		// client-supplied display address preserved verbatim
		assert.Equal(t, "Av. Siempre Viva 742", reloaded.ApproximateAddress)
		assert.Equal(t, "Springfield", reloaded.City)
		assert.Equal(t, "Centro", reloaded.District)
	})

	t.Run("never regresses set fields to empty", func(t *testing.T) {
		alert, err := CreateAlert(db, &Alert{
			CustomerID:  customer.ID,
			UserID:      user.ID,
			AlertTypeID: at.ID,
			Geolocation: Geolocation{Latitude: -34.6, Longitude: -58.4},
		})
		require.NoError(t, err)

		require.NoError(t, MergeResolvedAddress(db, alert.ID, "Calle Falsa 123", "Springfield", "", "", ""))
		require.NoError(t, MergeResolvedAddress(db, alert.ID, "", "", "", "", ""))

		reloaded, err := GetAlert(db, alert.ID)
		require.NoError(t, err)
		assert.Equal(t, "Calle Falsa 123", reloaded.ApproximateAddress)
		assert.Equal(t, "Springfield", reloaded.City)
	})
}
