package models

import (
	"testing"

	"basapp/pkg/util"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newTestDB opens an isolated in-memory database per test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := util.InitDatabase("", "file::memory:")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// a single connection keeps every query on the same memory db
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, Migrate(db))
	return db
}

func seedCustomer(t *testing.T, db *gorm.DB, name, typ string, parentID *uint) *Customer {
	t.Helper()
	customer := &Customer{Name: name, Type: typ, ParentID: parentID, Active: true}
	require.NoError(t, db.Create(customer).Error)
	return customer
}

func seedIssuedState(t *testing.T, db *gorm.DB) *AlertState {
	t.Helper()
	state := &AlertState{Name: StateIssued, Active: true}
	require.NoError(t, db.Create(state).Error)
	return state
}

func seedAlertType(t *testing.T, db *gorm.DB, typeCode, name string) *AlertType {
	t.Helper()
	at := &AlertType{Type: typeCode, Name: name}
	require.NoError(t, db.Create(at).Error)
	return at
}

func seedUser(t *testing.T, db *gorm.DB, customerID uint, name string) *User {
	t.Helper()
	user := &User{CustomerID: customerID, FullName: name, Username: name, Role: RoleUser, Active: true}
	require.NoError(t, db.Create(user).Error)
	return user
}
