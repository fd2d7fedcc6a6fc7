package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	CustomerTypeBusiness   = "business"
	CustomerTypeGovernment = "government"

	LocationTypeLocality     = "locality"
	LocationTypeNeighborhood = "neighborhood"
)

// Customer is a tenant: a gated community or a municipality. Every
// alert, state and type is scoped to exactly one customer.
type Customer struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	Name     string `json:"name" gorm:"size:255"`
	Type     string `json:"type" gorm:"size:20"` // business | government
	ParentID *uint  `json:"parentId" gorm:"index"`
	Active   bool   `json:"active" gorm:"default:true"`

	// Integration credentials. Empty URL means the integration is off.
	CybermapaURL      string `json:"-" gorm:"size:255"`
	CybermapaUser     string `json:"-" gorm:"size:128"`
	CybermapaPassword string `json:"-" gorm:"size:128"`
	TraccarURL        string `json:"-" gorm:"size:255"`
	TraccarUser       string `json:"-" gorm:"size:128"`
	TraccarPassword   string `json:"-" gorm:"size:128"`

	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

// Location is a named locality or neighborhood a government customer
// covers. Matching is by name, a best-effort heuristic, not a polygon.
type Location struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	CustomerID uint      `json:"customerId" gorm:"index"`
	Name       string    `json:"name" gorm:"size:255"`
	Type       string    `json:"type" gorm:"size:20"` // locality | neighborhood
	CreatedAt  time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt  time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

// HasCybermapa reports whether the legacy tracking integration is configured.
func (c *Customer) HasCybermapa() bool { return c.CybermapaURL != "" }

// HasTraccar reports whether the Traccar integration is configured.
func (c *Customer) HasTraccar() bool { return c.TraccarURL != "" }

// OnTrial is true when the customer has no paid integration at all.
func (c *Customer) OnTrial() bool { return !c.HasCybermapa() && !c.HasTraccar() }

// GetCustomer fetches one customer by id.
func GetCustomer(db *gorm.DB, id uint) (*Customer, error) {
	var customer Customer
	if err := db.First(&customer, id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// RelatedCustomers returns the customer's parent and children, the
// candidate set for government geofence resolution.
func RelatedCustomers(db *gorm.DB, customer *Customer) ([]Customer, error) {
	var related []Customer
	query := db.Where("parent_id = ? AND active = ?", customer.ID, true)
	if customer.ParentID != nil {
		query = query.Or("id = ?", *customer.ParentID)
	}
	if err := query.Find(&related).Error; err != nil {
		return nil, err
	}
	return related, nil
}

// AllowedCustomerIDs returns the customer id plus every active
// descendant, the visibility set for cross-tenant reads.
func AllowedCustomerIDs(db *gorm.DB, customerID uint) ([]uint, error) {
	allowed := []uint{customerID}
	frontier := []uint{customerID}
	for len(frontier) > 0 {
		var children []uint
		if err := db.Model(&Customer{}).
			Where("parent_id IN ? AND active = ?", frontier, true).
			Pluck("id", &children).Error; err != nil {
			return nil, err
		}
		allowed = append(allowed, children...)
		frontier = children
	}
	return allowed, nil
}

// LocationsOf lists the named locations of a set of customers.
func LocationsOf(db *gorm.DB, customerIDs []uint) ([]Location, error) {
	var locations []Location
	if len(customerIDs) == 0 {
		return locations, nil
	}
	if err := db.Where("customer_id IN ?", customerIDs).Find(&locations).Error; err != nil {
		return nil, err
	}
	return locations, nil
}
