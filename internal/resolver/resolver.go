package resolver

import (
	"context"
	"strings"
	"unicode"

	"basapp/internal/models"
	"basapp/pkg/errors"
	"basapp/pkg/geo"
	"basapp/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
)

// Resolution is the outcome of mapping a report onto its owning
// customer.
type Resolution struct {
	Customer   *models.Customer
	LocationID *uint

	// TrialPeriod: the resolved customer has no paid integration.
	TrialPeriod bool
	// ContactsOnly: the alert landed in a customer other than the
	// reporter's own, so only personal contacts get notified.
	ContactsOnly bool
}

// Resolver maps a geolocation plus the reporting user's tenant context
// to the owning customer. For government tenants the locality match is
// name-based against the reverse-geocoded address, a best-effort
// heuristic rather than a polygon geofence.
type Resolver struct {
	db       *gorm.DB
	geocoder geo.Geocoder
}

func New(db *gorm.DB, geocoder geo.Geocoder) *Resolver {
	return &Resolver{db: db, geocoder: geocoder}
}

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// fold lowercases and strips diacritics so "Ñuñoa" matches "nunoa".
func fold(s string) string {
	out, _, err := transform.String(foldTransformer, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}

// Resolve picks the owning customer for a report.
func (r *Resolver) Resolve(ctx context.Context, user *models.User, loc models.Geolocation) (*Resolution, error) {
	home, err := models.GetCustomer(r.db, user.CustomerID)
	if err != nil {
		return nil, err
	}
	if !home.Active {
		return nil, errors.WithCode(errors.CodeCustomerNotAllowed, "customer not allowed")
	}

	resolved := home
	var locationID *uint

	if home.Type == models.CustomerTypeGovernment && r.geocoder != nil {
		resolved, locationID = r.resolveGovernment(ctx, home, loc)
	}

	return &Resolution{
		Customer:     resolved,
		LocationID:   locationID,
		TrialPeriod:  resolved.OnTrial(),
		ContactsOnly: resolved.ID != home.ID,
	}, nil
}

// resolveGovernment searches the home customer and its relatives for a
// location name match: exact neighborhood first, then locality, then
// the home customer. Geocode failures fall back to home.
func (r *Resolver) resolveGovernment(ctx context.Context, home *models.Customer, loc models.Geolocation) (*models.Customer, *uint) {
	addr, err := r.geocoder.ReverseGeocode(ctx, loc.Latitude, loc.Longitude)
	if err != nil {
		logger.Warn("resolver geocode failed", zap.Error(err))
		return home, nil
	}

	related, err := models.RelatedCustomers(r.db, home)
	if err != nil {
		logger.Warn("resolver related customers failed", zap.Error(err))
		return home, nil
	}
	candidates := append([]models.Customer{*home}, related...)
	byID := make(map[uint]*models.Customer, len(candidates))
	ids := make([]uint, 0, len(candidates))
	for i := range candidates {
		byID[candidates[i].ID] = &candidates[i]
		ids = append(ids, candidates[i].ID)
	}

	locations, err := models.LocationsOf(r.db, ids)
	if err != nil {
		logger.Warn("resolver locations failed", zap.Error(err))
		return home, nil
	}

	neighborhood := fold(addr.District)
	locality := fold(addr.City)

	// neighborhood match is the most specific
	if neighborhood != "" {
		for i := range locations {
			l := &locations[i]
			if l.Type == models.LocationTypeNeighborhood && fold(l.Name) == neighborhood {
				return byID[l.CustomerID], &l.ID
			}
		}
	}
	if locality != "" {
		for i := range locations {
			l := &locations[i]
			if l.Type == models.LocationTypeLocality && fold(l.Name) == locality {
				return byID[l.CustomerID], &l.ID
			}
		}
	}
	return home, nil
}

// EnsureCustomersAllowed verifies every requested customer is inside
// the caller's visibility set (own customer plus descendants).
func EnsureCustomersAllowed(db *gorm.DB, callerCustomerID uint, requested []uint) error {
	allowed, err := models.AllowedCustomerIDs(db, callerCustomerID)
	if err != nil {
		return err
	}
	allowedSet := make(map[uint]struct{}, len(allowed))
	for _, id := range allowed {
		allowedSet[id] = struct{}{}
	}
	for _, id := range requested {
		if _, ok := allowedSet[id]; !ok {
			return errors.WithCode(errors.CodeCustomerNotAllowed, "customer not allowed")
		}
	}
	return nil
}
