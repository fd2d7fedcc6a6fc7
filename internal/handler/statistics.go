package handler

import (
	"strconv"
	"strings"
	"time"

	"basapp/internal/models"
	"basapp/internal/resolver"
	"basapp/pkg/errors"
	"basapp/pkg/response"

	"github.com/gin-gonic/gin"
)

// parseStatisticsFilter reads the shared window query params.
func parseStatisticsFilter(c *gin.Context) (models.StatisticsFilter, error) {
	var filter models.StatisticsFilter
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, errors.Validation("from: must be RFC3339")
		}
		filter.From = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, errors.Validation("to: must be RFC3339")
		}
		filter.To = &t
	}
	if raw := c.Query("alertTypeId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return filter, errors.Validation("alertTypeId: must be a positive integer")
		}
		typed := uint(id)
		filter.AlertTypeID = &typed
	}
	return filter, nil
}

// requestedCustomers resolves the customerIds param against the
// caller's visibility set; the default is the whole set.
func (h *Handlers) requestedCustomers(c *gin.Context) ([]uint, error) {
	user := CurrentUser(c)
	raw := c.Query("customerIds")
	if raw == "" {
		return models.AllowedCustomerIDs(h.db, user.CustomerID)
	}

	var requested []uint
	for _, part := range strings.Split(raw, ",") {
		id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 32)
		if err != nil {
			return nil, errors.Validation("customerIds: must be a comma-separated id list")
		}
		requested = append(requested, uint(id))
	}
	if err := resolver.EnsureCustomersAllowed(h.db, user.CustomerID, requested); err != nil {
		return nil, err
	}
	return requested, nil
}

func (h *Handlers) handleAlertStatistics(c *gin.Context) {
	customerIDs, err := h.requestedCustomers(c)
	if err != nil {
		response.Fail(c, err)
		return
	}
	filter, err := parseStatisticsFilter(c)
	if err != nil {
		response.Fail(c, err)
		return
	}

	stats, err := models.ComputeAlertStatistics(h.db, customerIDs, filter)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, stats)
}

func (h *Handlers) handleEventStatistics(c *gin.Context) {
	customerIDs, err := h.requestedCustomers(c)
	if err != nil {
		response.Fail(c, err)
		return
	}
	filter, err := parseStatisticsFilter(c)
	if err != nil {
		response.Fail(c, err)
		return
	}

	stats, err := models.ComputeEventStatistics(h.db, customerIDs, filter)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, stats)
}
