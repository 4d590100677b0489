package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	catalogRepo "slotify/database/repository/catalog"
	"slotify/services/availability"
)

// AvailabilityHandler serves slot queries.
type AvailabilityHandler struct {
	Engine availability.Engine
	Logger *zap.Logger
}

// NewAvailabilityHandler constructs an AvailabilityHandler.
func NewAvailabilityHandler(engine availability.Engine, logger *zap.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{Engine: engine, Logger: logger}
}

// GetAvailability handles GET /api/availability.
// Query params: resourceId, capabilityId, locationId, from, to (RFC3339).
func (h *AvailabilityHandler) GetAvailability(c *gin.Context) {
	from, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'from' timestamp", "details": err.Error()})
		return
	}
	to, err := time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'to' timestamp", "details": err.Error()})
		return
	}

	req := availability.AvailabilityRequest{
		ResourceID:   c.Query("resourceId"),
		CapabilityID: c.Query("capabilityId"),
		LocationID:   c.Query("locationId"),
		From:         from,
		To:           to,
	}
	if req.ResourceID == "" || req.CapabilityID == "" || req.LocationID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "resourceId, capabilityId and locationId are required"})
		return
	}

	slots, err := h.Engine.ComputeAvailability(c.Request.Context(), req)
	if err != nil {
		status := availabilityErrorStatus(err)
		if status == http.StatusInternalServerError {
			h.Logger.Error("availability computation failed", zap.Error(err))
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"slots": slots, "count": len(slots)})
}

func availabilityErrorStatus(err error) int {
	switch {
	case errors.Is(err, availability.ErrInvalidWindow),
		errors.Is(err, availability.ErrInvalidInterval):
		return http.StatusBadRequest
	case errors.Is(err, catalogRepo.ErrUnknownResource),
		errors.Is(err, catalogRepo.ErrUnknownCapability),
		errors.Is(err, catalogRepo.ErrUnknownLocation):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
