package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	bookingRepo "slotify/database/repository/booking"
	catalogRepo "slotify/database/repository/catalog"
	"slotify/services/availability"
	"slotify/services/reservation"
)

// BookingHandler serves booking commits, cancellations and listings.
type BookingHandler struct {
	Controller reservation.Controller
	Logger     *zap.Logger
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(controller reservation.Controller, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{Controller: controller, Logger: logger}
}

// CommitBooking handles POST /api/bookings.
func (h *BookingHandler) CommitBooking(c *gin.Context) {
	var req reservation.CommitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	if req.SlotFingerprint == "" || req.ResourceID == "" || req.CapabilityID == "" ||
		req.LocationID == "" || req.CustomerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "slotFingerprint, resourceId, capabilityId, locationId and customerId are required"})
		return
	}

	booking, err := h.Controller.CommitBooking(c.Request.Context(), req)
	if err != nil {
		status := commitErrorStatus(err)
		if status == http.StatusInternalServerError {
			h.Logger.Error("booking commit failed", zap.Error(err))
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, booking)
}

// CancelBooking handles DELETE /api/bookings/:id.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	bookingID := c.Param("id")
	customerID := c.Query("customerId")
	if customerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "customerId is required"})
		return
	}

	if err := h.Controller.CancelBooking(c.Request.Context(), bookingID, customerID); err != nil {
		switch {
		case errors.Is(err, bookingRepo.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		case errors.Is(err, reservation.ErrBookingStarted):
			c.JSON(http.StatusForbidden, gin.H{"error": "booking already started"})
		default:
			h.Logger.Error("booking cancellation failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// ListBookings handles GET /api/bookings?customerId=...
func (h *BookingHandler) ListBookings(c *gin.Context) {
	customerID := c.Query("customerId")
	if customerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "customerId is required"})
		return
	}

	bookings, err := h.Controller.ListCustomerBookings(c.Request.Context(), customerID)
	if err != nil {
		h.Logger.Error("booking listing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "count": len(bookings)})
}

func commitErrorStatus(err error) int {
	switch {
	case errors.Is(err, reservation.ErrSlotContended),
		errors.Is(err, reservation.ErrSlotNoLongerAvailable):
		return http.StatusConflict
	case errors.Is(err, reservation.ErrFingerprintMismatch),
		errors.Is(err, availability.ErrInvalidWindow):
		return http.StatusBadRequest
	case errors.Is(err, catalogRepo.ErrUnknownResource),
		errors.Is(err, catalogRepo.ErrUnknownCapability),
		errors.Is(err, catalogRepo.ErrUnknownLocation):
		return http.StatusNotFound
	case errors.Is(err, reservation.ErrTransactionFailed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
