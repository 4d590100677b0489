package models

import "time"

// Booking statuses. Pending and Confirmed bookings hold capacity;
// Cancelled ones do not.
const (
	BookingStatusPending   = "Pending"
	BookingStatusConfirmed = "Confirmed"
	BookingStatusCancelled = "Cancelled"
)

// Booking is a persisted reservation of a resource for a capability at a
// location over a half-open [start, end) interval.
type Booking struct {
	ID             string    `bson:"id" json:"id"`
	ResourceID     string    `bson:"resourceId" json:"resourceId"`
	CapabilityID   string    `bson:"capabilityId" json:"capabilityId"`
	LocationID     string    `bson:"locationId" json:"locationId"`
	CustomerID     string    `bson:"customerId" json:"customerId"`
	Start          time.Time `bson:"start" json:"start"`
	End            time.Time `bson:"end" json:"end"`
	Status         string    `bson:"status" json:"status"`
	IdempotencyKey string    `bson:"idempotencyKey" json:"idempotencyKey"`
	CreatedAt      time.Time `bson:"createdAt" json:"createdAt"`
}

// HoldsCapacity reports whether the booking counts against concurrency limits.
func (b *Booking) HoldsCapacity() bool {
	return b.Status == BookingStatusPending || b.Status == BookingStatusConfirmed
}
