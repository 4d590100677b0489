package models

// Resource is a bookable service performer (e.g. a technician). It carries the
// set of capabilities it can perform and a concurrency limit: the maximum
// number of simultaneous bookings it may hold at any instant.
type Resource struct {
	ID               string   `bson:"id" json:"id"`
	Name             string   `bson:"name" json:"name"`
	CapabilityIDs    []string `bson:"capabilityIds" json:"capabilityIds"`
	ConcurrencyLimit int      `bson:"concurrencyLimit" json:"concurrencyLimit"` // >= 1
	Active           bool     `bson:"active" json:"active"`
}

// CanPerform reports whether the resource offers the given capability.
func (r *Resource) CanPerform(capabilityID string) bool {
	for _, id := range r.CapabilityIDs {
		if id == capabilityID {
			return true
		}
	}
	return false
}
