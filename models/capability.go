package models

import "time"

// Capability describes a service a resource can perform: a fixed active
// duration plus idle buffers required before and after it.
type Capability struct {
	ID                  string `bson:"id" json:"id"`
	Name                string `bson:"name" json:"name"`
	DurationMinutes     int    `bson:"durationMinutes" json:"durationMinutes"`
	BufferBeforeMinutes int    `bson:"bufferBeforeMinutes,omitempty" json:"bufferBeforeMinutes,omitempty"`
	BufferAfterMinutes  int    `bson:"bufferAfterMinutes,omitempty" json:"bufferAfterMinutes,omitempty"`
}

// Duration returns the active service duration.
func (c *Capability) Duration() time.Duration {
	return time.Duration(c.DurationMinutes) * time.Minute
}

// BufferBefore returns the required idle time before the service starts.
func (c *Capability) BufferBefore() time.Duration {
	return time.Duration(c.BufferBeforeMinutes) * time.Minute
}

// BufferAfter returns the required idle time after the service ends.
func (c *Capability) BufferAfter() time.Duration {
	return time.Duration(c.BufferAfterMinutes) * time.Minute
}

// Span returns the full footprint of one booking of this capability,
// buffers included.
func (c *Capability) Span() time.Duration {
	return c.BufferBefore() + c.Duration() + c.BufferAfter()
}
