package models

// Location bounds resource availability with its own operating hours and a
// capacity limit across all resources working there.
type Location struct {
	ID          string `bson:"id" json:"id"`
	Name        string `bson:"name" json:"name"`
	OpenMinute  int    `bson:"openMinute" json:"openMinute"`   // minutes from midnight, e.g. 540 for 9:00
	CloseMinute int    `bson:"closeMinute" json:"closeMinute"` // minutes from midnight, e.g. 1080 for 18:00
	Capacity    int    `bson:"capacity" json:"capacity"`       // max simultaneous in-progress bookings
}
