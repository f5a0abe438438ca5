package domain

import "time"

// Location is a single position fix. Accuracy is in metres.
type Location struct {
	Lat       float64   `json:"lat" validate:"lat"`
	Lng       float64   `json:"lng" validate:"lng"`
	Accuracy  *float64  `json:"accuracy,omitempty" validate:"omitempty,min=0"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// NewerThan reports whether l was sampled strictly after other. A nil other
// is always older.
func (l Location) NewerThan(other *Location) bool {
	if other == nil {
		return true
	}
	return l.Timestamp.After(other.Timestamp)
}
