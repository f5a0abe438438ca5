package domain

import (
	"time"

	"github.com/google/uuid"
)

type ReportCategory string

const (
	CategoryHarassment   ReportCategory = "harassment"
	CategoryPoorLighting ReportCategory = "poor_lighting"
	CategoryStrayDogs    ReportCategory = "stray_dogs"
	CategoryOther        ReportCategory = "other"
)

func ParseReportCategory(s string) (ReportCategory, bool) {
	switch c := ReportCategory(s); c {
	case CategoryHarassment, CategoryPoorLighting, CategoryStrayDogs, CategoryOther:
		return c, true
	default:
		return "", false
	}
}

type Report struct {
	ID        uuid.UUID      `json:"id"`
	Lat       float64        `json:"lat"`
	Lng       float64        `json:"lng"`
	Category  ReportCategory `json:"category"`
	Text      *string        `json:"text,omitempty"`
	Anonymous bool           `json:"anonymous"`
	Geohash   string         `json:"geohash"`
	CreatedAt time.Time      `json:"created_at"`
}

type CreateReportRequest struct {
	Lat       float64 `json:"lat" validate:"lat"`
	Lng       float64 `json:"lng" validate:"lng"`
	Category  string  `json:"category" validate:"required,category"`
	Text      *string `json:"text" validate:"omitempty,max=500"`
	Anonymous bool    `json:"anonymous"`
}

// ReportFilter narrows a report listing. The radius filter only applies when
// Lat, Lng and RadiusM are all set.
type ReportFilter struct {
	Category *ReportCategory
	Lat      *float64
	Lng      *float64
	RadiusM  *float64
}

// metres per degree, good enough for small radii
const metersPerDegree = 111000.0

// Within reports whether (lat,lng) is inside the filter's radius using a planar
// approximation.
func (f ReportFilter) Within(lat, lng float64) bool {
	if f.Lat == nil || f.Lng == nil || f.RadiusM == nil {
		return true
	}
	dLat := lat - *f.Lat
	dLng := lng - *f.Lng
	limit := *f.RadiusM / metersPerDegree
	return dLat*dLat+dLng*dLng <= limit*limit
}

// RadiusDegrees returns the filter radius converted to degrees.
func (f ReportFilter) RadiusDegrees() float64 {
	if f.RadiusM == nil {
		return 0
	}
	return *f.RadiusM / metersPerDegree
}
