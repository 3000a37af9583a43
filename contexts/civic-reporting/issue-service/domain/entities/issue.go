package entities

import (
	"math"
	"time"
)

type Category string

const (
	CategoryRoadMaintenance Category = "road_maintenance"
	CategoryStreetlight     Category = "streetlight"
	CategorySanitation      Category = "sanitation"
	CategoryWaterSupply     Category = "water_supply"
	CategoryElectricity     Category = "electricity"
	CategoryTraffic         Category = "traffic"
	CategoryParks           Category = "parks"
	CategoryOther           Category = "other"
)

var categoryLabels = map[Category]string{
	CategoryRoadMaintenance: "Road Maintenance",
	CategoryStreetlight:     "Streetlight",
	CategorySanitation:      "Sanitation",
	CategoryWaterSupply:     "Water Supply",
	CategoryElectricity:     "Electricity",
	CategoryTraffic:         "Traffic",
	CategoryParks:           "Parks",
	CategoryOther:           "Other",
}

// categoryDepartments routes each category to the municipal department that
// handles it. Unknown categories fall back to general administration.
var categoryDepartments = map[Category]string{
	CategoryRoadMaintenance: "Public Works",
	CategoryStreetlight:     "Public Works",
	CategorySanitation:      "Sanitation Department",
	CategoryWaterSupply:     "Water Department",
	CategoryElectricity:     "Electricity Department",
	CategoryTraffic:         "Traffic Department",
	CategoryParks:           "Parks and Recreation",
	CategoryOther:           "General Administration",
}

func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// DisplayLabel returns the human-readable category name.
func (c Category) DisplayLabel() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return string(c)
}

// Department returns the responsible department for the category.
func (c Category) Department() string {
	if department, ok := categoryDepartments[c]; ok {
		return department
	}
	return "General Administration"
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	default:
		return false
	}
}

// Issue holds the descriptive record of a civic report. Engagement state
// (votes, urgency, lifecycle status) lives in the engagement ledger; this
// side never caches it.
type Issue struct {
	IssueID     string
	ReporterID  string
	Title       string
	Description string
	Category    Category
	Department  string
	Priority    Priority
	Latitude    float64
	Longitude   float64
	Address     string
	PhotoURL    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ValidCoordinates bounds-checks a lat/lon pair.
func ValidCoordinates(latitude, longitude float64) bool {
	return latitude >= -90 && latitude <= 90 && longitude >= -180 && longitude <= 180
}

// DistanceKm approximates the distance between two coordinate pairs using a
// flat-earth conversion of one degree to 111 km. Good enough for city-scale
// nearby feeds; not a geodesic.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	latDiff := lat1 - lat2
	lonDiff := lon1 - lon2
	return math.Sqrt(latDiff*latDiff+lonDiff*lonDiff) * 111
}
