package models

// OptimizedPlan is the third schema generation. Events are short-key
// objects to keep generated output small.
type OptimizedPlan struct {
	Title     string         `json:"title" validate:"required"`
	Intro     string         `json:"intro" validate:"required"`
	BaseArea  string         `json:"base_area" validate:"required"`
	Itinerary []ItineraryDay `json:"itinerary" validate:"required,min=1,dive"`
	Affiliate *AffiliateLink `json:"affiliate" validate:"required"`
}

type ItineraryDay struct {
	Day     int              `json:"day" validate:"required,min=1"`
	MapsURL string           `json:"maps_url" validate:"required,url"`
	Events  []OptimizedEvent `json:"events" validate:"required,min=1,dive"`
}

type OptimizedEvent struct {
	Time        string    `json:"t" validate:"required"`
	Spot        string    `json:"n" validate:"required"`
	Query       string    `json:"q" validate:"required"`
	Description string    `json:"d" validate:"required"`
	Type        EventType `json:"type" validate:"required,oneof=spot food move"`
}

type AffiliateLink struct {
	Label string `json:"label" validate:"required"`
	URL   string `json:"url" validate:"required,url"`
}

func (o *OptimizedPlan) RecordVersion() Version { return VersionV3 }

func (o *OptimizedPlan) Project(slug string, createdAt int64) *PlanMetadata {
	destination := ExtractDestination(o.BaseArea)
	if destination == UnknownDestination {
		destination = ExtractDestination(o.Title)
	}
	return &PlanMetadata{
		ID:          slug,
		Title:       o.Title,
		Destination: destination,
		Days:        len(o.Itinerary),
		CreatedAt:   createdAt,
		Version:     VersionV3,
	}
}
