package models

import (
	"fmt"

	json "github.com/goccy/go-json"
)

type Target string

const (
	TargetEngineer Target = "engineer"
	TargetGeneral  Target = "general"
)

type EventType string

const (
	EventSpot EventType = "spot"
	EventFood EventType = "food"
	EventWork EventType = "work"
	EventMove EventType = "move"
)

const eventArity = 6

// Plan is the first schema generation: days of fixed-width event tuples.
type Plan struct {
	Title  string `json:"title" validate:"required"`
	Target Target `json:"target" validate:"required,oneof=engineer general"`
	Days   []Day  `json:"days" validate:"required,min=1,dive"`
}

type Day struct {
	Day    int     `json:"day" validate:"required,min=1"`
	Events []Event `json:"events" validate:"required,min=1,dive"`
}

// Event travels as [time, name, activity, type, note, imageQuery|null].
// The json tags only name the positions in validation errors.
type Event struct {
	Time       string    `json:"time" validate:"required"`
	Name       string    `json:"name" validate:"required"`
	Activity   string    `json:"activity" validate:"required"`
	Type       EventType `json:"type" validate:"required,oneof=spot food work move"`
	Note       string    `json:"note"`
	ImageQuery *string   `json:"image_query"`
}

func (e Event) MarshalJSON() ([]byte, error) {
	return json.Marshal([eventArity]any{e.Time, e.Name, e.Activity, e.Type, e.Note, e.ImageQuery})
}

// UnmarshalJSON accepts short tuples so that partial objects decode; arity
// and element types are checked by Parse with full paths.
func (e *Event) UnmarshalJSON(data []byte) error {
	var parts []*string
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("event must be an array of strings: %w", err)
	}
	if len(parts) > eventArity {
		return fmt.Errorf("event has %d elements, expected %d", len(parts), eventArity)
	}

	get := func(i int) string {
		if i < len(parts) && parts[i] != nil {
			return *parts[i]
		}
		return ""
	}

	*e = Event{
		Time:     get(0),
		Name:     get(1),
		Activity: get(2),
		Type:     EventType(get(3)),
		Note:     get(4),
	}
	if len(parts) == eventArity && parts[5] != nil {
		q := *parts[5]
		e.ImageQuery = &q
	}
	return nil
}

func (p *Plan) RecordVersion() Version { return VersionV1 }

func (p *Plan) Project(slug string, createdAt int64) *PlanMetadata {
	return &PlanMetadata{
		ID:          slug,
		Title:       p.Title,
		Destination: ExtractDestination(p.Title),
		Days:        len(p.Days),
		Target:      string(p.Target),
		CreatedAt:   createdAt,
	}
}
