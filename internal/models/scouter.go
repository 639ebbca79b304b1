package models

// ScouterResponse is the second schema generation: a single flat "mission"
// without days.
type ScouterResponse struct {
	MissionTitle string      `json:"mission_title" validate:"required"`
	Intro        string      `json:"intro" validate:"required"`
	TargetSpot   *TargetSpot `json:"target_spot" validate:"required"`
	Atmosphere   string      `json:"atmosphere" validate:"required"`
	Quests       []Quest     `json:"quests" validate:"required,min=2,max=4,dive"`
	Affiliate    *Affiliate  `json:"affiliate" validate:"required"`
}

type TargetSpot struct {
	Name     string `json:"name" validate:"required"`
	MapQuery string `json:"map_query" validate:"required"`
}

type Quest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	Gear        string `json:"gear" validate:"required"`
}

type Affiliate struct {
	Item          string `json:"item" validate:"required"`
	Reason        string `json:"reason" validate:"required"`
	SearchKeyword string `json:"search_keyword" validate:"required"`
}

func (s *ScouterResponse) RecordVersion() Version { return VersionV2 }

// Project always reports one day: a mission has no day structure.
func (s *ScouterResponse) Project(slug string, createdAt int64) *PlanMetadata {
	return &PlanMetadata{
		ID:          slug,
		Title:       s.MissionTitle,
		Destination: ExtractDestination(s.MissionTitle),
		Days:        1,
		CreatedAt:   createdAt,
		Version:     VersionV2,
	}
}
