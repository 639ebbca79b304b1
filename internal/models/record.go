package models

import (
	"fmt"
	"strings"
	"unicode"
)

type Version string

const (
	VersionV1 Version = "v1"
	VersionV2 Version = "v2"
	VersionV3 Version = "v3"
)

var Versions = []Version{VersionV1, VersionV2, VersionV3}

func ParseVersion(s string) (Version, error) {
	for _, v := range Versions {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown schema version %q", s)
}

// Record is implemented by *Plan, *ScouterResponse and *OptimizedPlan.
// Consumers switch on the concrete type or on RecordVersion.
type Record interface {
	RecordVersion() Version
	Project(slug string, createdAt int64) *PlanMetadata
}

func NewRecord(v Version) (Record, error) {
	switch v {
	case VersionV1:
		return &Plan{}, nil
	case VersionV2:
		return &ScouterResponse{}, nil
	case VersionV3:
		return &OptimizedPlan{}, nil
	}
	return nil, fmt.Errorf("unknown schema version %q", v)
}

// PlanMetadata is the list-view projection stored next to every record.
type PlanMetadata struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Destination string  `json:"destination"`
	Days        int     `json:"days"`
	Target      string  `json:"target,omitempty"`
	CreatedAt   int64   `json:"createdAt"`
	Version     Version `json:"version,omitempty"`
}

const UnknownDestination = "Unknown"

func isTitleSeparator(r rune) bool {
	return unicode.IsSpace(r) || strings.ContainsRune(",、・|:：/", r)
}

// ExtractDestination is best effort: the first token of a title such as
// "Kyoto 3-day food trip" is taken as the destination.
func ExtractDestination(title string) string {
	fields := strings.FieldsFunc(title, isTitleSeparator)
	if len(fields) == 0 {
		return UnknownDestination
	}
	return fields[0]
}
