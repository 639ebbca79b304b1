package llm

import (
	"fmt"
	"strings"
	"tripgen/internal/models"

	"github.com/sashabaranov/go-openai/jsonschema"
)

func enumOf[T ~string](values ...T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

func str(description string) jsonschema.Definition {
	return jsonschema.Definition{Type: jsonschema.String, Description: description}
}

func object(required []string, props map[string]jsonschema.Definition) jsonschema.Definition {
	return jsonschema.Definition{
		Type:                 jsonschema.Object,
		Properties:           props,
		Required:             required,
		AdditionalProperties: false,
	}
}

func arrayOf(description string, item jsonschema.Definition) jsonschema.Definition {
	return jsonschema.Definition{Type: jsonschema.Array, Description: description, Items: &item}
}

var eventTupleSchema = jsonschema.Definition{
	Type: jsonschema.Array,
	Description: "Exactly 6 elements in this order: time (HH:MM), place name, activity, type (" +
		strings.Join(enumOf(models.EventSpot, models.EventFood, models.EventWork, models.EventMove), "|") +
		"), short note, image search query or null",
	Items: &jsonschema.Definition{Type: jsonschema.String, Nullable: true},
}

var planSchema = object([]string{"title", "target", "days"}, map[string]jsonschema.Definition{
	"title":  str("Plan title, starting with the destination name"),
	"target": {Type: jsonschema.String, Enum: enumOf(models.TargetEngineer, models.TargetGeneral)},
	"days": arrayOf("One entry per day", object([]string{"day", "events"}, map[string]jsonschema.Definition{
		"day":    {Type: jsonschema.Integer, Description: "Day number starting at 1"},
		"events": arrayOf("Chronological events of the day", eventTupleSchema),
	})),
})

var scouterSchema = object(
	[]string{"mission_title", "intro", "target_spot", "atmosphere", "quests", "affiliate"},
	map[string]jsonschema.Definition{
		"mission_title": str("Mission title, starting with the destination name"),
		"intro":         str("Two sentence briefing"),
		"target_spot": object([]string{"name", "map_query"}, map[string]jsonschema.Definition{
			"name":      str("Spot name"),
			"map_query": str("Query to locate the spot on a map"),
		}),
		"atmosphere": str("Mood of the place"),
		"quests": arrayOf("Between 2 and 4 quests", object([]string{"title", "description", "gear"}, map[string]jsonschema.Definition{
			"title":       str("Quest title"),
			"description": str("What to do"),
			"gear":        str("What to bring"),
		})),
		"affiliate": object([]string{"item", "reason", "search_keyword"}, map[string]jsonschema.Definition{
			"item":           str("Recommended item"),
			"reason":         str("Why it helps on this mission"),
			"search_keyword": str("Shop search keyword"),
		}),
	},
)

var optimizedPlanSchema = object(
	[]string{"title", "intro", "base_area", "itinerary", "affiliate"},
	map[string]jsonschema.Definition{
		"title":     str("Plan title"),
		"intro":     str("Short introduction"),
		"base_area": str("Area where the traveller stays"),
		"itinerary": arrayOf("One entry per day", object([]string{"day", "maps_url", "events"}, map[string]jsonschema.Definition{
			"day":      {Type: jsonschema.Integer, Description: "Day number starting at 1"},
			"maps_url": str("Google Maps directions URL covering the day's route"),
			"events": arrayOf("Chronological events of the day", object([]string{"t", "n", "q", "d", "type"}, map[string]jsonschema.Definition{
				"t":    str("Time, HH:MM"),
				"n":    str("Spot name"),
				"q":    str("Map search query"),
				"d":    str("One sentence description"),
				"type": {Type: jsonschema.String, Enum: enumOf(models.EventSpot, models.EventFood, models.EventMove)},
			})),
		})),
		"affiliate": object([]string{"label", "url"}, map[string]jsonschema.Definition{
			"label": str("Link label"),
			"url":   str("Link URL"),
		}),
	},
)

// SchemaFor returns the response schema and its name for a record version.
func SchemaFor(v models.Version) (*jsonschema.Definition, string, error) {
	switch v {
	case models.VersionV1:
		return &planSchema, "travel_plan", nil
	case models.VersionV2:
		return &scouterSchema, "scouter_mission", nil
	case models.VersionV3:
		return &optimizedPlanSchema, "optimized_plan", nil
	}
	return nil, "", fmt.Errorf("no response schema for version %q", v)
}
