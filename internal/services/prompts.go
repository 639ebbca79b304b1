package services

import (
	"fmt"
	"sort"
	"strings"
	"tripgen/internal/models"
)

const planSystemPrompt = `You are a travel planner. Produce a realistic day-by-day itinerary as JSON.
Each event is an array of exactly 6 values: time (HH:MM), place name, activity, type, a short note, and an image search query or null.
Type is one of spot, food, work, move. Title starts with the destination name. Keep travel times between events realistic.`

const engineerSystemAddendum = `The traveller is a software engineer who works remotely: include one "work" event per day at a cafe or coworking space with reliable wifi and power.`

const scouterSystemPrompt = `You are a scout sending a traveller on a short urban mission.
Pick one concrete spot in the destination and describe its atmosphere. Give between 2 and 4 quests that can be done there, each with the gear it needs.
Recommend one item that helps on this mission. Mission title starts with the destination name.`

const optimizedSystemPrompt = `You are a route optimiser. Produce a compact itinerary as JSON using short keys: t (time HH:MM), n (spot name), q (map search query), d (one sentence), type (spot, food or move).
Order events to minimise travel from the base area and give each day a Google Maps directions URL through its spots.`

// BuildPrompts returns the system and user instructions for a generation.
func BuildPrompts(v models.Version, in *GenerateInput) (string, string) {
	var system string
	var user strings.Builder

	switch v {
	case models.VersionV2:
		system = scouterSystemPrompt
		fmt.Fprintf(&user, "Destination: %s\n", in.Destination)
		if in.Template != "" {
			fmt.Fprintf(&user, "Mission style: %s\n", in.Template)
		}
	case models.VersionV3:
		system = optimizedSystemPrompt
		fmt.Fprintf(&user, "Destination: %s\nDays: %d\n", in.Destination, in.Days)
		if in.BaseArea != "" {
			fmt.Fprintf(&user, "Base area: %s\n", in.BaseArea)
		}
	default:
		system = planSystemPrompt
		if in.Target == string(models.TargetEngineer) {
			system += "\n" + engineerSystemAddendum
		}
		fmt.Fprintf(&user, "Destination: %s\nDays: %d\nTraveller: %s\n", in.Destination, in.Days, in.Target)
		if in.Template != "" {
			fmt.Fprintf(&user, "Trip style: %s\n", in.Template)
		}
	}

	if len(in.Options) > 0 {
		keys := make([]string, 0, len(in.Options))
		for k := range in.Options {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		user.WriteString("Preferences:\n")
		for _, k := range keys {
			fmt.Fprintf(&user, "- %s: %s\n", k, in.Options[k])
		}
	}

	return system, user.String()
}
