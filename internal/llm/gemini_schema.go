package llm

import (
	"slices"

	"github.com/sashabaranov/go-openai/jsonschema"
	"google.golang.org/genai"
)

func geminiType(t jsonschema.DataType) genai.Type {
	switch t {
	case jsonschema.Object:
		return genai.TypeObject
	case jsonschema.Array:
		return genai.TypeArray
	case jsonschema.String:
		return genai.TypeString
	case jsonschema.Integer:
		return genai.TypeInteger
	case jsonschema.Number:
		return genai.TypeNumber
	case jsonschema.Boolean:
		return genai.TypeBoolean
	}
	return genai.TypeUnspecified
}

// toGeminiSchema translates a response schema into Gemini's schema dialect.
// Required properties keep their declared order so that the model emits
// them first.
func toGeminiSchema(def *jsonschema.Definition) *genai.Schema {
	if def == nil {
		return nil
	}

	s := &genai.Schema{
		Type:        geminiType(def.Type),
		Description: def.Description,
		Enum:        def.Enum,
		Required:    def.Required,
	}
	if len(def.Enum) > 0 && def.Type == jsonschema.String {
		s.Format = "enum"
	}
	if def.Nullable {
		nullable := true
		s.Nullable = &nullable
	}
	if def.Items != nil {
		s.Items = toGeminiSchema(def.Items)
	}

	if len(def.Properties) > 0 {
		s.Properties = make(map[string]*genai.Schema, len(def.Properties))
		for name, prop := range def.Properties {
			s.Properties[name] = toGeminiSchema(&prop)
		}

		ordering := slices.Clone(def.Required)
		var rest []string
		for name := range def.Properties {
			if !slices.Contains(ordering, name) {
				rest = append(rest, name)
			}
		}
		slices.Sort(rest)
		s.PropertyOrdering = append(ordering, rest...)
	}

	return s
}
