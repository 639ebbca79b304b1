package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateInput_Defaults(t *testing.T) {
	in := &GenerateInput{Destination: "  Nara  "}

	require.NoError(t, in.Validate())
	assert.Equal(t, "Nara", in.Destination)
	assert.Equal(t, 1, in.Days)
	assert.Equal(t, "general", in.Target)
}

func TestGenerateInput_CollectsEveryField(t *testing.T) {
	in := &GenerateInput{
		Destination: strings.Repeat("x", 101),
		Days:        15,
		Target:      "tourist",
		Template:    strings.Repeat("t", 51),
	}

	err := in.Validate()

	var inErr *InputError
	require.ErrorAs(t, err, &inErr)
	assert.ErrorIs(t, err, ErrInvalidInput)
	for _, field := range []string{"destination", "days", "target", "template"} {
		assert.Contains(t, inErr.Details, field)
	}
	assert.NotContains(t, inErr.Details, "base_area")
}

func TestGenerateInput_BlankDestination(t *testing.T) {
	err := (&GenerateInput{Destination: "   "}).Validate()

	var inErr *InputError
	require.ErrorAs(t, err, &inErr)
	assert.Contains(t, inErr.Details, "destination")
	assert.Equal(t, "invalid input: destination", err.Error())
}
