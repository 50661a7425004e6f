package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsRoundTrip(t *testing.T) {
	original := Settings{
		Timezone: "Asia/Dubai",
		Language: "en",
		Theme:    "dark",
		FeatureFlags: map[string]bool{
			"certificates": true,
			"quizzes":      false,
		},
		Branding: Branding{
			LogoURL:      "https://cdn.example.com/logo.png",
			PrimaryColor: "#1a73e8",
		},
	}

	value, err := original.Value()
	require.NoError(t, err)

	var decoded Settings
	require.NoError(t, decoded.Scan(value))
	assert.Equal(t, original, decoded)
}

func TestSettingsScanNil(t *testing.T) {
	s := Settings{Timezone: "UTC"}
	require.NoError(t, s.Scan(nil))
	assert.Equal(t, Settings{}, s)
}

func TestSettingsScanString(t *testing.T) {
	var s Settings
	require.NoError(t, s.Scan(`{"timezone":"UTC","language":"fr"}`))
	assert.Equal(t, "UTC", s.Timezone)
	assert.Equal(t, "fr", s.Language)
}

func TestSettingsScanUnsupportedType(t *testing.T) {
	var s Settings
	assert.Error(t, s.Scan(42))
}
