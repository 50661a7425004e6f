package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// Branding holds per-tenant branding configuration
type Branding struct {
	LogoURL        string `json:"logo_url,omitempty"`
	PrimaryColor   string `json:"primary_color,omitempty"`
	SecondaryColor string `json:"secondary_color,omitempty"`
}

// Settings is the per-tenant settings blob stored as jsonb
type Settings struct {
	Timezone     string          `json:"timezone,omitempty"`
	Language     string          `json:"language,omitempty"`
	Theme        string          `json:"theme,omitempty"`
	FeatureFlags map[string]bool `json:"feature_flags,omitempty"`
	Branding     Branding        `json:"branding,omitempty"`
}

// Value implements driver.Valuer so gorm can persist the blob as jsonb
func (s Settings) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan implements sql.Scanner
func (s *Settings) Scan(value interface{}) error {
	if value == nil {
		*s = Settings{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return errors.New("unsupported type for tenant settings")
	}
}
