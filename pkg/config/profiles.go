package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ProfileOverrides holds optional numeric overrides for the indicator
// parameter profiles (descriptor.ProfileDefault/Aggressive/Conservative),
// keyed indicator-family-name -> profile-name -> field-name -> value. A nil
// or missing entry leaves the built-in preset for that field untouched.
type ProfileOverrides map[string]map[string]map[string]float64

// LoadProfileOverrides reads a YAML profile file. A missing file is not an
// error: it returns a nil ProfileOverrides, which callers treat as "use the
// built-in presets unmodified".
func LoadProfileOverrides(path string) (ProfileOverrides, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: read profile overrides %q: %w", path, err)
	}

	var overrides ProfileOverrides
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("config: parse profile overrides %q: %w", path, err)
	}
	return overrides, nil
}

// For finds the field overrides for one indicator/profile pair, returning
// nil when none are configured.
func (o ProfileOverrides) For(indicator, profile string) map[string]float64 {
	if o == nil {
		return nil
	}
	return o[indicator][profile]
}
