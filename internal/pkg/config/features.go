package config

const (
	// Allows callers to ask for unacknowledged removes
	UnacknowledgedWrites = "unacknowledged"
)

// Checks if a feature is enabled from the list of available features.
// The default return value is false.
func IsFeatureEnabled(feature string) bool {
	if enabled, found := Current.FeaturesEnabled[feature]; found {
		return enabled
	}
	return false
}
