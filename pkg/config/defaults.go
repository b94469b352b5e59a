package config

const (
	defaultProject       = "general"
	defaultRetentionDays = 7
	defaultExportFormat  = "ascii"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
//
// Storage.Root defaults to empty, which means "trees/ inside the resolved
// .dtree/ directory" rather than a fixed path.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Session: SessionConfig{
			Project:       defaultProject,
			RetentionDays: defaultRetentionDays,
		},
		Export: ExportConfig{
			Format: defaultExportFormat,
		},
	}
}
