package config

import (
	"fmt"
	"strconv"
)

// Config represents the persistent dtree configuration stored as config.toml
// in the .dtree/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version int           `toml:"version"`
	Storage StorageConfig `toml:"storage"`
	Session SessionConfig `toml:"session"`
	Export  ExportConfig  `toml:"export"`
}

// StorageConfig holds tree storage settings.
type StorageConfig struct {
	// Root overrides the default trees directory inside .dtree/.
	Root string `toml:"root,omitempty"`
}

// SessionConfig holds session lifecycle settings.
type SessionConfig struct {
	// Project is the default project used when commands omit one.
	Project string `toml:"project,omitempty"`

	// RetentionDays is how many days tree files stay in active storage
	// before close moves them to the archive.
	RetentionDays uint `toml:"retention_days,omitempty"`
}

// ExportConfig holds export settings.
type ExportConfig struct {
	// Format is the default export format (json, yaml, mermaid, dot, ascii).
	Format string `toml:"format,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"storage.root": {
		get: func(c *Config) string { return c.Storage.Root },
		set: func(c *Config, v string) error { c.Storage.Root = v; return nil },
	},
	"session.project": {
		get: func(c *Config) string { return c.Session.Project },
		set: func(c *Config, v string) error { c.Session.Project = v; return nil },
	},
	"session.retention_days": {
		get: func(c *Config) string {
			if c.Session.RetentionDays == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Session.RetentionDays), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for session.retention_days: %w", err)
			}
			c.Session.RetentionDays = uint(n)
			return nil
		},
	},
	"export.format": {
		get: func(c *Config) string { return c.Export.Format },
		set: func(c *Config, v string) error { c.Export.Format = v; return nil },
	},
}
