package store

import "time"

const StateVersion = 1

type State struct {
	Version int           `toml:"version"`
	Builds  []BuildRecord `toml:"builds"`
}

// BuildRecord is the last artifact written for one profile.
type BuildRecord struct {
	Profile        string    `toml:"profile" json:"profile"`
	Artifact       string    `toml:"artifact" json:"artifact"`
	Checksum       string    `toml:"checksum" json:"checksum"`
	Engines        int       `toml:"engines" json:"engines"`
	Default        string    `toml:"default,omitempty" json:"default,omitempty"`
	PrivateDefault string    `toml:"private_default,omitempty" json:"privateDefault,omitempty"`
	AppName        string    `toml:"app_name" json:"appName"`
	Backup         string    `toml:"backup,omitempty" json:"backup,omitempty"`
	BuiltAt        time.Time `toml:"built_at" json:"builtAt"`
}
