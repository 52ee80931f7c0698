// Package config handles objmesh configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/Faultbox/objmesh/pkg/encoding"
	"github.com/Faultbox/objmesh/pkg/formats"
)

// Config holds all tool settings.
type Config struct {
	Convert ConvertConfig `yaml:"convert"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
}

// ConvertConfig holds OBJ conversion settings.
type ConvertConfig struct {
	Split       bool   `yaml:"split"`        // One mesh per object/group
	MeshExt     string `yaml:"mesh_ext"`     // Extension of written meshes
	ManifestExt string `yaml:"manifest_ext"` // Extension of the split manifest
	OutDir      string `yaml:"out_dir"`      // Empty writes next to the input
	Charset     string `yaml:"charset"`      // Source text encoding
}

// ServerConfig holds HTTP service settings.
type ServerConfig struct {
	Addr        string        `yaml:"addr"`
	ReadTimeout time.Duration `yaml:"read_timeout"`
	MaxBodyMB   int           `yaml:"max_body_mb"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Convert: ConvertConfig{
			Split:       false,
			MeshExt:     formats.MeshExt,
			ManifestExt: formats.ManifestExt,
		},
		Server: ServerConfig{
			Addr:        "127.0.0.1:8080",
			ReadTimeout: 30 * time.Second,
			MaxBodyMB:   64,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks settings that would otherwise fail halfway through a run.
func (c *Config) Validate() error {
	if c.Convert.MeshExt == "" {
		return errors.New("convert.mesh_ext must not be empty")
	}
	if c.Convert.ManifestExt == "" {
		return errors.New("convert.manifest_ext must not be empty")
	}
	if c.Convert.MeshExt == c.Convert.ManifestExt {
		return fmt.Errorf("convert.mesh_ext and convert.manifest_ext are both %q", c.Convert.MeshExt)
	}
	if _, err := encoding.Lookup(c.Convert.Charset); err != nil {
		return fmt.Errorf("convert.charset: %w", err)
	}
	if c.Server.MaxBodyMB <= 0 {
		return fmt.Errorf("server.max_body_mb must be positive, got %d", c.Server.MaxBodyMB)
	}
	return nil
}
