package config

// Overrides holds command-line values that take priority over the config file.
// Zero values leave the loaded setting unchanged.
type Overrides struct {
	ConfigPath string
	Debug      bool
	LogLevel   string
	LogFile    string
	Split      bool
	OutDir     string
	Charset    string
	Addr       string
}

// applyOverrides applies CLI overrides to the config.
func applyOverrides(cfg *Config, ov Overrides) {
	if ov.Debug {
		cfg.Logging.Level = "debug"
	}
	if ov.LogLevel != "" {
		cfg.Logging.Level = ov.LogLevel
	}
	if ov.LogFile != "" {
		cfg.Logging.LogFile = ov.LogFile
	}
	if ov.Split {
		cfg.Convert.Split = true
	}
	if ov.OutDir != "" {
		cfg.Convert.OutDir = ov.OutDir
	}
	if ov.Charset != "" {
		cfg.Convert.Charset = ov.Charset
	}
	if ov.Addr != "" {
		cfg.Server.Addr = ov.Addr
	}
}
