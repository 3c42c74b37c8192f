package types

// WebConf holds the HTTP panel configuration.
type WebConf struct {
	Port     int    `ini:"port"`
	User     string `ini:"user"`
	Password string `ini:"password"`
}

// ToolConf describes where the external proxy-scraper-checker lives and
// where it drops its artifacts. Empty values fall back to the built-in
// candidate lists.
type ToolConf struct {
	// Binary is an explicit path to the executable. It is tried before the
	// conventional install locations.
	Binary string `ini:"binary"`
	// ConfigPath points at the tool's own config.toml; the tool is started
	// with its working directory set to the directory containing it.
	ConfigPath string `ini:"config_path"`
	// OutputDir, when set, is tried first when resolving result artifacts.
	OutputDir string `ini:"output_dir"`
	// CacheDir holds the downloaded GeoLite2 databases.
	CacheDir string `ini:"cache_dir"`
}

// LogConf contains logging specific configuration.
type LogConf struct {
	Level string `ini:"level"`
}

// Config is the panel's unified configuration structure.
type Config struct {
	WebConf  WebConf  `ini:"web"`
	ToolConf ToolConf `ini:"tool"`
	LogConf  LogConf  `ini:"log"`
}
