package config

const (
	defaultDataDir       = "~/.local/share/storyboard"
	defaultThumbnailSize = 300
	defaultRecentMax     = 10
	maxRecentEntries     = 100
	defaultServeBind     = "127.0.0.1:7488"
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
	defaultLogMaxSizeMB  = 10
	defaultLogMaxBackups = 3
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
		},
		Assets: Assets{
			ThumbnailSize: defaultThumbnailSize,
		},
		Recent: Recent{
			MaxEntries: defaultRecentMax,
		},
		Serve: Serve{
			Bind: defaultServeBind,
		},
		Logging: Logging{
			Format:     defaultLogFormat,
			Level:      defaultLogLevel,
			MaxSizeMB:  defaultLogMaxSizeMB,
			MaxBackups: defaultLogMaxBackups,
		},
	}
}
