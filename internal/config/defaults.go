package config

const (
	defaultDataDir             = "~/.local/share/cardsync"
	defaultLogDir              = "~/.local/share/cardsync/logs"
	defaultPlexURL             = "http://127.0.0.1:32400"
	defaultPlexRequestTimeout  = 15
	defaultUnwatchedAction     = "ignore"
	defaultSyncWorkers         = 4
	defaultNotifyTimeout       = 10
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Plex: Plex{
			URL:            defaultPlexURL,
			RequestTimeout: defaultPlexRequestTimeout,
		},
		Sync: Sync{
			Unwatched: defaultUnwatchedAction,
			Workers:   defaultSyncWorkers,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Sync:           true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
