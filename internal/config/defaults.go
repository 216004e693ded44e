package config

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendGDrive = "gdrive"
	BackendRedis  = "redis"
)

// Unresolved-subject policies.
const (
	UnresolvedAbort = "abort"
	UnresolvedDrop  = "drop"
)

// MaxWikipediaBatch is the number of titles the MediaWiki API accepts in a
// single query for anonymous clients.
const MaxWikipediaBatch = 50

const (
	defaultConfigPath              = "~/.config/fantamorto/config.toml"
	defaultStateDir                = "~/.local/share/fantamorto"
	defaultLogDir                  = "~/.local/share/fantamorto/logs"
	defaultLockFile                = "~/.local/share/fantamorto/run.lock"
	defaultRosterPath              = "~/.config/fantamorto/roster.json"
	defaultEndpointTemplate        = "https://{lang}.wikipedia.org/w/api.php"
	defaultUserAgent               = "fantamorto/0.1 (https://github.com/fantamorto/fantamorto)"
	defaultRequestTimeout          = 15
	defaultParallelism             = 1
	defaultDriveBaseURL            = "https://www.googleapis.com"
	defaultTokenURL                = "https://oauth2.googleapis.com/token"
	defaultRedisAddress            = "localhost:6379"
	defaultRedisPrefix             = "fantamorto:"
	defaultScheduleIntervalMinutes = 60
	defaultLogFormat               = "console"
	defaultLogLevel                = "info"
)

var defaultLanguages = []string{"it", "en", "de"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
			LockFile: defaultLockFile,
		},
		Roster: Roster{
			Path: defaultRosterPath,
		},
		Wikipedia: Wikipedia{
			Languages:        append([]string(nil), defaultLanguages...),
			EndpointTemplate: defaultEndpointTemplate,
			BatchSize:        MaxWikipediaBatch,
			Parallelism:      defaultParallelism,
			RequestTimeout:   defaultRequestTimeout,
			UserAgent:        defaultUserAgent,
			Unresolved:       UnresolvedAbort,
		},
		Storage: Storage{
			Backend:        BackendSQLite,
			RequestTimeout: defaultRequestTimeout,
			DriveBaseURL:   defaultDriveBaseURL,
			TokenURL:       defaultTokenURL,
			RedisAddress:   defaultRedisAddress,
			RedisPrefix:    defaultRedisPrefix,
		},
		Notifications: Notifications{
			RequestTimeout: defaultRequestTimeout,
		},
		Schedule: Schedule{
			IntervalMinutes: defaultScheduleIntervalMinutes,
			RunOnStart:      true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
