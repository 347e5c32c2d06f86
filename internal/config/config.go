package config

// Config is everything the identity server needs at startup.
type Config interface {
	EnvConfig
	CorsConfig
	TokenConfig
	SecurityConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetDataFolder() string
	GetEnv() string
	GetRecordsBackendURL() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	Tokens
	Security
}

func New() Config {
	return mainConfig{}
}
