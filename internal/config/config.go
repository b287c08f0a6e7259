package config

type Config interface {
	EnvConfig
	CorsConfig
	SessionConfig
	StoreConfig
	DatabaseConfig
	MailConfig
	SettingsConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetLogLevel() string
	IsDevelopment() bool
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	Session
	Store
	Database
	Mail
	Settings
}

func New() Config {
	return mainConfig{}
}
