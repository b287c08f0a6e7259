package config

type DatabaseConfig interface {
	GetDatabaseURL() string
}

type Database struct{}

var _ DatabaseConfig = Database{}

// GetDatabaseURL returns a Postgres DSN. Empty keeps accounts in memory.
func (Database) GetDatabaseURL() string {
	return GetEnv("DATABASE_URL", "")
}
