package config

import "time"

type SessionConfig interface {
	GetJWTSecret() string
	GetJWTExpiry() time.Duration
}

type Session struct{}

var _ SessionConfig = Session{}

func (Session) GetJWTSecret() string {
	return GetEnv("JWT_SECRET", "0f4a79c8f889a636aa8ff37bb9bcfca8")
}

func (Session) GetJWTExpiry() time.Duration {
	return GetEnvDuration("JWT_EXPIRY", 30*24*time.Hour)
}
