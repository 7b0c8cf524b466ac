package config

import "time"

type SecurityConfig interface {
	GetTokenSecret() string
	GetTokenTTL() time.Duration
	GetTokenIssuer() string
}

type Security struct{}

var _ SecurityConfig = Security{}

func (Security) GetTokenSecret() string {
	return GetEnv("JWT_SECRET", "")
}

func (Security) GetTokenTTL() time.Duration {
	if raw := GetEnv("TOKEN_TTL", ""); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			return d
		}
	}
	return 8 * time.Hour
}

func (Security) GetTokenIssuer() string {
	return GetEnv("TOKEN_ISSUER", "recordings-gateway")
}
