package config

type Config interface {
	EnvConfig
	CorsConfig
	SecurityConfig
	StoreConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetTenantsFile() string
	GetEnv() string
}

type mainConfig struct {
	EnvVars
	Cors
	Security
	Store
}

func New() Config {
	return mainConfig{}
}
