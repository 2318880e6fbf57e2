package config

type ServerConfig struct {
	Port        int
	ServiceName string
}

func NewServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:        getIntEnv("SERVER_PORT", 3003),
		ServiceName: getEnv("SERVICE_NAME", "execution-service"),
	}
}
