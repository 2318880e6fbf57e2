package config

type PostgresConfig struct {
	Url string
}

func NewPostgresConfig() *PostgresConfig {
	return &PostgresConfig{
		// Empty disables the job archive.
		Url: getEnv("DATABASE_URL", ""),
	}
}
