package realtime

import "time"

type Config struct {
	HealthCheckInterval time.Duration `env:"REALTIME_HEALTHCHECK_INTERVAL" envDefault:"30s"` // HealthCheckInterval is how often Run recreates dead channels.
}

func defaultConfig() Config {
	return Config{
		HealthCheckInterval: 30 * time.Second,
	}
}
