package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

const minSecretLength = 32

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPHost            string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	HTTPPort            string `env:"HTTP_PORT" envDefault:"3000"`
	DatabaseURL         string `env:"DATABASE_URL,required"`
	JWTSecret           string `env:"JWT_SECRET,required"`
	JWTRefreshSecret    string `env:"JWT_REFRESH_SECRET,required"`
	FrontendURL         string `env:"FRONTEND_URL" envDefault:"http://localhost:5173"`
	AppEnv              string `env:"APP_ENV" envDefault:"development"`
	JWTAccessTTLMinutes int    `env:"JWT_ACCESS_TTL_MINUTES" envDefault:"15"`
	JWTRefreshTTLHours  int    `env:"JWT_REFRESH_TTL_HOURS" envDefault:"168"`
	BcryptCost          int    `env:"BCRYPT_COST" envDefault:"10"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	// Los secretos de firma deben ser independientes y suficientemente largos.
	if len(cfg.JWTSecret) < minSecretLength {
		return nil, fmt.Errorf("JWT_SECRET must be at least %d characters long", minSecretLength)
	}
	if len(cfg.JWTRefreshSecret) < minSecretLength {
		return nil, fmt.Errorf("JWT_REFRESH_SECRET must be at least %d characters long", minSecretLength)
	}
	return &cfg, nil
}

// IsProduction indica si el proceso corre en modo producción.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
