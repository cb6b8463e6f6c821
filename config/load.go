package config

import "github.com/Gobusters/ectoenv"

// Load populates a Config from environment variables using the `env` and
// `env-default` struct tags.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := ectoenv.BindEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
