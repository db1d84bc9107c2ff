package config

import "time"

type Relay struct {
	// Enabled runs the outbox relay inside the api process. Turn it off when
	// a dedicated relay process is deployed.
	Enabled   bool          `env:"RELAY_ENABLED" envDefault:"true"`
	BatchSize uint32        `env:"RELAY_BATCH_SIZE" envDefault:"100"`
	Interval  time.Duration `env:"RELAY_INTERVAL" envDefault:"1s"`
}
