package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// New reads configuration from the process environment into a struct of type T.
func New[T any]() (T, error) {
	return parse[T](env.Options{})
}

// NewFromMap is like New but reads from environ instead of the process environment.
func NewFromMap[T any](environ map[string]string) (T, error) {
	return parse[T](env.Options{Environment: environ})
}

func parse[T any](opts env.Options) (T, error) {
	var cfg T
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}

	return cfg, nil
}
