package config

import "time"

type HTTP struct {
	Port    uint32 `env:"HTTP_PORT" envDefault:"8000"`
	Swagger bool   `env:"HTTP_SWAGGER" envDefault:"true"`

	// MaxUploadBytes bounds a multipart request body (all files plus fields).
	MaxUploadBytes int64 `env:"HTTP_MAX_UPLOAD_BYTES" envDefault:"10485760"`

	CorsAllowedOrigins []string `env:"HTTP_CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	RateLimitRequests int           `env:"HTTP_RATE_LIMIT_REQUESTS" envDefault:"100"`
	RateLimitWindow   time.Duration `env:"HTTP_RATE_LIMIT_WINDOW" envDefault:"1m"`

	SSLRedirect bool `env:"HTTP_SSL_REDIRECT" envDefault:"false"`
}
