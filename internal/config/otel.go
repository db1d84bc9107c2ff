package config

type Otel struct {
	ServiceName    string  `env:"OTEL_SERVICE_NAME" envDefault:"storefront-catalog"`
	ServiceVersion string  `env:"OTEL_SERVICE_VERSION"`
	Environment    string  `env:"OTEL_DEPLOYMENT_ENVIRONMENT"`
	CollectorURL   string  `env:"OTEL_COLLECTOR_URL"`
	Insecure       bool    `env:"OTEL_INSECURE"`
	TraceIDRatio   float64 `env:"OTEL_TRACE_ID_RATIO" envDefault:"0.1"`
	CollectorAuth  string  `env:"OTEL_COLLECTOR_AUTH"`
}
