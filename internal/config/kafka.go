package config

import "time"

type Kafka struct {
	Addresses []string `env:"KAFKA_ADDRESSES,required" envSeparator:","`
	Group     string   `env:"KAFKA_GROUP" envDefault:"storefront-catalog"`
	ClientID  string   `env:"KAFKA_CLIENT_ID" envDefault:"storefront-catalog"`

	// DeliveryTimeout bounds how long a produced record may wait for acks,
	// retries included.
	DeliveryTimeout time.Duration `env:"KAFKA_DELIVERY_TIMEOUT" envDefault:"10s"`
}
