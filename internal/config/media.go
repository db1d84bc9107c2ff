package config

// Media configures the S3 compatible bucket product images are uploaded to.
type Media struct {
	Bucket    string `env:"MEDIA_BUCKET,required,notEmpty"`
	Region    string `env:"MEDIA_REGION" envDefault:"us-east-1"`
	Endpoint  string `env:"MEDIA_ENDPOINT"`
	AccessKey string `env:"MEDIA_ACCESS_KEY"`
	SecretKey string `env:"MEDIA_SECRET_KEY"`
	PathStyle bool   `env:"MEDIA_PATH_STYLE" envDefault:"false"`

	// PublicBaseURL prefixes object keys to build the public image URL.
	PublicBaseURL string `env:"MEDIA_PUBLIC_BASE_URL,required,notEmpty"`
	KeyPrefix     string `env:"MEDIA_KEY_PREFIX" envDefault:"products"`
}
