package config

type Auth struct {
	JWTSecret string `env:"AUTH_JWT_SECRET,required,notEmpty"`
	Issuer    string `env:"AUTH_JWT_ISSUER"`
}
