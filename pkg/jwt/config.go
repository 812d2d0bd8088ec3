package jwt

// Config holds signing configuration for the token service.
type Config struct {
	SecretKey        string `env:"JWT_SECRET_KEY,required"`
	Algorithm        string `env:"JWT_ALGORITHM" envDefault:"HS256"`
	AccessTTLMinutes int    `env:"JWT_EXPIRE_MINUTES" envDefault:"30"`
	RefreshTTLDays   int    `env:"JWT_REFRESH_EXPIRE_DAYS" envDefault:"7"`
	Scheme           string `env:"JWT_TYPE" envDefault:"Bearer"`
}
