package totp

// Config holds the shared secret and window length for one-time reset codes.
type Config struct {
	SecretKey     string `env:"OTP_SECRET_KEY,required"`
	ExpireSeconds int    `env:"OTP_EXPIRE_SECONDS" envDefault:"600"`
}
