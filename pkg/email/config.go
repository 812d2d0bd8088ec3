package email

// Config holds outbound mail settings. The Postmark tokens may stay empty in
// development, where the logging sender is used instead.
type Config struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"SENDER_EMAIL" envDefault:"no-reply@hireloop.io"`
	SupportEmail         string `env:"SUPPORT_EMAIL" envDefault:"support@hireloop.io"`
}
