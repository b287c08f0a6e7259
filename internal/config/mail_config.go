package config

type MailConfig interface {
	GetSmtpHost() string
	GetSmtpPort() string
	GetSmtpAccount() string
	GetSmtpPassword() string
	GetEmailFrom() string
	GetEmailConfirmationURL() string
}

type Mail struct{}

var _ MailConfig = Mail{}

// GetSmtpHost is empty unless SMTP_HOST is set; without it confirmation emails are only logged
func (Mail) GetSmtpHost() string {
	return GetEnv("SMTP_HOST", "")
}

func (Mail) GetSmtpPort() string {
	return GetEnv("SMTP_PORT", "587")
}

func (Mail) GetSmtpAccount() string {
	return GetEnv("SMTP_ACCOUNT", "")
}

func (Mail) GetSmtpPassword() string {
	return GetEnv("SMTP_PASSWORD", "")
}

func (m Mail) GetEmailFrom() string {
	return GetEnv("EMAIL_FROM", m.GetSmtpAccount())
}

// GetEmailConfirmationURL is the frontend page that receives ?confirmation=<token>
func (Mail) GetEmailConfirmationURL() string {
	return GetEnv("EMAIL_CONFIRMATION_URL", hostURL(GetEnv("FRONTEND_HOST", "http://localhost"), GetEnvInt("FRONTEND_PORT", 3000))+"/ssi/sign-up")
}
