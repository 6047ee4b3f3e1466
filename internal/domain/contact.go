package domain

// SMTPSettings 用户自定义的邮件服务器配置, 为空时使用全局配置
type SMTPSettings struct {
	Host     string
	Port     int
	Username string
	Password string
}

func (s SMTPSettings) IsZero() bool {
	return s.Host == ""
}

// Contact is where an owner's alerts are delivered.
type Contact struct {
	OwnerID string
	Email   string
	SMTP    SMTPSettings
}
