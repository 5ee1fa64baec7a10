package config

// MailConfig SMTP 配置。Host 为空表示不启用邮件兜底。
type MailConfig struct {
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
	From     string `json:"from" yaml:"from"`
}

// DefaultMailConfig 返回默认配置（不启用）
func DefaultMailConfig() MailConfig {
	return MailConfig{
		Port: 587,
		From: "no-reply@community.local",
	}
}
