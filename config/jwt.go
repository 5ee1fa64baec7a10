package config

import "time"

// JWTConfig 访问令牌配置
type JWTConfig struct {
	Secret     string        `json:"secret" yaml:"secret"`
	Issuer     string        `json:"issuer" yaml:"issuer"`
	ExpireTime time.Duration `json:"expireTime" yaml:"expireTime"`
}

// DefaultJWTConfig 返回本地开发的默认配置
func DefaultJWTConfig() JWTConfig {
	return JWTConfig{
		Secret:     "community-dev-secret",
		Issuer:     "community-board",
		ExpireTime: 2 * time.Hour,
	}
}
