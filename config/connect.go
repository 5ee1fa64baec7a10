package config

import "time"

// ConnectConfig connect 服务配置
type ConnectConfig struct {
	Addr              string        `json:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
	ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
	WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
	IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`

	AllowedOrigins []string `json:"allowedOrigins" yaml:"allowedOrigins"` // WebSocket 来源白名单，为空不校验

	// 通知事件消费组
	GroupID string `json:"groupId" yaml:"groupId"`
}

// DefaultConnectConfig 返回默认配置
func DefaultConnectConfig() ConnectConfig {
	return ConnectConfig{
		Addr:              ":8081",
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		GroupID:           "connect-service",
	}
}
