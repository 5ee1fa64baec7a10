package config

import "time"

// MySQLConfig MySQL 配置
type MySQLConfig struct {
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	User     string `json:"user" yaml:"user"`
	Password string `json:"password" yaml:"password"`
	Database string `json:"database" yaml:"database"`
	Charset  string `json:"charset" yaml:"charset"`

	// 只读副本（host:port），非空时通过 dbresolver 做读写分离
	Replicas []string `json:"replicas" yaml:"replicas"`

	MaxIdleConns    int           `json:"maxIdleConns" yaml:"maxIdleConns"`
	MaxOpenConns    int           `json:"maxOpenConns" yaml:"maxOpenConns"`
	ConnMaxLifetime time.Duration `json:"connMaxLifetime" yaml:"connMaxLifetime"`
	SlowThreshold   time.Duration `json:"slowThreshold" yaml:"slowThreshold"` // 慢 SQL 阈值
	AutoMigrate     bool          `json:"autoMigrate" yaml:"autoMigrate"`     // 启动时自动建表
}

// DefaultMySQLConfig 返回本地开发的默认配置（与 docker-compose.yml 对齐）
func DefaultMySQLConfig() MySQLConfig {
	return MySQLConfig{
		Host:            "mysql",
		Port:            3306,
		User:            "root",
		Password:        "root",
		Database:        "community",
		Charset:         "utf8mb4",
		MaxIdleConns:    10,
		MaxOpenConns:    100,
		ConnMaxLifetime: time.Hour,
		SlowThreshold:   200 * time.Millisecond,
		AutoMigrate:     true,
	}
}
