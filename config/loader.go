package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config 进程级配置聚合。board 与 connect 共用同一份文件，各取所需。
type Config struct {
	Logger  LoggerConfig  `json:"logger" yaml:"logger"`
	MySQL   MySQLConfig   `json:"mysql" yaml:"mysql"`
	Redis   RedisConfig   `json:"redis" yaml:"redis"`
	MinIO   MinIOConfig   `json:"minio" yaml:"minio"`
	Kafka   KafkaConfig   `json:"kafka" yaml:"kafka"`
	Async   AsyncConfig   `json:"async" yaml:"async"`
	Board   BoardConfig   `json:"board" yaml:"board"`
	Connect ConnectConfig `json:"connect" yaml:"connect"`
	Mail    MailConfig    `json:"mail" yaml:"mail"`
	JWT     JWTConfig     `json:"jwt" yaml:"jwt"`
}

// Default 返回全部默认配置。
func Default() *Config {
	return &Config{
		Logger:  DefaultLoggerConfig(),
		MySQL:   DefaultMySQLConfig(),
		Redis:   DefaultRedisConfig(),
		MinIO:   DefaultMinIOConfig(),
		Kafka:   DefaultKafkaConfig(),
		Async:   DefaultAsyncConfig(),
		Board:   DefaultBoardConfig(),
		Connect: DefaultConnectConfig(),
		Mail:    DefaultMailConfig(),
		JWT:     DefaultJWTConfig(),
	}
}

// Load 加载配置，优先级：环境变量 > YAML 文件 > 默认值。
// 1. 当前目录存在 .env 时先载入（不覆盖已有环境变量）；
// 2. path 非空且文件存在时覆盖到默认值上，文件缺失不报错；
// 3. 环境变量覆盖关键字段。
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("解析配置文件失败 %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// 文件不存在使用默认值
		default:
			return nil, fmt.Errorf("读取配置文件失败 %s: %w", path, err)
		}
	}

	overrideWithEnv(cfg)
	return cfg, nil
}

func overrideWithEnv(cfg *Config) {
	// 日志
	if v := getEnv("LOG_LEVEL", ""); v != "" {
		cfg.Logger.Level = v
	}
	if v := getEnv("LOG_FILE", ""); v != "" {
		cfg.Logger.File = v
	}

	// MySQL
	if v := getEnv("MYSQL_HOST", ""); v != "" {
		cfg.MySQL.Host = v
	}
	if v := getEnvInt("MYSQL_PORT", 0); v > 0 {
		cfg.MySQL.Port = v
	}
	if v := getEnv("MYSQL_USER", ""); v != "" {
		cfg.MySQL.User = v
	}
	if v := getEnv("MYSQL_PASSWORD", ""); v != "" {
		cfg.MySQL.Password = v
	}
	if v := getEnv("MYSQL_DATABASE", ""); v != "" {
		cfg.MySQL.Database = v
	}
	if v := getEnvList("MYSQL_REPLICAS"); len(v) > 0 {
		cfg.MySQL.Replicas = v
	}

	// Redis
	if v := getEnv("REDIS_ADDR", ""); v != "" {
		cfg.Redis.Addr = v
	}
	if v := getEnv("REDIS_PASSWORD", ""); v != "" {
		cfg.Redis.Password = v
	}
	if v := getEnvInt("REDIS_DB", -1); v >= 0 {
		cfg.Redis.DB = v
	}

	// MinIO
	if v := getEnv("MINIO_ENDPOINT", ""); v != "" {
		cfg.MinIO.Endpoint = v
	}
	if v := getEnv("MINIO_ACCESS_KEY", ""); v != "" {
		cfg.MinIO.AccessKeyID = v
	}
	if v := getEnv("MINIO_SECRET_KEY", ""); v != "" {
		cfg.MinIO.SecretAccessKey = v
	}
	if v := getEnv("MINIO_BUCKET", ""); v != "" {
		cfg.MinIO.BucketName = v
	}
	if v := getEnv("MINIO_BASE_URL", ""); v != "" {
		cfg.MinIO.BaseURL = v
	}

	// Kafka
	if v := getEnvList("KAFKA_BROKERS"); len(v) > 0 {
		cfg.Kafka.Brokers = v
	}

	// board
	if v := getEnv("BOARD_ADDR", ""); v != "" {
		cfg.Board.Addr = v
	}
	if v := getEnvDuration("BOARD_TEMPORARY_TTL", 0); v > 0 {
		cfg.Board.TemporaryTTL = v
	}
	if v := getEnvDuration("BOARD_SWEEP_INTERVAL", 0); v > 0 {
		cfg.Board.SweepInterval = v
	}
	if v := getEnvInt("BOARD_NODE_ID", 0); v > 0 {
		cfg.Board.NodeID = int64(v)
	}

	// connect
	if v := getEnv("CONNECT_ADDR", ""); v != "" {
		cfg.Connect.Addr = v
	}

	// 邮件
	if v := getEnv("SMTP_HOST", ""); v != "" {
		cfg.Mail.Host = v
	}
	if v := getEnvInt("SMTP_PORT", 0); v > 0 {
		cfg.Mail.Port = v
	}
	if v := getEnv("SMTP_USERNAME", ""); v != "" {
		cfg.Mail.Username = v
	}
	if v := getEnv("SMTP_PASSWORD", ""); v != "" {
		cfg.Mail.Password = v
	}
	if v := getEnv("SMTP_FROM", ""); v != "" {
		cfg.Mail.From = v
	}

	// JWT
	if v := getEnv("JWT_SECRET", ""); v != "" {
		cfg.JWT.Secret = v
	}
	if v := getEnvDuration("JWT_EXPIRE_TIME", 0); v > 0 {
		cfg.JWT.ExpireTime = v
	}
}

func getEnv(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(v)
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v := getEnv(key, "")
	if v == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultValue
	}
	return d
}

// getEnvList 解析逗号分隔的列表
func getEnvList(key string) []string {
	v := getEnv(key, "")
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
