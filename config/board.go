package config

import "time"

// BoardConfig board 服务配置
type BoardConfig struct {
	Addr              string        `json:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
	RequestTimeout    time.Duration `json:"requestTimeout" yaml:"requestTimeout"` // 普通接口超时
	UploadTimeout     time.Duration `json:"uploadTimeout" yaml:"uploadTimeout"`   // 带附件接口超时
	MaxMultipartSize  int64         `json:"maxMultipartSize" yaml:"maxMultipartSize"`
	SlowRequest       time.Duration `json:"slowRequest" yaml:"slowRequest"`       // 慢请求日志阈值
	AllowedOrigins    []string      `json:"allowedOrigins" yaml:"allowedOrigins"` // 为空表示允许任意来源

	// 临时附件清理：编辑会话被放弃后，临时附件超过 TemporaryTTL 即被回收
	TemporaryTTL  time.Duration `json:"temporaryTtl" yaml:"temporaryTtl"`
	SweepInterval time.Duration `json:"sweepInterval" yaml:"sweepInterval"`
	SweepBatch    int           `json:"sweepBatch" yaml:"sweepBatch"`

	// 孤儿文件清理最大重试次数
	OrphanMaxRetries int `json:"orphanMaxRetries" yaml:"orphanMaxRetries"`

	// 单用户限流
	RateLimit float64 `json:"rateLimit" yaml:"rateLimit"` // 每秒令牌数
	RateBurst int     `json:"rateBurst" yaml:"rateBurst"`

	// 雪花 ID 节点号
	NodeID int64 `json:"nodeId" yaml:"nodeId"`
}

// DefaultBoardConfig 返回默认配置
func DefaultBoardConfig() BoardConfig {
	return BoardConfig{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		RequestTimeout:    5 * time.Second,
		UploadTimeout:     60 * time.Second,
		MaxMultipartSize:  64 << 20,
		SlowRequest:       time.Second,
		TemporaryTTL:      24 * time.Hour,
		SweepInterval:     10 * time.Minute,
		SweepBatch:        200,
		OrphanMaxRetries:  5,
		RateLimit:         20,
		RateBurst:         40,
		NodeID:            1,
	}
}
