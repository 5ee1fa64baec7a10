package config

import "time"

// MinIOConfig 附件对象存储配置
type MinIOConfig struct {
	Endpoint        string `json:"endpoint" yaml:"endpoint"` // 如 localhost:9000
	AccessKeyID     string `json:"accessKeyId" yaml:"accessKeyId"`
	SecretAccessKey string `json:"secretAccessKey" yaml:"secretAccessKey"`
	UseSSL          bool   `json:"useSSL" yaml:"useSSL"`

	BucketName string `json:"bucketName" yaml:"bucketName"`
	Location   string `json:"location" yaml:"location"`

	// 上传限制
	MaxFileSize   int64         `json:"maxFileSize" yaml:"maxFileSize"`   // 单文件上限（字节）
	AllowedTypes  []string      `json:"allowedTypes" yaml:"allowedTypes"` // 为空表示不限制
	UploadTimeout time.Duration `json:"uploadTimeout" yaml:"uploadTimeout"`

	PublicRead bool   `json:"publicRead" yaml:"publicRead"`
	BaseURL    string `json:"baseUrl" yaml:"baseUrl"` // 返回给客户端的文件地址前缀

	MaxIdleConns        int           `json:"maxIdleConns" yaml:"maxIdleConns"`
	MaxIdleConnsPerHost int           `json:"maxIdleConnsPerHost" yaml:"maxIdleConnsPerHost"`
	IdleConnTimeout     time.Duration `json:"idleConnTimeout" yaml:"idleConnTimeout"`
}

// DefaultMinIOConfig 返回本地开发的默认配置
func DefaultMinIOConfig() MinIOConfig {
	return MinIOConfig{
		Endpoint:        "minio:9000",
		AccessKeyID:     "minioadmin",
		SecretAccessKey: "minioadmin",
		BucketName:      "community-attachments",
		Location:        "us-east-1",

		// 帖子附件不只是图片，文档/压缩包同样允许
		MaxFileSize:   20 * 1024 * 1024,
		UploadTimeout: 30 * time.Second,

		PublicRead: true,
		BaseURL:    "http://localhost:9000",

		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
}
