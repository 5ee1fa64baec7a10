package config

import "time"

// KafkaConfig Kafka 配置
type KafkaConfig struct {
	Brokers []string `json:"brokers" yaml:"brokers"`

	// 通知事件：board 生产，connect 消费后推送到在线设备
	NotificationTopic string `json:"notificationTopic" yaml:"notificationTopic"`
	// 孤儿文件清理：附件记录已删除但对象存储删除失败时投递
	OrphanBlobTopic string `json:"orphanBlobTopic" yaml:"orphanBlobTopic"`

	ProducerConfig KafkaProducerConfig `json:"producer" yaml:"producer"`
	ConsumerConfig KafkaConsumerConfig `json:"consumer" yaml:"consumer"`
}

// KafkaProducerConfig 生产者配置
type KafkaProducerConfig struct {
	BatchTimeout time.Duration `json:"batchTimeout" yaml:"batchTimeout"`
	WriteTimeout time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
	MaxAttempts  int           `json:"maxAttempts" yaml:"maxAttempts"`
}

// KafkaConsumerConfig 消费者配置
type KafkaConsumerConfig struct {
	GroupID        string        `json:"groupId" yaml:"groupId"`
	MinBytes       int           `json:"minBytes" yaml:"minBytes"`
	MaxBytes       int           `json:"maxBytes" yaml:"maxBytes"`
	CommitInterval time.Duration `json:"commitInterval" yaml:"commitInterval"`
}

// DefaultKafkaConfig 返回本地开发的默认配置
func DefaultKafkaConfig() KafkaConfig {
	return KafkaConfig{
		Brokers:           []string{"kafka:9092"},
		NotificationTopic: "board.notification.events",
		OrphanBlobTopic:   "board.attachment.orphans",
		ProducerConfig: KafkaProducerConfig{
			BatchTimeout: 10 * time.Millisecond,
			WriteTimeout: 5 * time.Second,
			MaxAttempts:  3,
		},
		ConsumerConfig: KafkaConsumerConfig{
			GroupID:        "board-service",
			MinBytes:       1,
			MaxBytes:       10e6,
			CommitInterval: time.Second,
		},
	}
}
