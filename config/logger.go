package config

// LoggerConfig 日志配置。
// 默认输出 stdout/stderr；配置 File 后额外写入滚动文件（lumberjack）。
type LoggerConfig struct {
	Level            string   `json:"level" yaml:"level"`                       // debug/info/warn/error
	Encoding         string   `json:"encoding" yaml:"encoding"`                 // json/console
	EnableColor      bool     `json:"enableColor" yaml:"enableColor"`           // console 模式下是否彩色
	Development      bool     `json:"development" yaml:"development"`           // 开发模式（error 级别带堆栈）
	OutputPaths      []string `json:"outputPaths" yaml:"outputPaths"`           // 普通日志输出
	ErrorOutputPaths []string `json:"errorOutputPaths" yaml:"errorOutputPaths"` // zap 内部错误输出

	// 滚动文件
	File       string `json:"file" yaml:"file"`             // 日志文件路径，为空则不落盘
	MaxSize    int    `json:"maxSize" yaml:"maxSize"`       // 单文件大小(MB)
	MaxBackups int    `json:"maxBackups" yaml:"maxBackups"` // 保留文件数
	MaxAge     int    `json:"maxAge" yaml:"maxAge"`         // 保留天数
	Compress   bool   `json:"compress" yaml:"compress"`     // 是否 gzip 压缩
}

// DefaultLoggerConfig 返回本地开发的默认配置。
func DefaultLoggerConfig() LoggerConfig {
	return LoggerConfig{
		Level:            "info",
		Encoding:         "json",
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
		MaxSize:          100,
		MaxBackups:       7,
		MaxAge:           30,
		Compress:         true,
	}
}
