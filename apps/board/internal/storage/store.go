// Package storage 附件对象存储端口。
// 业务层只依赖 Store 接口，具体实现为 MinIO，外层可叠加熔断装饰器。
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrStorageFailure 对象存储不可用或操作失败。端口返回的所有错误都包装此错误。
var ErrStorageFailure = errors.New("storage failure")

// Store 附件对象存储
type Store interface {
	// Store 写入对象，返回可用于 Delete/Exists 的存储位置
	Store(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) (string, error)

	// Delete 删除对象，对象不存在视为成功
	Delete(ctx context.Context, location string) error

	// Exists 对象是否存在
	Exists(ctx context.Context, location string) (bool, error)
}
