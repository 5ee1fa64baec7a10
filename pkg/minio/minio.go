package minio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"CommunityBoard/config"
	"CommunityBoard/pkg/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var (
	// ErrFileTooLarge 文件超过大小限制
	ErrFileTooLarge = errors.New("file too large")
	// ErrTypeNotAllowed 文件类型不在白名单
	ErrTypeNotAllowed = errors.New("file type not allowed")
	// ErrExtensionMismatch 扩展名与内容不符
	ErrExtensionMismatch = errors.New("file extension mismatch")
)

// MinIOClient MinIO 客户端封装
type MinIOClient struct {
	client *minio.Client
	config config.MinIOConfig
}

// Build 基于配置创建客户端，Bucket 不存在时自动创建
func Build(cfg config.MinIOConfig) (*MinIOClient, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, errors.New("minio endpoint is empty")
	}
	if strings.TrimSpace(cfg.BucketName) == "" {
		return nil, errors.New("minio bucketName is empty")
	}

	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Transport: &http.Transport{
			MaxIdleConns:        cfg.MaxIdleConns,
			MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
			IdleConnTimeout:     cfg.IdleConnTimeout,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := mc.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket exists: %w", err)
	}
	if !exists {
		if err := mc.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{Region: cfg.Location}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
		logger.Info(ctx, "MinIO Bucket 创建成功", logger.String("bucket", cfg.BucketName))

		if cfg.PublicRead {
			policy := fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`, cfg.BucketName)
			if err := mc.SetBucketPolicy(ctx, cfg.BucketName, policy); err != nil {
				logger.Warn(ctx, "设置 Bucket 公开策略失败",
					logger.String("bucket", cfg.BucketName),
					logger.ErrorField("error", err),
				)
			}
		}
	}

	return &MinIOClient{client: mc, config: cfg}, nil
}

// UploadOptions 上传选项
type UploadOptions struct {
	ObjectName  string            // 完整对象名，由调用方生成（如 articles/12/{token}.png）
	FileName    string            // 原始文件名，用于扩展名校验
	ContentType string            // 客户端声明的类型，为空时按内容检测
	Metadata    map[string]string // 可选元数据
}

// UploadResult 上传结果
type UploadResult struct {
	ObjectName  string
	Size        int64
	ETag        string
	URL         string
	ContentType string
}

// Upload 上传文件。
// 读取前 512 字节按内容检测真实类型，与声明类型不一致时以检测结果为准。
func (c *MinIOClient) Upload(ctx context.Context, reader io.Reader, fileSize int64, opts UploadOptions) (*UploadResult, error) {
	if c.config.MaxFileSize > 0 && fileSize > c.config.MaxFileSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrFileTooLarge, fileSize, c.config.MaxFileSize)
	}
	if opts.ObjectName == "" {
		return nil, errors.New("object name is empty")
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(reader, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("读取文件内容失败: %w", err)
	}
	head = head[:n]
	detected := http.DetectContentType(head)

	contentType := opts.ContentType
	if contentType == "" || !isContentTypeMatch(contentType, detected) {
		contentType = detected
	}
	if len(c.config.AllowedTypes) > 0 && !c.isAllowedType(contentType) {
		logger.Warn(ctx, "文件类型不在允许列表中",
			logger.String("content_type", contentType),
			logger.String("file_name", opts.FileName),
		)
		return nil, fmt.Errorf("%w: %s", ErrTypeNotAllowed, contentType)
	}
	if opts.FileName != "" && !validateFileExtension(opts.FileName, detected) {
		logger.Warn(ctx, "文件扩展名与实际内容类型不匹配",
			logger.String("file_name", opts.FileName),
			logger.String("detected_type", detected),
		)
		return nil, fmt.Errorf("%w: %s", ErrExtensionMismatch, detected)
	}

	uploadCtx := ctx
	if c.config.UploadTimeout > 0 {
		var cancel context.CancelFunc
		uploadCtx, cancel = context.WithTimeout(ctx, c.config.UploadTimeout)
		defer cancel()
	}

	info, err := c.client.PutObject(uploadCtx, c.config.BucketName, opts.ObjectName,
		io.MultiReader(bytes.NewReader(head), reader), fileSize,
		minio.PutObjectOptions{ContentType: contentType, UserMetadata: opts.Metadata},
	)
	if err != nil {
		logger.Error(ctx, "MinIO 上传失败",
			logger.String("object", opts.ObjectName),
			logger.Int64("size", fileSize),
			logger.ErrorField("error", err),
		)
		return nil, fmt.Errorf("上传失败: %w", err)
	}

	return &UploadResult{
		ObjectName:  opts.ObjectName,
		Size:        info.Size,
		ETag:        info.ETag,
		URL:         c.URL(opts.ObjectName),
		ContentType: contentType,
	}, nil
}

// Delete 删除对象。对象不存在时 MinIO 同样返回成功。
func (c *MinIOClient) Delete(ctx context.Context, objectName string) error {
	if err := c.client.RemoveObject(ctx, c.config.BucketName, objectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("删除失败: %w", err)
	}
	return nil
}

// Exists 检查对象是否存在
func (c *MinIOClient) Exists(ctx context.Context, objectName string) (bool, error) {
	_, err := c.client.StatObject(ctx, c.config.BucketName, objectName, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, fmt.Errorf("检查对象存在失败: %w", err)
	}
	return true, nil
}

// URL 返回对象的公开访问地址
func (c *MinIOClient) URL(objectName string) string {
	return fmt.Sprintf("%s/%s/%s",
		strings.TrimSuffix(c.config.BaseURL, "/"),
		c.config.BucketName,
		strings.TrimPrefix(objectName, "/"))
}

func (c *MinIOClient) isAllowedType(contentType string) bool {
	for _, allowed := range c.config.AllowedTypes {
		if strings.EqualFold(contentType, allowed) {
			return true
		}
	}
	return false
}

// isContentTypeMatch 主类型一致即视为匹配（image/jpg 与 image/jpeg 等）
func isContentTypeMatch(specified, detected string) bool {
	specified = strings.ToLower(strings.TrimSpace(strings.Split(specified, ";")[0]))
	detected = strings.ToLower(strings.TrimSpace(strings.Split(detected, ";")[0]))
	if specified == detected {
		return true
	}
	return strings.Split(specified, "/")[0] == strings.Split(detected, "/")[0]
}

// extensionsByType 检测类型对应的合法扩展名，未收录的类型不做限制
var extensionsByType = map[string][]string{
	"image/jpeg":         {".jpg", ".jpeg"},
	"image/png":          {".png"},
	"image/gif":          {".gif"},
	"image/webp":         {".webp"},
	"image/bmp":          {".bmp"},
	"application/pdf":    {".pdf"},
	"application/zip":    {".zip", ".docx", ".xlsx", ".pptx", ".jar"},
	"video/mp4":          {".mp4"},
	"audio/mpeg":         {".mp3"},
	"application/x-gzip": {".gz", ".tgz"},
}

// validateFileExtension 防止可执行文件伪装成图片等
func validateFileExtension(fileName, detectedContentType string) bool {
	detected := strings.ToLower(strings.TrimSpace(strings.Split(detectedContentType, ";")[0]))
	allowed, ok := extensionsByType[detected]
	if !ok {
		return true
	}
	ext := strings.ToLower(filepath.Ext(fileName))
	for _, a := range allowed {
		if ext == a {
			return true
		}
	}
	return false
}
