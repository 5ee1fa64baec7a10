package handler

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"CommunityBoard/apps/board/internal/middleware"
	"CommunityBoard/apps/board/internal/service"
	"CommunityBoard/consts"
	"CommunityBoard/pkg/logger"
	"CommunityBoard/pkg/result"

	"github.com/gin-gonic/gin"
)

// formFilesField multipart 中附件字段名
const formFilesField = "files"

// currentUser 取当前登录用户，缺失时直接返回未认证
func currentUser(c *gin.Context) (string, bool) {
	uuid, ok := middleware.GetUserUUID(c)
	if !ok {
		result.Abort(c, http.StatusUnauthorized, consts.CodeUnauthorized)
		return "", false
	}
	return uuid, true
}

// pathID 解析路径中的正整数ID
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		result.Fail(c, nil, consts.CodeParamError)
		return 0, false
	}
	return id, true
}

// failWith 统一的错误响应。
// 业务错误直接返回错误码；服务端错误记录日志后返回对应码。
func failWith(ctx context.Context, c *gin.Context, err error, msg string) {
	code := service.CodeOf(err)
	if consts.IsNonServerError(code) {
		result.Fail(c, nil, code)
		return
	}
	logger.Error(ctx, msg, logger.ErrorField("error", err))
	result.Fail(c, nil, code)
}

// succeed 主操作已提交时的响应。secondary 为通知分发等次要步骤的错误，作为 warning 返回。
func succeed(ctx context.Context, c *gin.Context, data interface{}, secondary error, msg string) {
	if secondary == nil {
		result.Success(c, data)
		return
	}
	logger.Warn(ctx, msg, logger.ErrorField("error", secondary))
	result.SuccessWithWarning(c, data, service.CodeOf(secondary))
}

// collectFiles 读取 multipart 附件，单文件超过 maxSize 时返回错误码
func collectFiles(c *gin.Context, maxSize int64) ([]*service.FileInput, int32) {
	form, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, consts.CodeSuccess
		}
		return nil, consts.CodeBodyError
	}
	headers := form.File[formFilesField]
	files := make([]*service.FileInput, 0, len(headers))
	for _, fh := range headers {
		if maxSize > 0 && fh.Size > maxSize {
			return nil, consts.CodeAttachmentTooLarge
		}
		files = append(files, fileInput(fh))
	}
	return files, consts.CodeSuccess
}

func fileInput(fh *multipart.FileHeader) *service.FileInput {
	return &service.FileInput{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}
