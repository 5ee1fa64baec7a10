package result

import (
	"net/http"

	"CommunityBoard/consts"
	"CommunityBoard/pkg/ctxmeta"

	"github.com/gin-gonic/gin"
)

// Response 统一响应结构体
type Response struct {
	Code    int32       `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
	TraceId string      `json:"trace_id"`
	Warning *Warning    `json:"warning,omitempty"`
}

// Warning 请求已成功，但附带未完成的次要步骤（如通知推送失败）
type Warning struct {
	Code    int32  `json:"code"`
	Message string `json:"message"`
}

// Result 返回响应。业务错误同样使用 HTTP 200，由 code 区分。
func Result(c *gin.Context, data interface{}, message string, code int32) {
	if message == "" {
		message = consts.GetMessage(code)
	}
	c.JSON(http.StatusOK, Response{
		Code:    code,
		Message: message,
		Data:    data,
		TraceId: c.GetString(ctxmeta.GinTraceID),
	})
}

// Success 返回成功响应
func Success(c *gin.Context, data interface{}) {
	Result(c, data, "", consts.CodeSuccess)
}

// SuccessWithWarning 返回成功响应并附带警告
func SuccessWithWarning(c *gin.Context, data interface{}, warnCode int32) {
	c.JSON(http.StatusOK, Response{
		Code:    consts.CodeSuccess,
		Message: consts.GetMessage(consts.CodeSuccess),
		Data:    data,
		TraceId: c.GetString(ctxmeta.GinTraceID),
		Warning: &Warning{Code: warnCode, Message: consts.GetMessage(warnCode)},
	})
}

// Fail 返回失败响应
func Fail(c *gin.Context, data interface{}, code int32) {
	Result(c, data, "", code)
}

// SuccessWithMessage 返回成功响应并自定义消息
func SuccessWithMessage(c *gin.Context, data interface{}, message string) {
	Result(c, data, message, consts.CodeSuccess)
}

// FailWithMessage 返回失败响应并自定义消息
func FailWithMessage(c *gin.Context, data interface{}, message string, code int32) {
	Result(c, data, message, code)
}

// Abort 终止后续中间件并返回失败响应（鉴权、限流等场景）
func Abort(c *gin.Context, httpStatus int, code int32) {
	c.AbortWithStatusJSON(httpStatus, Response{
		Code:    code,
		Message: consts.GetMessage(code),
		TraceId: c.GetString(ctxmeta.GinTraceID),
	})
}
