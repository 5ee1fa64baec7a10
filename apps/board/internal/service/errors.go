package service

import (
	"errors"
	"fmt"

	"CommunityBoard/consts"
)

// 错误类别，调用方用 errors.Is 判断
var (
	ErrKindInvalidInput   = errors.New("invalid input")
	ErrKindNotFound       = errors.New("not found")
	ErrKindUnauthorized   = errors.New("unauthorized")
	ErrKindInvalidState   = errors.New("invalid state")
	ErrKindStorageFailure = errors.New("storage failure")
	ErrKindDispatchFailed = errors.New("dispatch failed")
	ErrKindInternal       = errors.New("internal error")
)

// BizError 业务错误：类别 + 业务码 + 原始错误
type BizError struct {
	Code int32
	Kind error
	Err  error
}

func (e *BizError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%v (code=%d)", e.Kind, e.Code)
	}
	return fmt.Sprintf("%v (code=%d): %v", e.Kind, e.Code, e.Err)
}

func (e *BizError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newBizError(kind error, code int32, err error) error {
	return &BizError{Code: code, Kind: kind, Err: err}
}

// ErrInvalidInput 请求参数或上传内容不合法
func ErrInvalidInput(code int32, err error) error {
	return newBizError(ErrKindInvalidInput, code, err)
}

// ErrNotFound 资源不存在
func ErrNotFound(code int32, err error) error { return newBizError(ErrKindNotFound, code, err) }

// ErrUnauthorized 操作人无权操作
func ErrUnauthorized(code int32, err error) error {
	return newBizError(ErrKindUnauthorized, code, err)
}

// ErrInvalidState 当前状态不允许该操作
func ErrInvalidState(code int32, err error) error {
	return newBizError(ErrKindInvalidState, code, err)
}

// ErrStorageFailure 对象存储失败
func ErrStorageFailure(err error) error {
	return newBizError(ErrKindStorageFailure, consts.CodeStorageFailure, err)
}

// ErrDispatchFailed 通知已落库但事件投递失败
func ErrDispatchFailed(err error) error {
	return newBizError(ErrKindDispatchFailed, consts.CodeNotificationDispatch, err)
}

// ErrInternal 内部错误
func ErrInternal(err error) error {
	return newBizError(ErrKindInternal, consts.CodeInternalError, err)
}

// CodeOf 提取业务码，非业务错误一律视为内部错误
func CodeOf(err error) int32 {
	if err == nil {
		return consts.CodeSuccess
	}
	var biz *BizError
	if errors.As(err, &biz) {
		return biz.Code
	}
	return consts.CodeInternalError
}
