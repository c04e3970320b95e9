package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/iceymoss/go-newsfeed/pkg/xerr"
)

type CodeMsg struct {
	Code int    // 错误码
	Msg  string // 错误消息
	Err  error  // 原始错误
}

// 实现 error 接口
func (e *CodeMsg) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *CodeMsg) Unwrap() error {
	return e.Err
}

// New 构造函数
func New(code int, msg string) error {
	return &CodeMsg{Code: code, Msg: msg}
}

// Wrap 携带原始错误
func Wrap(code int, msg string, err error) error {
	return &CodeMsg{Code: code, Msg: msg, Err: err}
}

// CodeOf 提取错误链上的错误码，没有则返回 SERVER_COMMON_ERROR
func CodeOf(err error) int {
	return CodeOr(err, xerr.SERVER_COMMON_ERROR)
}

// CodeOr 提取错误链上的错误码，没有则返回 fallback
func CodeOr(err error, fallback int) int {
	var cm *CodeMsg
	if stderrors.As(err, &cm) {
		return cm.Code
	}
	return fallback
}

// Is 判断错误链上是否存在指定错误码
func Is(err error, code int) bool {
	var cm *CodeMsg
	return stderrors.As(err, &cm) && cm.Code == code
}
