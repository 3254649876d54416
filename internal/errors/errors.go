package errors

import (
	stderrors "errors"
	"fmt"
	"runtime"
	"strings"
	"time"
)

// ErrorCode 错误码类型
type ErrorCode int

// 错误码定义（按模块分组）
const (
	// 通用错误 (1000-1999)
	ErrInternal         ErrorCode = 1000
	ErrValidationFailed ErrorCode = 1001
	ErrNotFound         ErrorCode = 1002
	ErrAlreadyExists    ErrorCode = 1003
	ErrForbidden        ErrorCode = 1004
	ErrTimeout          ErrorCode = 1005

	// 房间/回合错误 (2000-2999)
	ErrPreconditionFailed ErrorCode = 2000
	ErrWrongPhase         ErrorCode = 2001
	ErrRoomFull           ErrorCode = 2002
	ErrCardAlreadyUsed    ErrorCode = 2003
	ErrVoteRestricted     ErrorCode = 2004
	ErrJoinCodeExhausted  ErrorCode = 2005

	// 通信错误 (4000-4999)
	ErrWebSocketClosed ErrorCode = 4003
	ErrPublish         ErrorCode = 4005
	ErrMessageFormat   ErrorCode = 4007

	// 数据库错误 (5000-5999)
	ErrDatabaseConnect ErrorCode = 5000
	ErrDatabaseQuery   ErrorCode = 5001
	ErrDatabaseInsert  ErrorCode = 5002
	ErrDatabaseUpdate  ErrorCode = 5003
	ErrDatabaseDelete  ErrorCode = 5004
	ErrTransaction     ErrorCode = 5005

	// 配置错误 (6000-6999)
	ErrConfigLoad ErrorCode = 6000

	// 安全错误 (7000-7999)
	ErrUnauthorized    ErrorCode = 7000
	ErrTokenExpired    ErrorCode = 7002
	ErrTokenInvalid    ErrorCode = 7003
	ErrTooManyRequests ErrorCode = 7004
)

// 错误码消息映射
var errorMessages = map[ErrorCode]string{
	ErrInternal:         "内部错误",
	ErrValidationFailed: "参数校验失败",
	ErrNotFound:         "资源未找到",
	ErrAlreadyExists:    "资源已存在",
	ErrForbidden:        "权限不足",
	ErrTimeout:          "操作超时",

	ErrPreconditionFailed: "前置条件不满足",
	ErrWrongPhase:         "当前阶段不允许该操作",
	ErrRoomFull:           "房间已满",
	ErrCardAlreadyUsed:    "卡牌已使用",
	ErrVoteRestricted:     "不能投票给该玩家",
	ErrJoinCodeExhausted:  "无法生成房间码",

	ErrWebSocketClosed: "WebSocket连接已关闭",
	ErrPublish:         "事件发布失败",
	ErrMessageFormat:   "消息格式错误",

	ErrDatabaseConnect: "数据库连接失败",
	ErrDatabaseQuery:   "数据库查询失败",
	ErrDatabaseInsert:  "数据库插入失败",
	ErrDatabaseUpdate:  "数据库更新失败",
	ErrDatabaseDelete:  "数据库删除失败",
	ErrTransaction:     "事务处理失败",

	ErrConfigLoad: "配置加载失败",

	ErrUnauthorized:    "未认证",
	ErrTokenExpired:    "令牌已过期",
	ErrTokenInvalid:    "无效的令牌",
	ErrTooManyRequests: "请求频率超限",
}

// Category 对外暴露的错误分类
type Category string

const (
	CategoryUnauthorized       Category = "Unauthorized"
	CategoryForbidden          Category = "Forbidden"
	CategoryNotFound           Category = "NotFound"
	CategoryPreconditionFailed Category = "PreconditionFailed"
	CategoryValidationFailed   Category = "ValidationFailed"
	CategoryTooManyRequests    Category = "TooManyRequests"
	CategoryInternal           Category = "Internal"
)

// AppError 应用错误结构
type AppError struct {
	Code    ErrorCode    `json:"code"`            // 错误码
	Message string       `json:"message"`         // 错误消息
	Details string       `json:"details"`         // 详细信息
	Cause   error        `json:"-"`               // 原始错误
	Stack   []StackFrame `json:"stack,omitempty"` // 调用栈
}

// StackFrame 调用栈帧
type StackFrame struct {
	Function string `json:"function"`
	File     string `json:"file"`
	Line     int    `json:"line"`
}

// Error 实现error接口
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%d] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 返回原始错误
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetails 添加详细信息
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// New 创建新的应用错误
func New(code ErrorCode, details ...string) *AppError {
	message, ok := errorMessages[code]
	if !ok {
		message = errorMessages[ErrInternal]
	}

	err := &AppError{
		Code:    code,
		Message: message,
	}

	if len(details) > 0 {
		err.Details = strings.Join(details, "; ")
	}

	err.captureStack(2)

	return err
}

// Newf 创建格式化的应用错误
func Newf(code ErrorCode, format string, args ...interface{}) *AppError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap 包装错误
func Wrap(err error, code ErrorCode, details ...string) *AppError {
	if err == nil {
		return nil
	}

	// 已经是AppError时保留原始错误码
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		if len(details) > 0 {
			appErr.Details = strings.Join(details, "; ") + "; " + appErr.Details
		}
		return appErr
	}

	wrapped := New(code, details...)
	wrapped.Cause = err
	if wrapped.Details == "" {
		wrapped.Details = err.Error()
	}

	return wrapped
}

// Wrapf 包装格式化错误
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *AppError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// Is 判断错误是否为指定错误码
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr) && appErr.Code == code
}

// GetCode 获取错误码
func GetCode(err error) ErrorCode {
	if err == nil {
		return 0
	}

	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}

	return ErrInternal
}

// CategoryOf 获取错误所属分类
func CategoryOf(err error) Category {
	if err == nil {
		return ""
	}
	return GetCode(err).Category()
}

// Category 错误码对应的分类
func (c ErrorCode) Category() Category {
	switch {
	case c == ErrValidationFailed || c == ErrMessageFormat:
		return CategoryValidationFailed
	case c == ErrNotFound:
		return CategoryNotFound
	case c == ErrForbidden:
		return CategoryForbidden
	case c == ErrAlreadyExists || (c >= 2000 && c <= 2999):
		return CategoryPreconditionFailed
	case c == ErrTooManyRequests:
		return CategoryTooManyRequests
	case c >= 7000 && c <= 7003:
		return CategoryUnauthorized
	default:
		return CategoryInternal
	}
}

// IsPrecondition 是否属于前置条件类错误（包括阶段不符、卡牌已用等）
func IsPrecondition(err error) bool {
	return CategoryOf(err) == CategoryPreconditionFailed
}

// captureStack 捕获调用栈
func (e *AppError) captureStack(skip int) {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(skip+1, pcs)
	if n == 0 {
		return
	}

	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()

		// 跳过runtime和本包的调用
		if strings.Contains(frame.Function, "runtime.") ||
			strings.Contains(frame.Function, "github.com/wfunc/bunker-game/internal/errors") {
			if !more {
				break
			}
			continue
		}

		e.Stack = append(e.Stack, StackFrame{
			Function: frame.Function,
			File:     frame.File,
			Line:     frame.Line,
		})

		// 只保留前10个栈帧
		if !more || len(e.Stack) >= 10 {
			break
		}
	}
}

// GetStack 获取格式化的调用栈
func (e *AppError) GetStack() string {
	if len(e.Stack) == 0 {
		return ""
	}

	var builder strings.Builder
	for i, frame := range e.Stack {
		builder.WriteString(fmt.Sprintf("%d. %s\n   %s:%d\n",
			i+1, frame.Function, frame.File, frame.Line))
	}

	return builder.String()
}

// HTTPStatus 返回对应的HTTP状态码
func (e *AppError) HTTPStatus() int {
	switch e.Code.Category() {
	case CategoryValidationFailed:
		return 400
	case CategoryUnauthorized:
		return 401
	case CategoryForbidden:
		return 403
	case CategoryNotFound:
		return 404
	case CategoryPreconditionFailed:
		return 409
	case CategoryTooManyRequests:
		return 429
	default:
		return 500
	}
}

// IsRetryable 判断错误是否可重试
func IsRetryable(err error) bool {
	switch GetCode(err) {
	case ErrTimeout, ErrDatabaseConnect, ErrPublish:
		return true
	default:
		return false
	}
}

// ErrorResponse API错误响应结构
type ErrorResponse struct {
	Success   bool      `json:"success"`
	Error     *AppError `json:"error,omitempty"`
	Category  Category  `json:"category,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp int64     `json:"timestamp"`
}

// NewErrorResponse 创建错误响应
func NewErrorResponse(err *AppError, requestID string) *ErrorResponse {
	return &ErrorResponse{
		Success:   false,
		Error:     &AppError{Code: err.Code, Message: err.Message, Details: err.Details},
		Category:  err.Code.Category(),
		RequestID: requestID,
		Timestamp: time.Now().Unix(),
	}
}
