package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

// ErrorsTestSuite 错误包测试套件
type ErrorsTestSuite struct {
	suite.Suite
}

// 测试创建新错误
func (suite *ErrorsTestSuite) TestNew() {
	err := New(ErrValidationFailed)
	suite.NotNil(err)
	suite.Equal(ErrValidationFailed, err.Code)
	suite.Equal("参数校验失败", err.Message)
	suite.Empty(err.Details)

	err = New(ErrNotFound, "房间不存在")
	suite.Equal("资源未找到", err.Message)
	suite.Equal("房间不存在", err.Details)

	err = New(ErrWrongPhase, "当前阶段: results", "期望阶段: voting")
	suite.Equal("当前阶段: results; 期望阶段: voting", err.Details)
}

// 测试格式化错误创建
func (suite *ErrorsTestSuite) TestNewf() {
	err := Newf(ErrValidationFailed, "人数上限 %d 超出范围", 99)
	suite.Equal("人数上限 99 超出范围", err.Details)
}

// 测试错误包装
func (suite *ErrorsTestSuite) TestWrap() {
	originalErr := errors.New("原始错误")
	wrappedErr := Wrap(originalErr, ErrDatabaseQuery)
	suite.Equal(ErrDatabaseQuery, wrappedErr.Code)
	suite.Equal("原始错误", wrappedErr.Details)
	suite.Equal(originalErr, wrappedErr.Cause)

	suite.Nil(Wrap(nil, ErrInternal))

	// 包装已有的AppError保留原始错误码
	appErr := New(ErrNotFound, "玩家不存在")
	wrappedAppErr := Wrap(appErr, ErrDatabaseQuery, "额外信息")
	suite.Equal(ErrNotFound, wrappedAppErr.Code)
	suite.Contains(wrappedAppErr.Details, "额外信息")

	// 经fmt包装过的AppError同样保留
	nested := fmt.Errorf("tx: %w", New(ErrForbidden))
	suite.Equal(ErrForbidden, Wrap(nested, ErrTransaction).Code)
}

// 测试错误码判断
func (suite *ErrorsTestSuite) TestIsAndGetCode() {
	err := New(ErrForbidden)
	suite.True(Is(err, ErrForbidden))
	suite.False(Is(err, ErrNotFound))
	suite.False(Is(nil, ErrForbidden))
	suite.True(Is(fmt.Errorf("wrap: %w", err), ErrForbidden))

	suite.Equal(ErrTokenExpired, GetCode(New(ErrTokenExpired)))
	suite.Equal(ErrInternal, GetCode(errors.New("标准错误")))
	suite.Equal(ErrorCode(0), GetCode(nil))
}

// 测试错误分类
func (suite *ErrorsTestSuite) TestCategory() {
	testCases := []struct {
		code     ErrorCode
		category Category
		status   int
	}{
		{ErrValidationFailed, CategoryValidationFailed, 400},
		{ErrUnauthorized, CategoryUnauthorized, 401},
		{ErrTokenExpired, CategoryUnauthorized, 401},
		{ErrForbidden, CategoryForbidden, 403},
		{ErrNotFound, CategoryNotFound, 404},
		{ErrPreconditionFailed, CategoryPreconditionFailed, 409},
		{ErrWrongPhase, CategoryPreconditionFailed, 409},
		{ErrCardAlreadyUsed, CategoryPreconditionFailed, 409},
		{ErrRoomFull, CategoryPreconditionFailed, 409},
		{ErrTooManyRequests, CategoryTooManyRequests, 429},
		{ErrDatabaseUpdate, CategoryInternal, 500},
		{ErrInternal, CategoryInternal, 500},
	}

	for _, tc := range testCases {
		err := New(tc.code)
		suite.Equal(tc.category, CategoryOf(err), "错误码 %d", tc.code)
		suite.Equal(tc.status, err.HTTPStatus(), "错误码 %d", tc.code)
	}

	suite.True(IsPrecondition(New(ErrWrongPhase)))
	suite.False(IsPrecondition(New(ErrForbidden)))
	suite.Equal(Category(""), CategoryOf(nil))
}

// 测试错误消息
func (suite *ErrorsTestSuite) TestError() {
	err := &AppError{Code: ErrNotFound, Message: "资源未找到"}
	suite.Equal("[1002] 资源未找到", err.Error())

	err.Details = "房间ID: 12"
	suite.Equal("[1002] 资源未找到: 房间ID: 12", err.Error())
}

// 测试可重试判断
func (suite *ErrorsTestSuite) TestIsRetryable() {
	suite.True(IsRetryable(New(ErrTimeout)))
	suite.True(IsRetryable(New(ErrPublish)))
	suite.False(IsRetryable(New(ErrWrongPhase)))
	suite.False(IsRetryable(nil))
}

// 测试调用栈捕获
func (suite *ErrorsTestSuite) TestStackCapture() {
	err := New(ErrInternal)
	suite.NotEmpty(err.Stack)
	suite.NotEmpty(err.GetStack())
}

// 测试错误响应不泄露调用栈
func (suite *ErrorsTestSuite) TestErrorResponse() {
	err := New(ErrNotFound, "房间不存在")
	response := NewErrorResponse(err, "req-123")

	suite.False(response.Success)
	suite.Equal(ErrNotFound, response.Error.Code)
	suite.Empty(response.Error.Stack)
	suite.Equal(CategoryNotFound, response.Category)
	suite.Equal("req-123", response.RequestID)
	suite.Greater(response.Timestamp, int64(0))
}

// 测试未知错误码
func (suite *ErrorsTestSuite) TestUnknownErrorCode() {
	err := New(ErrorCode(99999))
	suite.Equal(ErrorCode(99999), err.Code)
	suite.Equal("内部错误", err.Message)
}

func TestErrorsSuite(t *testing.T) {
	suite.Run(t, new(ErrorsTestSuite))
}
