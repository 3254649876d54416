package utils

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

// JWTTestSuite JWT工具测试套件
type JWTTestSuite struct {
	suite.Suite
	manager *JWTManager
}

func (suite *JWTTestSuite) SetupTest() {
	suite.manager = NewJWTManager(
		"test-secret-key",
		1*time.Hour,    // access token expiry
		7*24*time.Hour, // refresh token expiry
	)
}

// 测试生成并验证访问令牌
func (suite *JWTTestSuite) TestValidateToken() {
	token, err := suite.manager.GenerateAccessToken("user-789", "老张")
	suite.Require().NoError(err)
	suite.NotEmpty(token)

	claims, err := suite.manager.ValidateAccessToken(token)
	suite.Require().NoError(err)
	suite.Equal("user-789", claims.UserID)
	suite.Equal("老张", claims.Name)
	suite.Equal("user-789", claims.Subject)
	suite.Equal("access", claims.TokenType)
}

// 测试验证无效令牌
func (suite *JWTTestSuite) TestValidateInvalidToken() {
	claims, err := suite.manager.ValidateToken("invalid.token.format")
	suite.ErrorIs(err, ErrInvalidToken)
	suite.Nil(claims)

	// 错误的签名
	wrongManager := NewJWTManager("wrong-secret", 1*time.Hour, 24*time.Hour)
	token, _ := wrongManager.GenerateAccessToken("u1", "user")
	claims, err = suite.manager.ValidateToken(token)
	suite.ErrorIs(err, ErrInvalidToken)
	suite.Nil(claims)

	// 空用户ID
	token, _ = suite.manager.GenerateAccessToken("", "user")
	_, err = suite.manager.ValidateToken(token)
	suite.ErrorIs(err, ErrInvalidToken)
}

// 测试过期令牌
func (suite *JWTTestSuite) TestExpiredToken() {
	expiredManager := NewJWTManager("test-secret-key", -1*time.Hour, -1*time.Hour)
	token, _ := expiredManager.GenerateAccessToken("u1", "expired")

	claims, err := suite.manager.ValidateToken(token)
	suite.ErrorIs(err, ErrExpiredToken)
	suite.Nil(claims)
}

// 测试刷新访问令牌
func (suite *JWTTestSuite) TestRefreshAccessToken() {
	refreshToken, err := suite.manager.GenerateRefreshToken("user-222")
	suite.Require().NoError(err)

	// 刷新令牌不能直接访问接口
	_, err = suite.manager.ValidateAccessToken(refreshToken)
	suite.ErrorIs(err, ErrInvalidToken)

	newAccessToken, err := suite.manager.RefreshAccessToken(refreshToken, "小刘")
	suite.Require().NoError(err)

	claims, err := suite.manager.ValidateAccessToken(newAccessToken)
	suite.Require().NoError(err)
	suite.Equal("user-222", claims.UserID)
	suite.Equal("小刘", claims.Name)
}

// 测试无效的刷新令牌
func (suite *JWTTestSuite) TestRefreshWithInvalidToken() {
	accessToken, _ := suite.manager.GenerateAccessToken("u1", "user")
	newToken, err := suite.manager.RefreshAccessToken(accessToken, "user")
	suite.Error(err) // 不是刷新令牌
	suite.Empty(newToken)

	newToken, err = suite.manager.RefreshAccessToken("invalid.token", "user")
	suite.Error(err)
	suite.Empty(newToken)
}

// 测试获取令牌过期时间
func (suite *JWTTestSuite) TestGetTokenExpiry() {
	suite.Equal(1*time.Hour, suite.manager.GetTokenExpiry("access"))
	suite.Equal(7*24*time.Hour, suite.manager.GetTokenExpiry("refresh"))
	// 未知类型默认返回访问令牌过期时间
	suite.Equal(1*time.Hour, suite.manager.GetTokenExpiry("unknown"))
}

// 测试并发生成令牌
func (suite *JWTTestSuite) TestConcurrentTokenGeneration() {
	var wg sync.WaitGroup
	tokens := make([]string, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			tokens[id], _ = suite.manager.GenerateAccessToken(fmt.Sprintf("user-%d", id), "")
		}(i)
	}
	wg.Wait()

	for i, token := range tokens {
		claims, err := suite.manager.ValidateToken(token)
		suite.Require().NoError(err)
		suite.Equal(fmt.Sprintf("user-%d", i), claims.UserID)
	}
}

func TestJWTSuite(t *testing.T) {
	suite.Run(t, new(JWTTestSuite))
}
