package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenType 用于区分访问令牌和刷新令牌，refresh token 不能当 access token 用。
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

const issuer = "worklog"

// JWTManager 负责签发和校验 JWT。
type JWTManager struct {
	secretKey            []byte
	accessTokenDuration  time.Duration
	refreshTokenDuration time.Duration
}

// CustomClaims 在标准 Claims 之外携带用户 ID、用户名和角色 ID。
type CustomClaims struct {
	UserID    uint   `json:"user_id"`
	Username  string `json:"username"`
	RoleID    uint   `json:"role_id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

func NewJWTManager(secretKey string, accessTokenDuration, refreshTokenDuration time.Duration) *JWTManager {
	return &JWTManager{
		secretKey:            []byte(secretKey),
		accessTokenDuration:  accessTokenDuration,
		refreshTokenDuration: refreshTokenDuration,
	}
}

// GenerateToken 生成一对 access/refresh token。
func (manager *JWTManager) GenerateToken(userID uint, username string, roleID uint) (string, string, error) {
	now := time.Now()
	access, err := manager.sign(now, manager.accessTokenDuration, &CustomClaims{
		UserID:    userID,
		Username:  username,
		RoleID:    roleID,
		TokenType: TokenTypeAccess,
	})
	if err != nil {
		return "", "", err
	}
	refresh, err := manager.sign(now, manager.refreshTokenDuration, &CustomClaims{
		UserID:    userID,
		Username:  username,
		RoleID:    roleID,
		TokenType: TokenTypeRefresh,
	})
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (manager *JWTManager) sign(now time.Time, ttl time.Duration, claims *CustomClaims) (string, error) {
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    issuer,
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(manager.secretKey)
}

// VerifyToken 校验签名与有效期，只接受 HS256。
func (manager *JWTManager) VerifyToken(tokenString string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		return manager.secretKey, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithIssuer(issuer))
	if err != nil {
		return nil, err
	}
	return token.Claims.(*CustomClaims), nil
}

// RemainingTTL 返回 token 距离过期的剩余时间，已过期返回 0。
func RemainingTTL(claims *CustomClaims) time.Duration {
	if claims == nil || claims.ExpiresAt == nil {
		return 0
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl < 0 {
		return 0
	}
	return ttl
}
